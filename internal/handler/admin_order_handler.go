package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

// DI
func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" form:"status" validate:"required,max=50"`
}

type adminDashboardPage struct {
	Admin string
	Stats usecase.StatsOutput
}

// admin は /api/admin、page は /admin（どちらも AdminSession 済み）
func (h *AdminOrderHandler) RegisterRoutes(admin *echo.Group, page *echo.Group) {
	admin.GET("/orders", h.list)
	admin.PUT("/orders/:id/status", h.updateStatus)
	admin.GET("/stats", h.stats)

	page.GET("", h.dashboard)
}

// ?status= 省略時は confirmed、all で全件
func (h *AdminOrderHandler) list(c echo.Context) error {
	orders, err := h.uc.List(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UpdateOrderStatusRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	o, err := h.uc.UpdateStatus(c.Request().Context(), middleware.AdminUser(c), id, usecase.AdminUpdateOrderStatusInput{
		Status: req.Status,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *AdminOrderHandler) stats(c echo.Context) error {
	st, err := h.uc.Stats(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *AdminOrderHandler) dashboard(c echo.Context) error {
	st, err := h.uc.Stats(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return renderPage(c, http.StatusOK, "admin_dashboard", adminDashboardPage{
		Admin: middleware.AdminUser(c),
		Stats: st,
	})
}
