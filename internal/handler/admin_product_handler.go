package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/admin/products
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// admin は AdminSession 済みのグループ
func (h *AdminProductHandler) RegisterRoutes(admin *echo.Group) {
	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
}

// multipart: name, description, price, compare_at_price, size, notes, image
func (h *AdminProductHandler) createProduct(c echo.Context) error {
	img, done, err := formImage(c, "image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid image"})
	}
	defer done()

	p, err := h.uc.Create(c.Request().Context(), middleware.AdminUser(c), usecase.CreateProductInput{
		Name:           c.FormValue("name"),
		Description:    c.FormValue("description"),
		Price:          c.FormValue("price"),
		CompareAtPrice: c.FormValue("compare_at_price"),
		Size:           c.FormValue("size"),
		Notes:          c.FormValue("notes"),
		Image:          img,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// 全項目任意
func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	img, done, err := formImage(c, "image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid image"})
	}
	defer done()

	p, err := h.uc.Update(c.Request().Context(), middleware.AdminUser(c), id, usecase.UpdateProductInput{
		Name:           optionalFormValue(c, "name"),
		Description:    optionalFormValue(c, "description"),
		Price:          optionalFormValue(c, "price"),
		CompareAtPrice: optionalFormValue(c, "compare_at_price"),
		Size:           optionalFormValue(c, "size"),
		Notes:          optionalFormValue(c, "notes"),
		Image:          img,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.Delete(c.Request().Context(), middleware.AdminUser(c), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Product deleted"})
}
