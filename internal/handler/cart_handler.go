package handler

import (
	"net/http"

	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /api/cart のHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

// quantity 省略時は1
type AddCartRequest struct {
	ProductID int64  `json:"id" form:"id" validate:"required,gt=0"`
	Quantity  *int64 `json:"quantity" form:"quantity" validate:"omitempty,gte=1"`
}

// quantity 0以下は削除
type UpdateCartRequest struct {
	ProductID int64 `json:"id" form:"id" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" form:"quantity"`
}

type RemoveCartRequest struct {
	ProductID int64 `json:"id" form:"id" validate:"required,gt=0"`
}

type CartResponse struct {
	Message string           `json:"message,omitempty"`
	Cart    []model.CartItem `json:"cart"`
	Total   decimal.Decimal  `json:"total"`
}

// 訪問者セッション必須
func (h *CartHandler) RegisterRoutes(api *echo.Group, session echo.MiddlewareFunc) {
	g := api.Group("/cart", session)

	g.GET("", h.getCart)
	g.POST("/add", h.add)
	g.POST("/update", h.update)
	g.POST("/remove", h.remove)
	g.POST("/clear", h.clear)
}

func cartResponse(msg string, out usecase.CartOutput) CartResponse {
	return CartResponse{Message: msg, Cart: out.Items, Total: out.Total}
}

func (h *CartHandler) getCart(c echo.Context) error {
	out, err := h.uc.GetCart(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cartResponse("", out))
}

func (h *CartHandler) add(c echo.Context) error {
	var req AddCartRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.AddToCart(c.Request().Context(), middleware.SessionID(c), usecase.AddCartInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cartResponse("Added to cart", out))
}

func (h *CartHandler) update(c echo.Context) error {
	var req UpdateCartRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.UpdateCart(c.Request().Context(), middleware.SessionID(c), usecase.UpdateCartInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cartResponse("Cart updated", out))
}

func (h *CartHandler) remove(c echo.Context) error {
	var req RemoveCartRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	out, err := h.uc.RemoveFromCart(c.Request().Context(), middleware.SessionID(c), req.ProductID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cartResponse("Removed from cart", out))
}

func (h *CartHandler) clear(c echo.Context) error {
	out, err := h.uc.ClearCart(c.Request().Context(), middleware.SessionID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cartResponse("Cart cleared", out))
}
