package handler

import (
	"io"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// Paystackが署名を入れるヘッダ
const HeaderPaystackSignature = "X-Paystack-Signature"

// webhook本文の上限
const maxWebhookBody = 1 << 20

// 決済開始・コールバック・webhook
type PaymentHandler struct {
	uc          *usecase.CheckoutUsecase
	callbackURL string
}

// DI
// callbackURL はプロバイダが決済後に戻す先（<base_url>/payment/callback）。
func NewPaymentHandler(uc *usecase.CheckoutUsecase, baseURL string) *PaymentHandler {
	return &PaymentHandler{
		uc:          uc,
		callbackURL: strings.TrimRight(baseURL, "/") + CallbackPath,
	}
}

const CallbackPath = "/payment/callback"

type InitializePaymentRequest struct {
	CustomerInfo model.CustomerInfo `json:"customer_info" validate:"required"`
}

// webhookは署名で守るのでセッション不要
func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, api *echo.Group, session echo.MiddlewareFunc) {
	api.POST("/payment/initialize", h.initialize, session)
	api.POST("/paystack/webhook", h.webhook)
	e.GET(CallbackPath, h.callback, session)
}

func (h *PaymentHandler) initialize(c echo.Context) error {
	var req InitializePaymentRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	res, err := h.uc.Initialize(c.Request().Context(), middleware.SessionID(c), usecase.InitializeCheckoutInput{
		CustomerInfo: req.CustomerInfo,
		CallbackURL:  h.callbackURL,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type paymentResultPage struct {
	Title   string
	Message string
	Order   *model.Order
}

// 決済後のリダイレクト先（HTML）
func (h *PaymentHandler) callback(c echo.Context) error {
	ref := strings.TrimSpace(c.QueryParam("reference"))
	if ref == "" {
		return renderPage(c, http.StatusBadRequest, "payment_result", paymentResultPage{
			Title:   "Payment failed",
			Message: "No payment reference was provided.",
		})
	}

	out, err := h.uc.Confirm(c.Request().Context(), middleware.SessionID(c), ref)
	if err != nil {
		msg := "We could not confirm your payment."
		status := http.StatusBadRequest
		if he, ok := usecase.AsHTTPError(err); ok {
			msg = he.Message
			status = he.Status
		}
		return renderPage(c, status, "payment_result", paymentResultPage{
			Title:   "Payment failed",
			Message: msg,
		})
	}

	return renderPage(c, http.StatusOK, "payment_result", paymentResultPage{
		Title:   "Thank you for your order",
		Message: "Your payment was confirmed.",
		Order:   &out.Order,
	})
}

type webhookResponse struct {
	Status string `json:"status"`
}

// 署名は生の本文に対して検証する（Bindしない）
func (h *PaymentHandler) webhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	sig := c.Request().Header.Get(HeaderPaystackSignature)
	if err := h.uc.HandleWebhook(c.Request().Context(), body, sig); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, webhookResponse{Status: "ok"})
}
