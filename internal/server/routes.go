package server

import (
	"net/http"

	"storefront/internal/middleware"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	if d.UploadDir != "" && d.PublicPath != "" {
		e.Static(d.PublicPath, d.UploadDir)
	}

	session := middleware.VisitorSession(d.SessionStore)
	guard := middleware.AdminSession(d.AdminParser)

	//公開API
	api := e.Group("/api")
	d.Products.RegisterRoutes(api)
	d.Cart.RegisterRoutes(api, session)
	d.Payment.RegisterRoutes(e, api, session)

	//管理API（admin_token cookie 必須）
	admin := e.Group("/api/admin", guard)
	adminPage := e.Group("/admin", guard)

	d.Settings.RegisterRoutes(api, admin)
	d.AdminAuth.RegisterRoutes(e)
	d.AdminProducts.RegisterRoutes(admin)
	d.AdminOrders.RegisterRoutes(admin, adminPage)
	d.AuditLogs.RegisterRoutes(admin)
}
