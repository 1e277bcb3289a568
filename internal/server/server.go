package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/handler"
	"storefront/internal/middleware"
	"storefront/internal/validator"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// ルーティングに必要な部品一式
type Deps struct {
	Logger       *zap.Logger
	SessionStore sessions.Store
	AdminParser  middleware.AdminTokenParser

	Products      *handler.ProductHandler
	Cart          *handler.CartHandler
	Payment       *handler.PaymentHandler
	Settings      *handler.SettingsHandler
	AdminAuth     *handler.AdminAuthHandler
	AdminProducts *handler.AdminProductHandler
	AdminOrders   *handler.AdminOrderHandler
	AuditLogs     *handler.AuditLogHandler

	// ローカル保存時だけ静的配信する（空ならしない）
	UploadDir  string
	PublicPath string

	BodyLimit string
}

// echoを組み立てる
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.NewRequestValidator()

	if d.BodyLimit == "" {
		d.BodyLimit = "10M"
	}

	e.Use(
		middleware.RequestID(d.Logger),
		middleware.RequestLogger(),
		middleware.Recovery(),
		echomw.BodyLimit(d.BodyLimit),
	)

	RegisterRoutes(e, d)
	return e
}

// ctxがキャンセルされたら graceful shutdown
func Start(ctx context.Context, e *echo.Echo, addr string, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
