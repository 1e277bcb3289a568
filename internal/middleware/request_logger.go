package middleware

import (
	"net/http"
	"time"

	"storefront/internal/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "X-Request-ID"

	CtxRequestIDKey = "request_id" // string
)

// リクエストIDを確定させ、IDつきのロガーをrequest contextに載せる
func RequestID(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Set(CtxRequestIDKey, id)
			c.Response().Header().Set(HeaderRequestID, id)

			ctx := logger.WithRequestID(c.Request().Context(), base, id)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// 1リクエスト1行
// 5xxはError、4xxはWarn、それ以外はInfo。
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)
			if err != nil {
				//echoのエラーハンドラに書かせてからステータスを読む
				c.Error(err)
			}

			status := c.Response().Status
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.String("client_ip", c.RealIP()),
				zap.Int64("body_size", c.Response().Size),
			}
			if q := req.URL.RawQuery; q != "" {
				fields = append(fields, zap.String("query", q))
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}

			l := logger.FromContext(req.Context())
			switch {
			case status >= 500:
				l.Error("HTTP Request", fields...)
			case status >= 400:
				l.Warn("HTTP Request", fields...)
			default:
				l.Info("HTTP Request", fields...)
			}
			return nil
		}
	}
}

// panicを500にしてスタック付きでログに残す
func Recovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					if r == http.ErrAbortHandler {
						panic(r)
					}
					logger.FromContext(c.Request().Context()).Error("Panic recovered",
						zap.String("method", c.Request().Method),
						zap.String("path", c.Request().URL.Path),
						zap.Any("error", r),
						zap.Stack("stacktrace"),
					)
					err = c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
				}
			}()
			return next(c)
		}
	}
}
