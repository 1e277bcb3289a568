package middleware

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
)

const (
	// 訪問者セッションのcookie名
	VisitorCookieName = "storefront_session"

	CtxSessionIDKey = "session_id" // string

	sessionIDField = "sid"
)

// 署名付きcookieストア
// cookieにはセッションIDだけを入れ、カートの中身はCartStore側に置く。
func NewVisitorCookieStore(cfg config.SessionConfig) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// 訪問者ごとのセッションIDを確定させて context に入れる
// 壊れた・改ざんされたcookieは新しいセッションとして扱う。
func VisitorSession(store sessions.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			sess, err := store.Get(req, VisitorCookieName)
			if err != nil {
				logger.FromContext(req.Context()).Debug("visitor session reset")
			}

			id, _ := sess.Values[sessionIDField].(string)
			if id == "" {
				id = uuid.NewString()
				sess.Values[sessionIDField] = id
				if err := sess.Save(req, c.Response()); err != nil {
					return c.JSON(http.StatusInternalServerError, errorJSON("session error"))
				}
			}

			c.Set(CtxSessionIDKey, id)
			return next(c)
		}
	}
}

func SessionID(c echo.Context) string {
	s, _ := c.Get(CtxSessionIDKey).(string)
	return s
}
