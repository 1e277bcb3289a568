package middleware

import (
	"net/http"

	auth "storefront/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

const (
	// 管理者セッションのcookie名
	AdminCookieName = "admin_token"
	// 未ログイン時の転送先
	AdminLoginPath = "/admin/login"

	CtxAdminUserKey = "admin_user" // string
)

// 管理者トークンを検証する約束
type AdminTokenParser interface {
	Parse(raw string) (auth.Claims, error)
}

// admin_token cookie のJWTを検証する。
// 無い・不正・期限切れ・ADMIN以外は /admin/login へ302。
func AdminSession(parser AdminTokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(AdminCookieName)
			if err != nil || ck.Value == "" {
				return c.Redirect(http.StatusFound, AdminLoginPath)
			}

			claims, err := parser.Parse(ck.Value)
			if err != nil {
				return c.Redirect(http.StatusFound, AdminLoginPath)
			}

			//ADMINだけ許可
			if claims.Role != auth.RoleAdmin {
				return c.Redirect(http.StatusFound, AdminLoginPath)
			}

			c.Set(CtxAdminUserKey, claims.Subject)
			return next(c)
		}
	}
}

// handlerから操作者名を取る（監査ログ用）
func AdminUser(c echo.Context) string {
	s, _ := c.Get(CtxAdminUserKey).(string)
	return s
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
