package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/middleware"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

// ログイン処理の約束
type AdminLoginExecutor interface {
	Execute(ctx context.Context, in auth.LoginInput) (auth.LoginOutput, error)
}

// /admin/login, /admin/logout
type AdminAuthHandler struct {
	loginUC      AdminLoginExecutor
	cookieSecure bool
}

// DIコンストラクタ
func NewAdminAuthHandler(loginUC AdminLoginExecutor, cookieSecure bool) *AdminAuthHandler {
	return &AdminAuthHandler{loginUC: loginUC, cookieSecure: cookieSecure}
}

// フォームでもJSONでも受ける
type adminLoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type adminLoginPage struct {
	Error string
}

// ログイン後の遷移先
const adminHomePath = "/admin"

func (h *AdminAuthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET(middleware.AdminLoginPath, h.loginPage)
	e.POST(middleware.AdminLoginPath, h.login)
	e.GET("/admin/logout", h.logout)
}

func (h *AdminAuthHandler) loginPage(c echo.Context) error {
	return renderPage(c, http.StatusOK, "admin_login", adminLoginPage{})
}

func (h *AdminAuthHandler) login(c echo.Context) error {
	isJSON := strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)

	var req adminLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if errors.Is(err, auth.ErrInvalidCredentials) {
		if isJSON {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
		}
		return renderPage(c, http.StatusUnauthorized, "admin_login", adminLoginPage{Error: "Invalid credentials"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	h.setAdminCookie(c, out.Token, out.ExpiresAt)

	if isJSON {
		return c.JSON(http.StatusOK, SuccessResponse{Message: "Logged in"})
	}
	return c.Redirect(http.StatusFound, adminHomePath)
}

// cookieを消してログイン画面へ
func (h *AdminAuthHandler) logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	return c.Redirect(http.StatusFound, middleware.AdminLoginPath)
}

// 管理者トークンをCookieにセット。
func (h *AdminAuthHandler) setAdminCookie(c echo.Context, token string, exp time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AdminCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}
