package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// サイト設定（公開の読み取りと管理画面の更新）
type SettingsHandler struct {
	uc *usecase.SettingsUsecase
}

// DI
func NewSettingsHandler(uc *usecase.SettingsUsecase) *SettingsHandler {
	return &SettingsHandler{uc: uc}
}

func (h *SettingsHandler) RegisterRoutes(api *echo.Group, admin *echo.Group) {
	api.GET("/settings", h.get)

	admin.GET("/settings", h.get)
	admin.POST("/settings", h.update)
}

func (h *SettingsHandler) get(c echo.Context) error {
	s, err := h.uc.Get(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// multipart: テキスト項目 + hero_image / story_image
func (h *SettingsHandler) update(c echo.Context) error {
	hero, doneHero, err := formImage(c, "hero_image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid image"})
	}
	defer doneHero()
	story, doneStory, err := formImage(c, "story_image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid image"})
	}
	defer doneStory()

	s, err := h.uc.Update(c.Request().Context(), middleware.AdminUser(c), usecase.UpdateSettingsInput{
		ShopName:        optionalFormValue(c, "shop_name"),
		HeroTitle:       optionalFormValue(c, "hero_title"),
		HeroSubtitle:    optionalFormValue(c, "hero_subtitle"),
		StoryTitle:      optionalFormValue(c, "story_title"),
		StoryContent:    optionalFormValue(c, "story_content"),
		NewsletterTitle: optionalFormValue(c, "newsletter_title"),
		NewsletterText:  optionalFormValue(c, "newsletter_text"),
		HeroImage:       hero,
		StoryImage:      story,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
