package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

type SettingsUsecase struct {
	settingsRepo repo.SettingsRepository
	tx           repo.TransactionManager
	images       ImageStore
}

// DI
func NewSettingsUsecase(settingsRepo repo.SettingsRepository, tx repo.TransactionManager, images ImageStore) *SettingsUsecase {
	return &SettingsUsecase{settingsRepo: settingsRepo, tx: tx, images: images}
}

// 起動時に1回（既にあれば何もしない）
func (u *SettingsUsecase) EnsureDefaults(ctx context.Context) error {
	return u.settingsRepo.EnsureDefault(ctx, model.DefaultSiteSettings())
}

func (u *SettingsUsecase) Get(ctx context.Context) (model.SiteSettings, error) {
	s, err := u.settingsRepo.Get(ctx)
	if errors.Is(err, repo.ErrNotFound) {
		//未投入ならデフォルトを見せる
		return model.DefaultSiteSettings(), nil
	}
	if err != nil {
		return model.SiteSettings{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return s, nil
}

// nil の項目は変更しない
type UpdateSettingsInput struct {
	ShopName        *string
	HeroTitle       *string
	HeroSubtitle    *string
	StoryTitle      *string
	StoryContent    *string
	NewsletterTitle *string
	NewsletterText  *string
	HeroImage       *ImageUpload
	StoryImage      *ImageUpload
}

func (u *SettingsUsecase) Update(ctx context.Context, actor string, in UpdateSettingsInput) (model.SiteSettings, error) {
	if in.ShopName != nil && strings.TrimSpace(*in.ShopName) == "" {
		return model.SiteSettings{}, WrapHTTPError(http.StatusBadRequest, "shop_name required", ErrValidation)
	}

	var heroURL, storyURL string
	if in.HeroImage != nil {
		url, err := storeImage(ctx, u.images, in.HeroImage)
		if err != nil {
			return model.SiteSettings{}, err
		}
		heroURL = url
	}
	if in.StoryImage != nil {
		url, err := storeImage(ctx, u.images, in.StoryImage)
		if err != nil {
			return model.SiteSettings{}, err
		}
		storyURL = url
	}

	var saved model.SiteSettings
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		before, err := r.Settings().Get(ctx)
		if errors.Is(err, repo.ErrNotFound) {
			before = model.DefaultSiteSettings()
		} else if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		after := before
		applyString(&after.ShopName, in.ShopName)
		applyString(&after.HeroTitle, in.HeroTitle)
		applyString(&after.HeroSubtitle, in.HeroSubtitle)
		applyString(&after.StoryTitle, in.StoryTitle)
		applyString(&after.StoryContent, in.StoryContent)
		applyString(&after.NewsletterTitle, in.NewsletterTitle)
		applyString(&after.NewsletterText, in.NewsletterText)
		if heroURL != "" {
			after.HeroImage = heroURL
		}
		if storyURL != "" {
			after.StoryImage = storyURL
		}
		after.ID = model.SiteSettingsID

		if err := r.Settings().Save(ctx, after); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		reloaded, err := r.Settings().Get(ctx)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		saved = reloaded

		return writeAudit(ctx, r, actor, model.AuditActionUpdateSettings, model.AuditResourceSettings, model.SiteSettingsID, before, reloaded)
	})
	if err != nil {
		return model.SiteSettings{}, err
	}
	return saved, nil
}

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
