package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// サイト設定（id=1 の1行だけ）
type SettingsRepository interface {
	Get(ctx context.Context) (model.SiteSettings, error)

	//無ければ投入、あれば何もしない
	EnsureDefault(ctx context.Context, s model.SiteSettings) error

	Save(ctx context.Context, s model.SiteSettings) error
}
