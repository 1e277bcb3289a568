package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 訪問者セッションごとのカートと決済待ち情報の保存先。
// 無いセッションは空カート / found=false を返す。
type CartStore interface {
	LoadCart(ctx context.Context, sessionID string) (model.Cart, error)
	SaveCart(ctx context.Context, sessionID string, cart model.Cart) error

	LoadPending(ctx context.Context, sessionID string) (model.PendingCheckout, bool, error)
	SavePending(ctx context.Context, sessionID string, p model.PendingCheckout) error
	ClearPending(ctx context.Context, sessionID string) error
}
