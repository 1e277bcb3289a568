package repository

import (
	"context"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 管理画面の注文一覧条件
// Status が空なら全件。
type OrderListFilter struct {
	Status string
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)

	//決済参照で検索（無ければ found=false）
	FindByPaymentRef(ctx context.Context, ref string) (model.Order, bool, error)

	//同じ参照が既にあれば ErrDuplicateReference
	Create(ctx context.Context, order model.Order) (model.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	//新しい順
	List(ctx context.Context, f OrderListFilter) ([]model.Order, error)

	//集計
	CountByStatus(ctx context.Context, status model.OrderStatus) (int64, error)
	SumTotalByStatus(ctx context.Context, status model.OrderStatus) (decimal.Decimal, error)
}
