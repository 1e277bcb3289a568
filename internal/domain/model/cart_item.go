package model

import "github.com/shopspring/decimal"

// カートの明細
// 追加時点の価格・画像をスナップショットとして持つ。
// 注文確定時はこのまま Order.Items に凍結される。
type CartItem struct {
	ProductID int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int64           `json:"quantity"`
}

// 小計
func (it CartItem) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(it.Quantity))
}
