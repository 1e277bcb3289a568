package model

import "github.com/shopspring/decimal"

// 購入者情報。注文にはJSONのまま埋め込む。
type CustomerInfo struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=50"`
	Address string `json:"address" validate:"max=500"`
	City    string `json:"city" validate:"max=100"`
	State   string `json:"state" validate:"max=100"`
}

// 決済開始時にセッションへ一時保存する内容。
// プロバイダがmetadataを返さなかった時の予備。
type PendingCheckout struct {
	Reference    string          `json:"reference"`
	CustomerInfo CustomerInfo    `json:"customer_info"`
	Items        []CartItem      `json:"items"`
	Total        decimal.Decimal `json:"total"`
}
