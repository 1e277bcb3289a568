package usecase

import (
	"context"

	"storefront/internal/domain/model"
)

// 決済プロバイダへ渡し、webhook / verify でそのまま返ってくる付加情報
type PaymentMetadata struct {
	CustomerInfo model.CustomerInfo `json:"customer_info"`
	Items        []model.CartItem   `json:"items"`
}

type PaymentInitRequest struct {
	Email       string
	AmountMinor int64 // kobo
	CallbackURL string
	Metadata    PaymentMetadata
}

type PaymentInitResult struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
}

// verify成功時だけ返る
// Metadata はプロバイダが返さなかった場合nil。
type VerifiedPayment struct {
	Reference   string
	AmountMinor int64
	Metadata    *PaymentMetadata
}

type WebhookEvent struct {
	Event     string
	Reference string
}

// webhookで注文確定に使うイベント
const EventChargeSuccess = "charge.success"

// 決済プロバイダの約束
type PaymentGateway interface {
	Initialize(ctx context.Context, req PaymentInitRequest) (PaymentInitResult, error)
	//未払い・失敗もエラー
	Verify(ctx context.Context, reference string) (VerifiedPayment, error)
	VerifySignature(body []byte, signature string) bool
	ParseWebhookEvent(body []byte) (WebhookEvent, error)
}
