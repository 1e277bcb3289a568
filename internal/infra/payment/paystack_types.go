package payment

import (
	"bytes"
	"encoding/json"

	"storefront/internal/usecase"
)

type paystackInitializeRequest struct {
	Email       string                  `json:"email"`
	Amount      int64                   `json:"amount"`
	CallbackURL string                  `json:"callback_url,omitempty"`
	Metadata    usecase.PaymentMetadata `json:"metadata"`
}

// Paystackの共通レスポンス
type paystackEnvelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type paystackInitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type paystackVerifyData struct {
	Status    string          `json:"status"`
	Reference string          `json:"reference"`
	Amount    int64           `json:"amount"`
	Currency  string          `json:"currency"`
	Metadata  json.RawMessage `json:"metadata"`
}

type paystackWebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

// metadata はオブジェクトで返る場合とJSON文字列で返る場合がある
func decodeMetadata(raw json.RawMessage) *usecase.PaymentMetadata {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return nil
		}
		raw = json.RawMessage(s)
	}

	var md usecase.PaymentMetadata
	if err := json.Unmarshal(raw, &md); err != nil {
		return nil
	}
	if md.CustomerInfo.Email == "" && len(md.Items) == 0 {
		return nil
	}
	return &md
}
