package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"storefront/internal/usecase"

	"go.uber.org/zap"
)

var (
	ErrGatewayUnavailable    = errors.New("payment gateway unavailable")
	ErrGatewayRequestFailed  = errors.New("payment gateway request failed")
	ErrPaymentNotSuccessful  = errors.New("payment not successful")
	ErrInvalidWebhookPayload = errors.New("invalid webhook payload")
)

const statusSuccess = "success"

// Paystack API (https://paystack.com/docs/api/transaction/)
type PaystackAdapter struct {
	config     PaystackConfig
	httpClient *http.Client
	logger     *zap.Logger
}

type PaystackOption func(*PaystackAdapter)

func WithHTTPClient(c *http.Client) PaystackOption {
	return func(a *PaystackAdapter) {
		a.httpClient = c
	}
}

func WithLogger(l *zap.Logger) PaystackOption {
	return func(a *PaystackAdapter) {
		a.logger = l
	}
}

func NewPaystackAdapter(cfg PaystackConfig, opts ...PaystackOption) (*PaystackAdapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	a := &PaystackAdapter{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// POST /transaction/initialize
func (a *PaystackAdapter) Initialize(ctx context.Context, req usecase.PaymentInitRequest) (usecase.PaymentInitResult, error) {
	body, err := json.Marshal(paystackInitializeRequest{
		Email:       req.Email,
		Amount:      req.AmountMinor,
		CallbackURL: req.CallbackURL,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return usecase.PaymentInitResult{}, fmt.Errorf("paystack: failed to encode request: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, "/transaction/initialize", body)
	if err != nil {
		return usecase.PaymentInitResult{}, err
	}

	var resp paystackEnvelope[paystackInitializeData]
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return usecase.PaymentInitResult{}, fmt.Errorf("paystack: failed to decode response: %w", err)
	}
	if !resp.Status || resp.Data.AuthorizationURL == "" {
		return usecase.PaymentInitResult{}, fmt.Errorf("%w: %s", ErrGatewayRequestFailed, resp.Message)
	}

	return usecase.PaymentInitResult{
		AuthorizationURL: resp.Data.AuthorizationURL,
		Reference:        resp.Data.Reference,
	}, nil
}

// GET /transaction/verify/:reference
// data.status が success 以外は ErrPaymentNotSuccessful
func (a *PaystackAdapter) Verify(ctx context.Context, reference string) (usecase.VerifiedPayment, error) {
	if strings.TrimSpace(reference) == "" {
		return usecase.VerifiedPayment{}, fmt.Errorf("%w: empty reference", ErrGatewayRequestFailed)
	}

	respBody, err := a.doRequest(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return usecase.VerifiedPayment{}, err
	}

	var resp paystackEnvelope[paystackVerifyData]
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return usecase.VerifiedPayment{}, fmt.Errorf("paystack: failed to decode response: %w", err)
	}
	if !resp.Status {
		return usecase.VerifiedPayment{}, fmt.Errorf("%w: %s", ErrGatewayRequestFailed, resp.Message)
	}
	if resp.Data.Status != statusSuccess {
		return usecase.VerifiedPayment{}, fmt.Errorf("%w: status=%s", ErrPaymentNotSuccessful, resp.Data.Status)
	}

	ref := resp.Data.Reference
	if ref == "" {
		ref = reference
	}
	return usecase.VerifiedPayment{
		Reference:   ref,
		AmountMinor: resp.Data.Amount,
		Metadata:    decodeMetadata(resp.Data.Metadata),
	}, nil
}

// x-paystack-signature = hex(HMAC-SHA512(secret, body))
func (a *PaystackAdapter) VerifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	return hmac.Equal(got, Sign(a.config.SecretKey, body))
}

func (a *PaystackAdapter) ParseWebhookEvent(body []byte) (usecase.WebhookEvent, error) {
	var ev paystackWebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return usecase.WebhookEvent{}, fmt.Errorf("%w: %v", ErrInvalidWebhookPayload, err)
	}
	return usecase.WebhookEvent{Event: ev.Event, Reference: ev.Data.Reference}, nil
}

// 署名の生バイト（テスト・ツール用に公開）
func Sign(secret string, body []byte) []byte {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}

func (a *PaystackAdapter) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("paystack: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.config.SecretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Warn("paystack request failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("paystack: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp paystackEnvelope[json.RawMessage]
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return nil, fmt.Errorf("%w: HTTP %d - %s", ErrGatewayRequestFailed, resp.StatusCode, errResp.Message)
		}
		return nil, fmt.Errorf("%w: HTTP %d", ErrGatewayRequestFailed, resp.StatusCode)
	}

	return respBody, nil
}

var _ usecase.PaymentGateway = (*PaystackAdapter)(nil)
