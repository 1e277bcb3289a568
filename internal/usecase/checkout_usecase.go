package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

// カート → 決済開始 → (コールバック / webhook) → 注文確定
// 二重確定は payment_ref のユニーク制約で防ぐ。
type CheckoutUsecase struct {
	carts            repo.CartStore
	orders           repo.OrderRepository
	gateway          PaymentGateway
	logger           *zap.Logger
	requireSignature bool
}

type CheckoutOption func(*CheckoutUsecase)

func WithCheckoutLogger(l *zap.Logger) CheckoutOption {
	return func(u *CheckoutUsecase) {
		u.logger = l
	}
}

// false なら署名ヘッダ無しのwebhookを受け付ける（開発用）
func WithRequireSignature(v bool) CheckoutOption {
	return func(u *CheckoutUsecase) {
		u.requireSignature = v
	}
}

// DI
func NewCheckoutUsecase(carts repo.CartStore, orders repo.OrderRepository, gateway PaymentGateway, opts ...CheckoutOption) *CheckoutUsecase {
	u := &CheckoutUsecase{
		carts:            carts,
		orders:           orders,
		gateway:          gateway,
		logger:           zap.NewNop(),
		requireSignature: true,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type InitializeCheckoutInput struct {
	CustomerInfo model.CustomerInfo
	CallbackURL  string
}

type ConfirmOutput struct {
	Order   model.Order
	Created bool
}

// 決済開始
// カートが空ならプロバイダは呼ばない。
func (u *CheckoutUsecase) Initialize(ctx context.Context, sessionID string, in InitializeCheckoutInput) (PaymentInitResult, error) {
	if sessionID == "" {
		return PaymentInitResult{}, NewHTTPError(http.StatusBadRequest, "missing session")
	}
	if strings.TrimSpace(in.CustomerInfo.Email) == "" {
		return PaymentInitResult{}, WrapHTTPError(http.StatusBadRequest, "customer email is required", ErrValidation)
	}

	cart, err := u.carts.LoadCart(ctx, sessionID)
	if err != nil {
		return PaymentInitResult{}, WrapHTTPError(http.StatusInternalServerError, "cart store error", err)
	}
	if cart.IsEmpty() {
		return PaymentInitResult{}, WrapHTTPError(http.StatusBadRequest, "Cart is empty", ErrEmptyCart)
	}

	items := cart.Get()
	total := cart.Total()

	res, err := u.gateway.Initialize(ctx, PaymentInitRequest{
		Email:       in.CustomerInfo.Email,
		AmountMinor: model.ToMinor(total),
		CallbackURL: in.CallbackURL,
		Metadata: PaymentMetadata{
			CustomerInfo: in.CustomerInfo,
			Items:        items,
		},
	})
	if err != nil {
		u.logger.Warn("payment initialization failed", zap.String("session_id", sessionID), zap.Error(err))
		return PaymentInitResult{}, WrapHTTPError(http.StatusBadRequest, "Payment initialization failed", ErrGateway)
	}

	//プロバイダがmetadataを返さない時のためにセッションへ控える
	if err := u.carts.SavePending(ctx, sessionID, model.PendingCheckout{
		Reference:    res.Reference,
		CustomerInfo: in.CustomerInfo,
		Items:        items,
		Total:        total,
	}); err != nil {
		return PaymentInitResult{}, WrapHTTPError(http.StatusInternalServerError, "cart store error", err)
	}

	u.logger.Info("payment initialized",
		zap.String("reference", res.Reference),
		zap.String("total", total.String()),
	)
	return res, nil
}

// 決済確認して注文を確定する
// sessionID が空（webhook）ならカートには触らない。
func (u *CheckoutUsecase) Confirm(ctx context.Context, sessionID string, reference string) (ConfirmOutput, error) {
	ref := strings.TrimSpace(reference)
	if ref == "" {
		return ConfirmOutput{}, WrapHTTPError(http.StatusBadRequest, "missing reference", ErrValidation)
	}

	verified, err := u.gateway.Verify(ctx, ref)
	if err != nil {
		u.logger.Warn("payment verification failed", zap.String("reference", ref), zap.Error(err))
		return ConfirmOutput{}, WrapHTTPError(http.StatusBadRequest, "Payment verification failed", ErrVerificationFailed)
	}

	pending, hasPending := u.loadPending(ctx, sessionID, ref)

	out, err := u.ensureOrder(ctx, ref, verified, pending, hasPending)
	if err != nil {
		return ConfirmOutput{}, err
	}

	//この呼び出しで作った注文か、このセッションの決済待ちならカートを空にする
	if sessionID != "" && (out.Created || hasPending) {
		u.clearCheckout(ctx, sessionID)
	}
	return out, nil
}

// 同じ参照の注文が既にあれば何もしない
func (u *CheckoutUsecase) ensureOrder(ctx context.Context, ref string, verified VerifiedPayment, pending model.PendingCheckout, hasPending bool) (ConfirmOutput, error) {
	existing, found, err := u.orders.FindByPaymentRef(ctx, ref)
	if err != nil {
		return ConfirmOutput{}, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}
	if found {
		return ConfirmOutput{Order: existing}, nil
	}

	md := PaymentMetadata{Items: []model.CartItem{}}
	switch {
	case verified.Metadata != nil:
		md = *verified.Metadata
	case hasPending:
		md = PaymentMetadata{CustomerInfo: pending.CustomerInfo, Items: pending.Items}
	default:
		u.logger.Warn("verified payment without metadata", zap.String("reference", ref))
	}

	created, err := u.orders.Create(ctx, model.Order{
		CustomerInfo: md.CustomerInfo,
		Items:        md.Items,
		TotalPrice:   model.FromMinor(verified.AmountMinor),
		PaymentRef:   ref,
		Status:       model.OrderStatusConfirmed,
	})
	if errors.Is(err, repo.ErrDuplicateReference) {
		//競合（コールバックとwebhookが同時）はもう一回検索して同じ結果を返す
		u.logger.Info("duplicate order confirmation", zap.String("reference", ref))
		ex2, found2, err2 := u.orders.FindByPaymentRef(ctx, ref)
		if err2 != nil || !found2 {
			return ConfirmOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return ConfirmOutput{Order: ex2}, nil
	}
	if err != nil {
		return ConfirmOutput{}, WrapHTTPError(http.StatusInternalServerError, "db error", err)
	}

	u.logger.Info("order created",
		zap.Int64("order_id", created.ID),
		zap.String("reference", ref),
		zap.String("total", created.TotalPrice.String()),
	)
	return ConfirmOutput{Order: created, Created: true}, nil
}

// このセッションの決済待ちで、参照が一致するものだけ返す
func (u *CheckoutUsecase) loadPending(ctx context.Context, sessionID, ref string) (model.PendingCheckout, bool) {
	if sessionID == "" {
		return model.PendingCheckout{}, false
	}
	p, found, err := u.carts.LoadPending(ctx, sessionID)
	if err != nil {
		u.logger.Warn("failed to load pending checkout", zap.String("session_id", sessionID), zap.Error(err))
		return model.PendingCheckout{}, false
	}
	if !found || p.Reference != ref {
		return model.PendingCheckout{}, false
	}
	return p, true
}

// 注文は確定済みなので失敗はログのみ
func (u *CheckoutUsecase) clearCheckout(ctx context.Context, sessionID string) {
	if err := u.carts.SaveCart(ctx, sessionID, model.Cart{Items: []model.CartItem{}}); err != nil {
		u.logger.Error("failed to clear cart", zap.String("session_id", sessionID), zap.Error(err))
	}
	if err := u.carts.ClearPending(ctx, sessionID); err != nil {
		u.logger.Error("failed to clear pending checkout", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// webhook受信
// 署名が通った後はエラーを返さない（プロバイダの再送を止める）。
func (u *CheckoutUsecase) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	switch {
	case signature == "" && !u.requireSignature:
		u.logger.Warn("webhook accepted without signature")
	case !u.gateway.VerifySignature(body, signature):
		u.logger.Warn("webhook signature mismatch")
		return WrapHTTPError(http.StatusBadRequest, "Invalid signature", ErrInvalidSignature)
	}

	ev, err := u.gateway.ParseWebhookEvent(body)
	if err != nil {
		u.logger.Warn("webhook payload ignored", zap.Error(err))
		return nil
	}
	if ev.Event != EventChargeSuccess {
		u.logger.Debug("webhook event ignored", zap.String("event", ev.Event))
		return nil
	}

	if _, err := u.Confirm(ctx, "", ev.Reference); err != nil {
		u.logger.Error("webhook confirmation failed", zap.String("reference", ev.Reference), zap.Error(err))
	}
	return nil
}
