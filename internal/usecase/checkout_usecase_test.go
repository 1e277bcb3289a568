package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/infra/cartstore"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const sid = "sess-1"

var buyer = model.CustomerInfo{Name: "Ada", Email: "ada@example.com", City: "Lagos"}

// 商品1（38000）を qty 個入れたカート
func cartWithProduct1(t *testing.T, qty int64) *cartstore.MemoryStore {
	t.Helper()
	carts := cartstore.NewMemoryStore()
	products := new(ProductRepoMock)
	products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{
		ID: 1, Name: "Oud Noir", Price: decimal.NewFromInt(38000), ImageURL: "/static/uploads/oud.png",
	}, nil)

	out, err := usecase.NewCartUsecase(carts, products).
		AddToCart(context.Background(), sid, usecase.AddCartInput{ProductID: 1, Quantity: &qty})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	return carts
}

func TestCheckoutUsecase_Initialize_EmptyCart_DoesNotCallProvider(t *testing.T) {
	gw := new(GatewayMock)
	uc := usecase.NewCheckoutUsecase(cartstore.NewMemoryStore(), newMemOrderRepo(), gw)

	_, err := uc.Initialize(context.Background(), sid, usecase.InitializeCheckoutInput{CustomerInfo: buyer})

	assertHTTPStatus(t, err, http.StatusBadRequest)
	assert.ErrorIs(t, err, usecase.ErrEmptyCart)
	assertErrContains(t, err, "Cart is empty")
	gw.AssertNotCalled(t, "Initialize", mock.Anything, mock.Anything)
}

func TestCheckoutUsecase_Initialize_GatewayError(t *testing.T) {
	ctx := context.Background()
	carts := cartWithProduct1(t, 1)
	gw := new(GatewayMock)
	gw.On("Initialize", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	uc := usecase.NewCheckoutUsecase(carts, newMemOrderRepo(), gw)
	_, err := uc.Initialize(ctx, sid, usecase.InitializeCheckoutInput{CustomerInfo: buyer})

	assertHTTPStatus(t, err, http.StatusBadRequest)
	assert.ErrorIs(t, err, usecase.ErrGateway)

	_, found, err := carts.LoadPending(ctx, sid)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCheckoutUsecase_FullScenario(t *testing.T) {
	ctx := context.Background()
	carts := cartWithProduct1(t, 2)
	orders := newMemOrderRepo()
	gw := new(GatewayMock)

	gw.On("Initialize", mock.Anything, mock.MatchedBy(func(req usecase.PaymentInitRequest) bool {
		return req.AmountMinor == 7600000 &&
			req.Email == buyer.Email &&
			req.CallbackURL == "http://localhost:8080/payment/callback" &&
			len(req.Metadata.Items) == 1
	})).Return(usecase.PaymentInitResult{
		AuthorizationURL: "https://checkout.example/abc",
		Reference:        "ref_76000",
	}, nil).Once()
	gw.On("Verify", mock.Anything, "ref_76000").Return(usecase.VerifiedPayment{
		Reference:   "ref_76000",
		AmountMinor: 7600000,
	}, nil)

	uc := usecase.NewCheckoutUsecase(carts, orders, gw, usecase.WithCheckoutLogger(zaptest.NewLogger(t)))

	res, err := uc.Initialize(ctx, sid, usecase.InitializeCheckoutInput{
		CustomerInfo: buyer,
		CallbackURL:  "http://localhost:8080/payment/callback",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/abc", res.AuthorizationURL)
	assert.Equal(t, "ref_76000", res.Reference)

	pending, found, err := carts.LoadPending(ctx, sid)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, decimal.NewFromInt(76000).Equal(pending.Total))

	out, err := uc.Confirm(ctx, sid, "ref_76000")
	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.Equal(t, model.OrderStatusConfirmed, out.Order.Status)
	assert.True(t, decimal.NewFromInt(76000).Equal(out.Order.TotalPrice))
	//プロバイダがmetadataを返さないので控えから復元
	assert.Equal(t, buyer, out.Order.CustomerInfo)
	require.Len(t, out.Order.Items, 1)
	assert.Equal(t, int64(2), out.Order.Items[0].Quantity)

	cart, err := carts.LoadCart(ctx, sid)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	_, found, _ = carts.LoadPending(ctx, sid)
	assert.False(t, found)

	all, _ := orders.List(ctx, repo.OrderListFilter{})
	assert.Len(t, all, 1)
	gw.AssertExpectations(t)
}

func TestCheckoutUsecase_Confirm_Twice_CreatesOneOrder(t *testing.T) {
	ctx := context.Background()
	orders := newMemOrderRepo()
	gw := new(GatewayMock)
	gw.On("Verify", mock.Anything, "ref_1").Return(usecase.VerifiedPayment{
		Reference:   "ref_1",
		AmountMinor: 4500000,
		Metadata:    &usecase.PaymentMetadata{CustomerInfo: buyer, Items: []model.CartItem{{ProductID: 2, Quantity: 1, Price: decimal.NewFromInt(45000)}}},
	}, nil)

	uc := usecase.NewCheckoutUsecase(cartstore.NewMemoryStore(), orders, gw)

	first, err := uc.Confirm(ctx, sid, "ref_1")
	require.NoError(t, err)
	second, err := uc.Confirm(ctx, "", "ref_1")
	require.NoError(t, err)

	assert.True(t, first.Created)
	assert.False(t, second.Created)
	assert.Equal(t, first.Order.ID, second.Order.ID)

	all, _ := orders.List(ctx, repo.OrderListFilter{})
	assert.Len(t, all, 1)
}

func TestCheckoutUsecase_Confirm_DuplicateRace_ReturnsExisting(t *testing.T) {
	ctx := context.Background()
	orders := new(OrderRepoMock)
	gw := new(GatewayMock)

	existing := model.Order{ID: 9, PaymentRef: "ref_race", Status: model.OrderStatusConfirmed}
	gw.On("Verify", mock.Anything, "ref_race").Return(usecase.VerifiedPayment{Reference: "ref_race", AmountMinor: 100}, nil)
	orders.On("FindByPaymentRef", mock.Anything, "ref_race").Return(model.Order{}, false, nil).Once()
	orders.On("Create", mock.Anything, mock.Anything).Return(model.Order{}, repo.ErrDuplicateReference).Once()
	orders.On("FindByPaymentRef", mock.Anything, "ref_race").Return(existing, true, nil).Once()

	uc := usecase.NewCheckoutUsecase(cartstore.NewMemoryStore(), orders, gw)
	out, err := uc.Confirm(ctx, "", "ref_race")

	require.NoError(t, err)
	assert.False(t, out.Created)
	assert.Equal(t, int64(9), out.Order.ID)
	orders.AssertExpectations(t)
}

func TestCheckoutUsecase_Confirm_VerifyFails(t *testing.T) {
	orders := new(OrderRepoMock)
	gw := new(GatewayMock)
	gw.On("Verify", mock.Anything, "ref_x").Return(nil, errors.New("not successful"))

	uc := usecase.NewCheckoutUsecase(cartstore.NewMemoryStore(), orders, gw)
	_, err := uc.Confirm(context.Background(), sid, "ref_x")

	assertHTTPStatus(t, err, http.StatusBadRequest)
	assert.ErrorIs(t, err, usecase.ErrVerificationFailed)
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckoutUsecase_Confirm_MissingReference(t *testing.T) {
	gw := new(GatewayMock)
	uc := usecase.NewCheckoutUsecase(cartstore.NewMemoryStore(), newMemOrderRepo(), gw)

	_, err := uc.Confirm(context.Background(), sid, "  ")

	assertHTTPStatus(t, err, http.StatusBadRequest)
	gw.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestCheckoutUsecase_Confirm_OtherReference_KeepsCart(t *testing.T) {
	ctx := context.Background()
	carts := cartWithProduct1(t, 1)
	require.NoError(t, carts.SavePending(ctx, sid, model.PendingCheckout{Reference: "ref_mine"}))

	orders := newMemOrderRepo()
	_, err := orders.Create(ctx, model.Order{PaymentRef: "ref_other", Status: model.OrderStatusConfirmed})
	require.NoError(t, err)

	gw := new(GatewayMock)
	gw.On("Verify", mock.Anything, "ref_other").Return(usecase.VerifiedPayment{Reference: "ref_other", AmountMinor: 100}, nil)

	uc := usecase.NewCheckoutUsecase(carts, orders, gw)
	out, err := uc.Confirm(ctx, sid, "ref_other")
	require.NoError(t, err)
	assert.False(t, out.Created)

	cart, _ := carts.LoadCart(ctx, sid)
	assert.False(t, cart.IsEmpty())
	_, found, _ := carts.LoadPending(ctx, sid)
	assert.True(t, found)
}

func TestCheckoutUsecase_HandleWebhook_BadSignature_CreatesNoOrder(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"ref_1"}}`)
	orders := new(OrderRepoMock)
	gw := new(GatewayMock)
	gw.On("VerifySignature", body, "deadbeef").Return(false)

	uc := usecase.NewCheckoutUsecase(cartstore.NewMemoryStore(), orders, gw)
	err := uc.HandleWebhook(context.Background(), body, "deadbeef")

	assertHTTPStatus(t, err, http.StatusBadRequest)
	assert.ErrorIs(t, err, usecase.ErrInvalidSignature)
	gw.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckoutUsecase_HandleWebhook_MissingSignature_Required(t *testing.T) {
	body := []byte(`{}`)
	gw := new(GatewayMock)
	gw.On("VerifySignature", body, "").Return(false)

	uc := usecase.NewCheckoutUsecase(cartstore.NewMemoryStore(), newMemOrderRepo(), gw)
	err := uc.HandleWebhook(context.Background(), body, "")

	assert.ErrorIs(t, err, usecase.ErrInvalidSignature)
}

func TestCheckoutUsecase_HandleWebhook_ChargeSuccess_CreatesOrder(t *testing.T) {
	ctx := context.Background()
	body := []byte(`{"event":"charge.success"}`)
	orders := newMemOrderRepo()
	gw := new(GatewayMock)
	gw.On("VerifySignature", body, "sig").Return(true)
	gw.On("ParseWebhookEvent", body).Return(usecase.WebhookEvent{Event: usecase.EventChargeSuccess, Reference: "ref_wh"}, nil)
	gw.On("Verify", mock.Anything, "ref_wh").Return(usecase.VerifiedPayment{Reference: "ref_wh", AmountMinor: 7600000}, nil)

	uc := usecase.NewCheckoutUsecase(cartstore.NewMemoryStore(), orders, gw)

	require.NoError(t, uc.HandleWebhook(ctx, body, "sig"))
	require.NoError(t, uc.HandleWebhook(ctx, body, "sig"))

	o, found, err := orders.FindByPaymentRef(ctx, "ref_wh")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, decimal.NewFromInt(76000).Equal(o.TotalPrice))
	//metadata無しでも空明細で作る
	assert.NotNil(t, o.Items)
	assert.Len(t, o.Items, 0)

	all, _ := orders.List(ctx, repo.OrderListFilter{})
	assert.Len(t, all, 1)
}

func TestCheckoutUsecase_HandleWebhook_IgnoredEvents(t *testing.T) {
	tests := []struct {
		name     string
		event    usecase.WebhookEvent
		parseErr error
	}{
		{name: "other event", event: usecase.WebhookEvent{Event: "transfer.success", Reference: "r"}},
		{name: "unparsable payload", parseErr: errors.New("bad json")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := []byte(`x`)
			gw := new(GatewayMock)
			gw.On("VerifySignature", body, "sig").Return(true)
			gw.On("ParseWebhookEvent", body).Return(tt.event, tt.parseErr)

			uc := usecase.NewCheckoutUsecase(cartstore.NewMemoryStore(), new(OrderRepoMock), gw)

			assert.NoError(t, uc.HandleWebhook(context.Background(), body, "sig"))
			gw.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
		})
	}
}

func TestCheckoutUsecase_HandleWebhook_VerifyFailure_IsSwallowed(t *testing.T) {
	body := []byte(`y`)
	gw := new(GatewayMock)
	gw.On("VerifySignature", body, "sig").Return(true)
	gw.On("ParseWebhookEvent", body).Return(usecase.WebhookEvent{Event: usecase.EventChargeSuccess, Reference: "ref_bad"}, nil)
	gw.On("Verify", mock.Anything, "ref_bad").Return(nil, errors.New("declined"))

	uc := usecase.NewCheckoutUsecase(cartstore.NewMemoryStore(), new(OrderRepoMock), gw)

	assert.NoError(t, uc.HandleWebhook(context.Background(), body, "sig"))
}

func TestCheckoutUsecase_HandleWebhook_UnsignedAllowedWhenNotRequired(t *testing.T) {
	body := []byte(`z`)
	gw := new(GatewayMock)
	gw.On("ParseWebhookEvent", body).Return(usecase.WebhookEvent{Event: "charge.failed"}, nil)

	uc := usecase.NewCheckoutUsecase(cartstore.NewMemoryStore(), newMemOrderRepo(), gw, usecase.WithRequireSignature(false))

	assert.NoError(t, uc.HandleWebhook(context.Background(), body, ""))
	gw.AssertNotCalled(t, "VerifySignature", mock.Anything, mock.Anything)
}
