package usecase_test

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders    repo.OrderRepository
	products  repo.ProductRepository
	settings  repo.SettingsRepository
	auditLogs repo.AuditLogRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository       { return r.orders }
func (r *TxReposMock) Products() repo.ProductRepository   { return r.products }
func (r *TxReposMock) Settings() repo.SettingsRepository  { return r.settings }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository { return r.auditLogs }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByPaymentRef(ctx context.Context, ref string) (model.Order, bool, error) {
	args := m.Called(ctx, ref)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (model.Order, error) {
	args := m.Called(ctx, order)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepoMock) CountByStatus(ctx context.Context, status model.OrderStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) SumTotalByStatus(ctx context.Context, status model.OrderStatus) (decimal.Decimal, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) List(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type SettingsRepoMock struct{ mock.Mock }

func (m *SettingsRepoMock) Get(ctx context.Context) (model.SiteSettings, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(model.SiteSettings)
	return s, args.Error(1)
}

func (m *SettingsRepoMock) EnsureDefault(ctx context.Context, s model.SiteSettings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *SettingsRepoMock) Save(ctx context.Context, s model.SiteSettings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

// =====================
// Port mocks
// =====================

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) Initialize(ctx context.Context, req usecase.PaymentInitRequest) (usecase.PaymentInitResult, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(usecase.PaymentInitResult)
	return r, args.Error(1)
}

func (m *GatewayMock) Verify(ctx context.Context, reference string) (usecase.VerifiedPayment, error) {
	args := m.Called(ctx, reference)
	v, _ := args.Get(0).(usecase.VerifiedPayment)
	return v, args.Error(1)
}

func (m *GatewayMock) VerifySignature(body []byte, signature string) bool {
	args := m.Called(body, signature)
	return args.Bool(0)
}

func (m *GatewayMock) ParseWebhookEvent(body []byte) (usecase.WebhookEvent, error) {
	args := m.Called(body)
	ev, _ := args.Get(0).(usecase.WebhookEvent)
	return ev, args.Error(1)
}

type ImageStoreMock struct{ mock.Mock }

func (m *ImageStoreMock) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	args := m.Called(ctx, filename)
	return args.String(0), args.Error(1)
}

// =====================
// 注文テーブルの代わり（payment_ref ユニーク）
// =====================

type memOrderRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   []model.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{nextID: 1}
}

func (r *memOrderRepo) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.rows {
		if o.ID == orderID {
			return o, nil
		}
	}
	return model.Order{}, repo.ErrNotFound
}

func (r *memOrderRepo) FindByPaymentRef(ctx context.Context, ref string) (model.Order, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.rows {
		if o.PaymentRef == ref {
			return o, true, nil
		}
	}
	return model.Order{}, false, nil
}

func (r *memOrderRepo) Create(ctx context.Context, order model.Order) (model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.rows {
		if o.PaymentRef == order.PaymentRef {
			return model.Order{}, repo.ErrDuplicateReference
		}
	}
	order.ID = r.nextID
	r.nextID++
	order.CreatedAt = time.Now().Add(time.Duration(order.ID) * time.Millisecond)
	r.rows = append(r.rows, order)
	return order, nil
}

func (r *memOrderRepo) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == orderID {
			r.rows[i].Status = status
			return nil
		}
	}
	return repo.ErrNotFound
}

func (r *memOrderRepo) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Order{}
	for _, o := range r.rows {
		if f.Status == "" || string(o.Status) == f.Status {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memOrderRepo) CountByStatus(ctx context.Context, status model.OrderStatus) (int64, error) {
	orders, _ := r.List(ctx, repo.OrderListFilter{Status: string(status)})
	return int64(len(orders)), nil
}

func (r *memOrderRepo) SumTotalByStatus(ctx context.Context, status model.OrderStatus) (decimal.Decimal, error) {
	orders, _ := r.List(ctx, repo.OrderListFilter{Status: string(status)})
	sum := decimal.Zero
	for _, o := range orders {
		sum = sum.Add(o.TotalPrice)
	}
	return sum, nil
}

// 指定ステータスの注文を直接入れる
func (r *memOrderRepo) seed(id int64, status model.OrderStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, model.Order{
		ID:         id,
		PaymentRef: "seed_" + string(rune('a'+id)),
		Status:     status,
		TotalPrice: decimal.NewFromInt(1000),
		Items:      []model.CartItem{},
		CreatedAt:  time.Now().Add(time.Duration(id) * time.Millisecond),
	})
	if id >= r.nextID {
		r.nextID = id + 1
	}
}

// =====================
// Helpers
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func assertHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "want *HTTPError, got %v", err)
	assert.Equal(t, status, he.Status)
}
