package handler_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/handler"
	"storefront/internal/infra/cartstore"
	"storefront/internal/infra/db"
	"storefront/internal/infra/payment"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/infra/storage"
	"storefront/internal/middleware"
	"storefront/internal/server"
	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	paystackSecret = "sk_test_handler"
	adminPassword  = "correct horse"
)

// =====================
// Paystack の代わり
// =====================

type fakePaystack struct {
	mu       sync.Mutex
	inits    int
	amounts  map[string]int64
	metadata map[string]json.RawMessage
}

func newFakePaystack() *fakePaystack {
	return &fakePaystack{amounts: map[string]int64{}, metadata: map[string]json.RawMessage{}}
}

func (f *fakePaystack) initCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inits
}

func (f *fakePaystack) amountOf(ref string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.amounts[ref]
}

func (f *fakePaystack) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/transaction/initialize":
		var body struct {
			Amount   int64           `json:"amount"`
			Metadata json.RawMessage `json:"metadata"`
		}
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &body)

		f.inits++
		ref := fmt.Sprintf("ref_%d", f.inits)
		f.amounts[ref] = body.Amount
		f.metadata[ref] = body.Metadata
		_, _ = fmt.Fprintf(w, `{"status":true,"message":"ok","data":{"authorization_url":"https://checkout.test/%s","access_code":"x","reference":"%s"}}`, ref, ref)

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/transaction/verify/"):
		ref := strings.TrimPrefix(r.URL.Path, "/transaction/verify/")
		amt, ok := f.amounts[ref]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"status":false,"message":"Transaction reference not found"}`))
			return
		}
		_, _ = fmt.Fprintf(w, `{"status":true,"message":"ok","data":{"status":"success","reference":"%s","amount":%d,"currency":"NGN","metadata":%s}}`,
			ref, amt, string(f.metadata[ref]))

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// =====================
// アプリ一式（sqlite + メモリカート + ローカル画像）
// =====================

type testApp struct {
	e        *echo.Echo
	db       *gorm.DB
	paystack *fakePaystack
	products *infraRepo.ProductGormRepository
	orders   *infraRepo.OrderGormRepository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gormDB))

	fake := newFakePaystack()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	gateway, err := payment.NewPaystackAdapter(payment.PaystackConfig{BaseURL: srv.URL, SecretKey: paystackSecret, Timeout: 5 * time.Second})
	require.NoError(t, err)

	images, err := storage.NewLocalImageStore(t.TempDir(), "/static/uploads")
	require.NoError(t, err)

	productRepo := infraRepo.NewProductGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	settingsRepo := infraRepo.NewSettingsGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)
	carts := cartstore.NewMemoryStore()

	hash, err := auth.NewBcryptPasswordHasher(bcrypt.MinCost).Hash(adminPassword)
	require.NoError(t, err)
	issuer := auth.NewJWTIssuer("0123456789abcdef0123456789abcdef", time.Hour)
	loginUC := auth.NewLoginUsecase("admin", hash, auth.NewBcryptPasswordVerifier(), issuer, auth.RealClock{})

	productUC := usecase.NewProductUsecase(productRepo, txm, images)
	e := server.New(server.Deps{
		Logger:        zap.NewNop(),
		SessionStore:  middleware.NewVisitorCookieStore(config.SessionConfig{Secret: "test-session", MaxAge: 3600}),
		AdminParser:   issuer,
		Products:      handler.NewProductHandler(productUC),
		Cart:          handler.NewCartHandler(usecase.NewCartUsecase(carts, productRepo)),
		Payment:       handler.NewPaymentHandler(usecase.NewCheckoutUsecase(carts, orderRepo, gateway), "http://shop.test"),
		Settings:      handler.NewSettingsHandler(usecase.NewSettingsUsecase(settingsRepo, txm, images)),
		AdminAuth:     handler.NewAdminAuthHandler(loginUC, false),
		AdminProducts: handler.NewAdminProductHandler(productUC),
		AdminOrders:   handler.NewAdminOrderHandler(usecase.NewAdminOrderUsecase(orderRepo, productRepo, txm, false)),
		AuditLogs:     handler.NewAuditLogHandler(usecase.NewAuditLogUsecase(auditRepo)),
		UploadDir:     images.Dir(),
		PublicPath:    images.PublicPath(),
	})

	return &testApp{e: e, db: gormDB, paystack: fake, products: productRepo, orders: orderRepo}
}

func (a *testApp) seedProduct(t *testing.T, name string, price int64) model.Product {
	t.Helper()
	p, err := a.products.Create(t.Context(), model.Product{
		Name:     name,
		Price:    decimal.NewFromInt(price),
		ImageURL: "/static/uploads/seed.png",
		Size:     model.DefaultProductSize,
	})
	require.NoError(t, err)
	return p
}

// =====================
// cookieを持ち回るクライアント
// =====================

type browser struct {
	t       *testing.T
	app     *testApp
	cookies map[string]*http.Cookie
}

func (a *testApp) browser(t *testing.T) *browser {
	return &browser{t: t, app: a, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.app.e.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) sendJSON(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return b.do(req)
}

func (b *browser) loginAdmin() {
	b.t.Helper()
	rec := b.sendJSON(http.MethodPost, "/admin/login", fmt.Sprintf(`{"username":"admin","password":%q}`, adminPassword))
	require.Equal(b.t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(b.t, b.cookies, middleware.AdminCookieName)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
