package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/clients"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/service"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/view"
)

type stubPaymentClient struct{}

func (stubPaymentClient) CreatePreference(_ context.Context, order *models.Order) (*models.PaymentPreference, error) {
	return &models.PaymentPreference{
		ID:        "pref-" + order.ID,
		InitPoint: "https://pay.example/checkout?pref=pref-" + order.ID,
	}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Checkout: config.CheckoutConfig{
			Currency:               "ARS",
			CourierFee:             5000,
			TransferDiscountRate:   0.10,
			DiscountPolicy:         "exclusive",
			BlurDebounce:           600 * time.Millisecond,
			SubmitLockTTL:          time.Minute,
			DefaultCourierProvince: "Santa Fe",
		},
	}
}

type testEnv struct {
	router *gin.Engine
	orders *repository.MemoryOrderRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	provinces := models.ProvinceCosts{"Cordoba": decimal.NewFromInt(2000)}
	orders := repository.NewMemoryOrderRepository()
	couponRepo := repository.NewMemoryCouponRepository(models.Coupon{
		ID:            "c1",
		Code:          "WELCOME10",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
		Active:        true,
	})
	catalog := repository.NewMemoryProductCatalog(
		models.Product{ID: "p1", Slug: "maceta", Name: "Maceta", BasePrice: decimal.NewFromInt(2500)},
	)
	m := metrics.NewCheckoutMetrics(nil)

	validator := service.NewValidator(provinces)
	coupons := service.NewCouponService(couponRepo, orders)
	orderService := service.NewOrderService(orders, coupons, stubPaymentClient{}, clients.NewMockNotificationClient(), events.NopPublisher{}, cfg)
	checkout := service.NewCheckoutService(
		repository.NewMemorySessionStore(),
		catalog,
		service.NewCalculator(service.NewPricingConfig(cfg.Checkout, provinces)),
		validator,
		coupons,
		orderService,
		m,
		cfg.Checkout,
	)

	h := NewHandlers(
		checkout,
		coupons,
		service.NewPaymentService(orderService),
		view.NewRenderer(validator, provinces, cfg.Checkout.BlurDebounce),
		m,
		cfg,
	)

	r := gin.New()
	r.Use(RequestID())
	r.POST("/api/checkout/sessions", h.CreateSession)
	r.GET("/api/checkout/sessions/:id", h.GetSession)
	r.POST("/api/checkout/sessions/:id/fields", h.UpdateField)
	r.POST("/api/checkout/sessions/:id/sections/:section/activate", h.ActivateSection)
	r.POST("/api/checkout/sessions/:id/sections/:section/continue", h.ContinueSection)
	r.POST("/api/checkout/sessions/:id/coupon", h.ApplyCoupon)
	r.POST("/api/checkout/quote", h.Quote)
	r.GET("/api/shipping/provinces", h.Provinces)
	r.GET("/api/validate-coupon", h.ValidateCoupon)
	r.POST("/checkout/:id/submit", h.SubmitCheckout)
	r.GET("/pay/:id", h.PaymentReturn)

	return &testEnv{router: r, orders: orders}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) view.CheckoutView {
	t.Helper()
	var v view.CheckoutView
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	return v
}

func (e *testEnv) createSession(t *testing.T) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/checkout/sessions", gin.H{
		"items": []gin.H{{"slug": "maceta", "color": "red", "qty": 2}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	return decodeView(t, w).SessionID
}

func (e *testEnv) setField(t *testing.T, id, field, value string) view.CheckoutView {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/checkout/sessions/"+id+"/fields", gin.H{"field": field, "value": value})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for field %s, got %d", field, w.Code)
	}
	return decodeView(t, w)
}

func (e *testEnv) continueSection(t *testing.T, id string, section models.SectionName) view.CheckoutView {
	t.Helper()
	w := e.do(t, http.MethodPost, fmt.Sprintf("/api/checkout/sessions/%s/sections/%s/continue", id, section), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for continue %s, got %d", section, w.Code)
	}
	return decodeView(t, w)
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &Handlers{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Health(c)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if resp["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", resp["status"])
	}

	if resp["service"] != "checkout-service" {
		t.Errorf("Expected service 'checkout-service', got %v", resp["service"])
	}
}

func TestReady(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		checks   []ReadinessCheck
		expected int
	}{
		{"no checks", nil, http.StatusOK},
		{
			"all healthy",
			[]ReadinessCheck{{Name: "database", Check: func(context.Context) error { return nil }}},
			http.StatusOK,
		},
		{
			"redis down",
			[]ReadinessCheck{
				{Name: "database", Check: func(context.Context) error { return nil }},
				{Name: "redis", Check: func(context.Context) error { return errors.New("dial tcp: connection refused") }},
			},
			http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Handlers{readiness: tt.checks}

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

			h.Ready(c)

			if w.Code != tt.expected {
				t.Errorf("Expected status %d, got %d", tt.expected, w.Code)
			}
		})
	}
}

func TestLive(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &Handlers{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.Live(c)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", fmt.Errorf("session abc: %w", apperrors.ErrNotFound), http.StatusNotFound},
		{"validation", apperrors.NewValidationError(models.FieldEmail, "invalid email"), http.StatusBadRequest},
		{"section locked", apperrors.ErrSectionLocked, http.StatusConflict},
		{"already submitting", apperrors.ErrAlreadySubmitting, http.StatusConflict},
		{"upstream", fmt.Errorf("create preference: %w: %w", apperrors.ErrUpstream, errors.New("timeout")), http.StatusBadGateway},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			handleError(c, tt.err)

			if w.Code != tt.expected {
				t.Errorf("Expected status %d, got %d", tt.expected, w.Code)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("Expected propagated request id, got %q", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a generated request id")
	}
}

func TestCreateSessionHandler(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		body     interface{}
		expected int
	}{
		{"valid cart", gin.H{"items": []gin.H{{"slug": "maceta", "qty": 1}}}, http.StatusCreated},
		{"empty cart", gin.H{"items": []gin.H{}}, http.StatusBadRequest},
		{"missing qty", gin.H{"items": []gin.H{{"slug": "maceta"}}}, http.StatusBadRequest},
		{"unknown product", gin.H{"items": []gin.H{{"slug": "nope", "qty": 1}}}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/checkout/sessions", tt.body)
			if w.Code != tt.expected {
				t.Errorf("Expected status %d, got %d: %s", tt.expected, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetSessionHandler_NotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/checkout/sessions/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestActivateLockedSection(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	w := env.do(t, http.MethodPost, "/api/checkout/sessions/"+id+"/sections/payment/activate", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d", w.Code)
	}
	v := decodeView(t, w)
	if v.Warning == "" {
		t.Error("Expected a warning for a locked section")
	}
}

func TestCheckoutFlowHandlers(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	v := env.setField(t, id, models.FieldEmail, "not-an-email")
	if v.Sections[0].Fields[0].Error == "" {
		t.Errorf("Expected inline email error, got %+v", v.Sections[0].Fields[0])
	}

	env.setField(t, id, models.FieldEmail, "ana@example.com")
	env.setField(t, id, models.FieldName, "Ana")
	env.continueSection(t, id, models.SectionContact)
	env.continueSection(t, id, models.SectionShipping)
	env.setField(t, id, models.FieldPaymentMethod, string(models.PaymentMercadoPago))
	v = env.continueSection(t, id, models.SectionPayment)
	if !v.Submit.Enabled {
		t.Fatalf("Expected submit enabled, got %+v", v.Submit)
	}

	w := env.do(t, http.MethodPost, "/api/checkout/sessions/"+id+"/coupon", gin.H{"code": "WELCOME10", "seq": 1})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	v = decodeView(t, w)
	if !v.Coupon.Applied || v.Totals.Total != "$4,500" {
		t.Errorf("Expected coupon applied with total $4,500, got %+v / %s", v.Coupon, v.Totals.Total)
	}

	form := url.Values{}
	form.Set(models.FieldNotes, "<b>ring twice</b>")
	req := httptest.NewRequest(http.MethodPost, "/checkout/"+id+"/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("Expected status 303, got %d: %s", rec.Code, rec.Body.String())
	}
	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "https://pay.example/checkout") {
		t.Errorf("Expected redirect to the payment provider, got %q", location)
	}

	w = env.do(t, http.MethodGet, "/api/checkout/sessions/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected session to be cleared after submit, got %d", w.Code)
	}
}

func TestSubmitHandler_NotReady(t *testing.T) {
	env := newTestEnv(t)
	id := env.createSession(t)

	form := url.Values{}
	form.Set(models.FieldEmail, "ana@example.com")
	form.Set(models.FieldName, "Ana")
	form.Set(models.FieldShipping, string(models.ShippingPickup))
	form.Set(models.FieldPaymentMethod, string(models.PaymentTransfer))
	req := httptest.NewRequest(http.MethodPost, "/checkout/"+id+"/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}
}

func TestQuoteHandler(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		body     gin.H
		expected int
		total    string
	}{
		{"pickup transfer", gin.H{"subtotal": "10000", "shipping": "retiro", "payment_method": "transferencia"}, http.StatusOK, "$9,000"},
		{"courier", gin.H{"subtotal": "10000", "shipping": "cadete", "payment_method": "mercadopago"}, http.StatusOK, "$15,000"},
		{"coupon", gin.H{"subtotal": "10000", "shipping": "retiro", "coupon_code": "WELCOME10", "email": "ana@example.com"}, http.StatusOK, "$9,000"},
		{"unknown shipping", gin.H{"subtotal": "10000", "shipping": "drone"}, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/checkout/quote", tt.body)
			if w.Code != tt.expected {
				t.Fatalf("Expected status %d, got %d: %s", tt.expected, w.Code, w.Body.String())
			}
			if tt.total == "" {
				return
			}
			var resp struct {
				Totals view.TotalsView `json:"totals"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to parse response: %v", err)
			}
			if resp.Totals.Total != tt.total {
				t.Errorf("Expected total %s, got %s", tt.total, resp.Totals.Total)
			}
		})
	}
}

func TestProvincesHandler(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/shipping/provinces", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp struct {
		Provinces []view.ProvinceOption `json:"provinces"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(resp.Provinces) != 1 || resp.Provinces[0].Name != "Cordoba" {
		t.Errorf("unexpected provinces %+v", resp.Provinces)
	}
}

func TestValidateCouponHandler(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		query    string
		expected int
		valid    bool
	}{
		{"valid", "code=WELCOME10&email=ana@example.com&subtotal=10000", http.StatusOK, true},
		{"unknown code", "code=NOPE&email=ana@example.com&subtotal=10000", http.StatusOK, false},
		{"missing email", "code=WELCOME10&subtotal=10000", http.StatusOK, false},
		{"bad subtotal", "code=WELCOME10&email=ana@example.com&subtotal=abc", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/validate-coupon?"+tt.query, nil)
			if w.Code != tt.expected {
				t.Fatalf("Expected status %d, got %d", tt.expected, w.Code)
			}
			var resp map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to parse response: %v", err)
			}
			if resp["valid"] != tt.valid {
				t.Errorf("Expected valid=%v, got %v", tt.valid, resp["valid"])
			}
		})
	}
}

func TestPaymentReturnHandler(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := &models.Order{
		ID:     "order-1",
		Email:  "ana@example.com",
		Status: models.OrderStatusAwaitingPayment,
		Total:  decimal.NewFromInt(5000),
	}
	if err := env.orders.Create(ctx, order); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	w := env.do(t, http.MethodGet, "/pay/order-1?collection_status=approved", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	got, err := env.orders.GetByID(ctx, "order-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Status != models.OrderStatusFinished {
		t.Errorf("Expected status finished, got %s", got.Status)
	}

	w = env.do(t, http.MethodGet, "/pay/missing?status=approved", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}
