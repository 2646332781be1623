package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

func testOrder() *models.Order {
	return &models.Order{
		ID:             "o1",
		Email:          "ana@example.com",
		Name:           "Ana",
		ShippingMethod: models.ShippingCourier,
		Items: []models.OrderItem{
			{Title: "Maceta", Qty: 2, UnitPrice: decimal.NewFromInt(2500)},
		},
		ShippingCost: decimal.NewFromInt(5000),
		Total:        decimal.NewFromInt(10000),
		Currency:     "ARS",
	}
}

func TestHTTPPaymentClient_CreatePreference(t *testing.T) {
	var got PreferenceRequest
	var auth, requestID string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/preferences" || r.Method != http.MethodPost {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		requestID = r.Header.Get("X-Request-ID")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"pref-1","init_point":"https://pay.example/checkout?pref=pref-1"}`))
	}))
	defer srv.Close()

	c := NewHTTPPaymentClient(config.ServiceConfig{BaseURL: srv.URL, Timeout: time.Second, APIKey: "secret"}, "https://shop.example/")
	ctx := logging.ContextWithRequestID(context.Background(), "req-9")

	pref, err := c.CreatePreference(ctx, testOrder())
	if err != nil {
		t.Fatalf("CreatePreference error: %v", err)
	}

	if pref.ID != "pref-1" || pref.InitPoint == "" {
		t.Errorf("Unexpected preference: %+v", pref)
	}
	if auth != "Bearer secret" {
		t.Errorf("Authorization = %q", auth)
	}
	if requestID != "req-9" {
		t.Errorf("X-Request-ID = %q", requestID)
	}
	if len(got.Items) != 2 || got.Items[1].Title != "Courier" {
		t.Errorf("Expected product line plus courier line, got %+v", got.Items)
	}
	if got.BackURLs["success"] != "https://shop.example/pay/o1" {
		t.Errorf("success url = %q", got.BackURLs["success"])
	}
	if !got.Total.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("Total = %s", got.Total)
	}
}

func TestHTTPPaymentClient_CreatePreference_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "provider unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewHTTPPaymentClient(config.ServiceConfig{BaseURL: srv.URL, Timeout: time.Second}, "http://localhost")

	if _, err := c.CreatePreference(context.Background(), testOrder()); err == nil {
		t.Error("Expected error for 502 response")
	}
}

func TestHTTPPaymentClient_BuildPreferenceRequest_NoShippingLine(t *testing.T) {
	c := NewHTTPPaymentClient(config.ServiceConfig{}, "http://localhost")
	order := testOrder()
	order.ShippingMethod = models.ShippingPickup
	order.ShippingCost = decimal.Zero

	req := c.BuildPreferenceRequest(order)
	if len(req.Items) != 1 {
		t.Errorf("Expected only product lines for pickup, got %d", len(req.Items))
	}
}

func TestHTTPNotificationClient_Send(t *testing.T) {
	var got models.Notification
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewHTTPNotificationClient(config.ServiceConfig{BaseURL: srv.URL, Timeout: time.Second})
	err := c.Send(context.Background(), &models.Notification{
		Type:      models.NotificationOrderConfirmation,
		Recipient: "ana@example.com",
		Subject:   "Order received",
	})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if got.Recipient != "ana@example.com" {
		t.Errorf("Recipient = %q", got.Recipient)
	}
}

func TestHTTPNotificationClient_SendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPNotificationClient(config.ServiceConfig{BaseURL: srv.URL, Timeout: time.Second})
	if err := c.Send(context.Background(), &models.Notification{}); err == nil {
		t.Error("Expected error for 500 response")
	}
}
