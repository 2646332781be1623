package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

const headerRequestID = "X-Request-ID"

// PreferenceItem is one line of a payment preference.
type PreferenceItem struct {
	Title      string          `json:"title"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	CurrencyID string          `json:"currency_id"`
}

// PreferenceRequest is sent to the payment service to start a checkout.
type PreferenceRequest struct {
	OrderID           string            `json:"order_id"`
	ExternalReference string            `json:"external_reference"`
	Items             []PreferenceItem  `json:"items"`
	Discount          decimal.Decimal   `json:"discount"`
	Total             decimal.Decimal   `json:"total"`
	Currency          string            `json:"currency"`
	Payer             map[string]string `json:"payer,omitempty"`
	BackURLs          map[string]string `json:"back_urls"`
	AutoReturn        string            `json:"auto_return,omitempty"`
}

// HTTPPaymentClient creates payment preferences through the payment service.
type HTTPPaymentClient struct {
	baseURL       string
	publicBaseURL string
	httpClient    *http.Client
	apiKey        string
	logger        *logging.LoggerV2
}

// NewHTTPPaymentClient creates a new HTTP-based payment client. Return URLs
// point at publicBaseURL.
func NewHTTPPaymentClient(cfg config.ServiceConfig, publicBaseURL string) *HTTPPaymentClient {
	return &HTTPPaymentClient{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey: cfg.APIKey,
		logger: logging.NewLoggerV2("payment-client"),
	}
}

// BuildPreferenceRequest maps an order to the preference payload. Shipping is
// sent as its own line.
func (c *HTTPPaymentClient) BuildPreferenceRequest(order *models.Order) *PreferenceRequest {
	items := make([]PreferenceItem, 0, len(order.Items)+1)
	for _, it := range order.Items {
		items = append(items, PreferenceItem{
			Title:      it.Title,
			Quantity:   it.Qty,
			UnitPrice:  it.UnitPrice,
			CurrencyID: order.Currency,
		})
	}
	if order.ShippingCost.IsPositive() {
		label := "Shipping"
		if order.ShippingMethod == models.ShippingCourier {
			label = "Courier"
		}
		items = append(items, PreferenceItem{
			Title:      label,
			Quantity:   1,
			UnitPrice:  order.ShippingCost,
			CurrencyID: order.Currency,
		})
	}

	returnURL := c.publicBaseURL + "/pay/" + order.ID
	return &PreferenceRequest{
		OrderID:           order.ID,
		ExternalReference: order.ID,
		Items:             items,
		Discount:          order.Discount,
		Total:             order.Total,
		Currency:          order.Currency,
		Payer:             map[string]string{"email": order.Email, "name": order.Name},
		BackURLs: map[string]string{
			"success": returnURL,
			"pending": returnURL,
			"failure": returnURL,
		},
		AutoReturn: "approved",
	}
}

// CreatePreference registers the order with the payment provider and returns
// the redirect target.
func (c *HTTPPaymentClient) CreatePreference(ctx context.Context, order *models.Order) (*models.PaymentPreference, error) {
	c.logger.Debug("Creating payment preference", logging.Fields{
		"order_id": order.ID,
		"total":    order.Total.String(),
	})

	body, err := json.Marshal(c.BuildPreferenceRequest(order))
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/v2/preferences", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	setHeaders(ctx, httpReq, c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("Payment preference request failed", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("Payment preference returned error", logging.Fields{
			"order_id":    order.ID,
			"status_code": resp.StatusCode,
		})
		return nil, fmt.Errorf("payment service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var pref models.PaymentPreference
	if err := json.NewDecoder(resp.Body).Decode(&pref); err != nil {
		return nil, err
	}
	if pref.InitPoint == "" {
		return nil, fmt.Errorf("payment service returned no init_point for order %s", order.ID)
	}

	c.logger.Info("Payment preference created", logging.Fields{
		"order_id":      order.ID,
		"preference_id": pref.ID,
	})
	return &pref, nil
}

func setHeaders(ctx context.Context, req *http.Request, apiKey string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	if requestID := logging.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set(headerRequestID, requestID)
	}
}
