package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

// HTTPNotificationClient sends notifications through the notification service.
type HTTPNotificationClient struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	logger     *logging.LoggerV2
}

// NewHTTPNotificationClient creates a new HTTP-based notification client.
func NewHTTPNotificationClient(cfg config.ServiceConfig) *HTTPNotificationClient {
	return &HTTPNotificationClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey: cfg.APIKey,
		logger: logging.NewLoggerV2("notification-client"),
	}
}

// Send posts a notification.
func (c *HTTPNotificationClient) Send(ctx context.Context, n *models.Notification) error {
	c.logger.Debug("Sending notification", logging.Fields{
		"recipient": n.Recipient,
		"type":      n.Type,
	})

	body, err := json.Marshal(n)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/v2/notifications", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	setHeaders(ctx, req, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to send notification", logging.Fields{
			"recipient": n.Recipient,
			"error":     err.Error(),
		})
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("notification service returned status %d", resp.StatusCode)
	}

	c.logger.Info("Notification sent", logging.Fields{
		"recipient": n.Recipient,
		"type":      n.Type,
	})
	return nil
}

// MockNotificationClient records notifications for tests.
type MockNotificationClient struct {
	mu            sync.Mutex
	notifications []*models.Notification
	sent          chan struct{}
}

// NewMockNotificationClient creates a mock notification client.
func NewMockNotificationClient() *MockNotificationClient {
	return &MockNotificationClient{sent: make(chan struct{}, 16)}
}

func (m *MockNotificationClient) Send(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	m.notifications = append(m.notifications, n)
	m.mu.Unlock()
	select {
	case m.sent <- struct{}{}:
	default:
	}
	return nil
}

// Sent is signalled after every Send.
func (m *MockNotificationClient) Sent() <-chan struct{} {
	return m.sent
}

func (m *MockNotificationClient) Notifications() []*models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.Notification(nil), m.notifications...)
}
