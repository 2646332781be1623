package service

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

// OrderEventPublisher publishes order lifecycle events.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
	PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error
}

// PaymentClient creates payment preferences with the provider.
type PaymentClient interface {
	CreatePreference(ctx context.Context, order *models.Order) (*models.PaymentPreference, error)
}

// NotificationSender delivers customer notifications.
type NotificationSender interface {
	Send(ctx context.Context, n *models.Notification) error
}
