package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	OrderStatusFinished        OrderStatus = "finished"
	OrderStatusShipped         OrderStatus = "shipped"
	OrderStatusCancelled       OrderStatus = "cancelled"
	OrderStatusRefunded        OrderStatus = "refunded"
)

type Order struct {
	ID             string          `json:"id"`
	Status         OrderStatus     `json:"status"`
	Items          []OrderItem     `json:"items"`
	Email          string          `json:"email"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone,omitempty"`
	DNI            string          `json:"dni,omitempty"`
	Address        string          `json:"address,omitempty"`
	PostalCode     string          `json:"postal_code,omitempty"`
	Province       string          `json:"province,omitempty"`
	ShippingMethod ShippingMethod  `json:"shipping_method"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	Discount       decimal.Decimal `json:"discount"`
	CouponCode     string          `json:"coupon_code,omitempty"`
	Total          decimal.Decimal `json:"total"`
	Currency       string          `json:"currency"`
	Notes          string          `json:"notes,omitempty"`
	PreferenceID   string          `json:"preference_id,omitempty"`
	PaymentStatus  string          `json:"payment_status,omitempty"`
	Notified       bool            `json:"notified"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id,omitempty"`
	Title     string          `json:"title"`
	Color     string          `json:"color,omitempty"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// IsPending reports whether the order still waits for payment.
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusAwaitingPayment
}

// Product is the catalog view the checkout needs to price cart lines.
type Product struct {
	ID        string          `json:"id"`
	Slug      string          `json:"slug"`
	Name      string          `json:"name"`
	BasePrice decimal.Decimal `json:"base_price"`
}

// PaymentPreference is the checkout created at the payment provider.
type PaymentPreference struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

type NotificationType string

const (
	NotificationOrderConfirmation NotificationType = "order_confirmation"
	NotificationOrderPaid         NotificationType = "order_paid"
)

// Notification is a message for the notification service.
type Notification struct {
	Type      NotificationType  `json:"type"`
	Recipient string            `json:"recipient"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}
