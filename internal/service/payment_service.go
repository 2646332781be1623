package service

import (
	"context"
	"strings"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

// Provider statuses reported on the payment return URL.
const (
	PaymentStatusApproved  = "approved"
	PaymentStatusPending   = "pending"
	PaymentStatusInProcess = "in_process"
	PaymentStatusRejected  = "rejected"
	PaymentStatusCancelled = "cancelled"
	PaymentStatusRefunded  = "refunded"
)

// PaymentReturn is what the customer sees after coming back from the provider.
type PaymentReturn struct {
	Order   *models.Order `json:"order"`
	Status  string        `json:"status"`
	Message string        `json:"message"`
}

// PaymentService handles the customer's return from the payment provider.
type PaymentService struct {
	orders *OrderService
	logger *logging.LoggerV2
}

// NewPaymentService creates a new payment service.
func NewPaymentService(orders *OrderService) *PaymentService {
	return &PaymentService{
		orders: orders,
		logger: logging.NewLoggerV2("payment-service"),
	}
}

// HandleReturn applies the provider status to the order. An empty status
// only loads the order.
func (s *PaymentService) HandleReturn(ctx context.Context, orderID, status string) (*PaymentReturn, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	s.logger.Info("Payment return", logging.Fields{
		"order_id": orderID,
		"status":   status,
	})

	var err error
	switch status {
	case "":
	case PaymentStatusApproved:
		err = s.orders.MarkPaid(ctx, orderID, status)
	case PaymentStatusRejected, PaymentStatusCancelled:
		err = s.orders.MarkFailed(ctx, orderID, status)
	case PaymentStatusRefunded:
		err = s.orders.MarkRefunded(ctx, orderID, status)
	default:
		_, err = s.orders.RecordPaymentStatus(ctx, orderID, status)
	}
	if err != nil {
		s.logger.Error("Failed to apply payment return", logging.Fields{
			"order_id": orderID,
			"status":   status,
			"error":    err.Error(),
		})
		return nil, err
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &PaymentReturn{
		Order:   order,
		Status:  status,
		Message: returnMessage(order),
	}, nil
}

func returnMessage(order *models.Order) string {
	switch order.Status {
	case models.OrderStatusFinished, models.OrderStatusShipped:
		return "Payment approved. Thank you for your purchase!"
	case models.OrderStatusCancelled:
		return "The payment was not completed. The order was cancelled."
	case models.OrderStatusRefunded:
		return "The payment was refunded."
	}
	if order.PaymentMethod != models.PaymentMercadoPago {
		return "Order received. Payment instructions were sent to " + order.Email + "."
	}
	return "Your payment is being processed."
}
