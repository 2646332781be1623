package service

import (
	"context"
	"fmt"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/repository"
)

// PlacedOrder is the result of turning a checkout into an order.
type PlacedOrder struct {
	Order       *models.Order
	RedirectURL string
}

// OrderService handles order business logic.
type OrderService struct {
	orderRepo          repository.OrderRepository
	coupons            *CouponService
	paymentClient      PaymentClient
	notificationClient NotificationSender
	eventPublisher     OrderEventPublisher
	config             *config.Config
	logger             *logging.LoggerV2
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	coupons *CouponService,
	paymentClient PaymentClient,
	notificationClient NotificationSender,
	eventPublisher OrderEventPublisher,
	cfg *config.Config,
) *OrderService {
	return &OrderService{
		orderRepo:          orderRepo,
		coupons:            coupons,
		paymentClient:      paymentClient,
		notificationClient: notificationClient,
		eventPublisher:     eventPublisher,
		config:             cfg,
		logger:             logging.NewLoggerV2("order-service"),
	}
}

// PlaceOrder persists order as awaiting payment, records the coupon
// redemption and creates the payment preference. A failed preference still
// yields an order; the customer is sent to the local payment page instead.
func (s *OrderService) PlaceOrder(ctx context.Context, order *models.Order, coupon *models.Coupon) (*PlacedOrder, error) {
	s.logger.Info("Placing order", logging.Fields{
		"order_id":        order.ID,
		"item_count":      len(order.Items),
		"shipping_method": order.ShippingMethod,
		"payment_method":  order.PaymentMethod,
	})

	order.Status = models.OrderStatusAwaitingPayment
	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.logger.Error("Failed to create order", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
		return nil, fmt.Errorf("create order: %w", err)
	}

	if coupon != nil {
		if err := s.coupons.ApplyCoupon(ctx, coupon, order); err != nil {
			// Log but don't fail
			s.logger.Error("Failed to record coupon usage", logging.Fields{
				"order_id": order.ID,
				"coupon":   coupon.Code,
				"error":    err.Error(),
			})
		}
	}

	if s.config.Features.EnableOrderEvents {
		if err := s.eventPublisher.PublishOrderCreated(ctx, order); err != nil {
			s.logger.Error("Failed to publish order created event", logging.Fields{
				"order_id": order.ID,
				"error":    err.Error(),
			})
		}
	}

	placed := &PlacedOrder{Order: order, RedirectURL: "/pay/" + order.ID}

	pref, err := s.paymentClient.CreatePreference(ctx, order)
	if err != nil {
		s.logger.Warn("Payment preference failed, falling back to payment page", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
	} else {
		placed.RedirectURL = pref.InitPoint
		order.PreferenceID = pref.ID
		if err := s.orderRepo.SetPreferenceID(ctx, order.ID, pref.ID); err != nil {
			s.logger.Error("Failed to store preference id", logging.Fields{
				"order_id":      order.ID,
				"preference_id": pref.ID,
				"error":         err.Error(),
			})
		}
	}

	if s.config.Features.EnableNotifications {
		go s.sendOrderConfirmationNotification(context.Background(), order)
	}

	s.logger.Info("Order placed", logging.Fields{
		"order_id": order.ID,
		"total":    order.Total.String(),
	})
	return placed, nil
}

// GetOrder retrieves an order by ID.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	s.logger.Debug("Getting order", logging.Fields{"order_id": id})
	return s.orderRepo.GetByID(ctx, id)
}

// UpdateOrderStatus moves an order to status. Moving to the current status is
// a no-op so redelivered payment events stay harmless.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus, paymentStatus string) (*models.Order, error) {
	s.logger.Info("Updating order status", logging.Fields{
		"order_id":   id,
		"new_status": status,
	})

	current, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}

	if !isValidStatusTransition(current.Status, status) {
		return nil, apperrors.NewValidationError("status", fmt.Sprintf(
			"invalid status transition from %s to %s",
			current.Status,
			status,
		))
	}

	previousStatus := current.Status
	order, err := s.orderRepo.UpdateStatus(ctx, id, status, paymentStatus)
	if err != nil {
		return nil, err
	}

	if s.config.Features.EnableOrderEvents {
		if err := s.eventPublisher.PublishOrderStatusChanged(ctx, order, previousStatus); err != nil {
			s.logger.Error("Failed to publish status change event", logging.Fields{
				"order_id": order.ID,
				"error":    err.Error(),
			})
		}
	}

	return order, nil
}

// RecordPaymentStatus stores the provider status without moving the order.
func (s *OrderService) RecordPaymentStatus(ctx context.Context, id, paymentStatus string) (*models.Order, error) {
	current, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.orderRepo.UpdateStatus(ctx, id, current.Status, paymentStatus)
}

// MarkPaid finishes the order and sends the paid notification once.
func (s *OrderService) MarkPaid(ctx context.Context, orderID, paymentStatus string) error {
	if paymentStatus == "" {
		paymentStatus = "approved"
	}
	order, err := s.UpdateOrderStatus(ctx, orderID, models.OrderStatusFinished, paymentStatus)
	if err != nil {
		return err
	}

	first, err := s.orderRepo.MarkNotified(ctx, orderID)
	if err != nil {
		s.logger.Error("Failed to mark order notified", logging.Fields{
			"order_id": orderID,
			"error":    err.Error(),
		})
		return nil
	}
	if first && s.config.Features.EnableNotifications {
		go s.sendOrderPaidNotification(context.Background(), order)
	}
	return nil
}

func (s *OrderService) MarkFailed(ctx context.Context, orderID, paymentStatus string) error {
	_, err := s.UpdateOrderStatus(ctx, orderID, models.OrderStatusCancelled, paymentStatus)
	return err
}

func (s *OrderService) MarkRefunded(ctx context.Context, orderID, paymentStatus string) error {
	_, err := s.UpdateOrderStatus(ctx, orderID, models.OrderStatusRefunded, paymentStatus)
	return err
}

func (s *OrderService) sendOrderConfirmationNotification(ctx context.Context, order *models.Order) {
	n := &models.Notification{
		Type:      models.NotificationOrderConfirmation,
		Recipient: order.Email,
		Subject:   "Order Confirmation",
		Body:      fmt.Sprintf("Your order %s has been received. Total: %s.", order.ID, FormatMoney(order.Total)),
		Metadata: map[string]string{
			"order_id":       order.ID,
			"total":          order.Total.StringFixed(2),
			"payment_method": string(order.PaymentMethod),
		},
	}

	if err := s.notificationClient.Send(ctx, n); err != nil {
		s.logger.Error("Failed to send order confirmation", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
	}
}

func (s *OrderService) sendOrderPaidNotification(ctx context.Context, order *models.Order) {
	n := &models.Notification{
		Type:      models.NotificationOrderPaid,
		Recipient: order.Email,
		Subject:   "Payment received",
		Body:      fmt.Sprintf("We received the payment for order %s.", order.ID),
		Metadata:  map[string]string{"order_id": order.ID},
	}

	if err := s.notificationClient.Send(ctx, n); err != nil {
		s.logger.Error("Failed to send payment notification", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
	}
}

func isValidStatusTransition(from, to models.OrderStatus) bool {
	validTransitions := map[models.OrderStatus][]models.OrderStatus{
		models.OrderStatusAwaitingPayment: {models.OrderStatusFinished, models.OrderStatusCancelled},
		models.OrderStatusFinished:        {models.OrderStatusShipped, models.OrderStatusRefunded},
		models.OrderStatusShipped:         {models.OrderStatusRefunded},
		models.OrderStatusCancelled:       {},
		models.OrderStatusRefunded:        {},
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == to {
			return true
		}
	}
	return false
}

