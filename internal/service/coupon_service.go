package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/repository"
)

// CouponResult is the outcome shown to the customer for a coupon check.
type CouponResult struct {
	Code     string          `json:"code"`
	Valid    bool            `json:"valid"`
	Discount decimal.Decimal `json:"discount"`
	Message  string          `json:"message"`
}

// CouponService validates coupons and records their redemption.
type CouponService struct {
	coupons repository.CouponRepository
	orders  repository.OrderRepository
	now     func() time.Time
	logger  *logging.LoggerV2
}

func NewCouponService(coupons repository.CouponRepository, orders repository.OrderRepository) *CouponService {
	return &CouponService{
		coupons: coupons,
		orders:  orders,
		now:     time.Now,
		logger:  logging.NewLoggerV2("coupon-service"),
	}
}

func couponRejected(msg string) error {
	return apperrors.NewValidationError(models.FieldCouponCode, msg)
}

// ValidateCoupon checks that email may use code on a cart of subtotal.
// Rejections are *apperrors.ValidationError; store failures wrap ErrUpstream.
func (s *CouponService) ValidateCoupon(ctx context.Context, code, email string, subtotal decimal.Decimal) (*models.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	email = strings.ToLower(strings.TrimSpace(email))

	if code == "" {
		return nil, couponRejected("coupon code is empty")
	}
	if email == "" {
		return nil, apperrors.NewValidationError(models.FieldEmail, "email is required to validate a coupon")
	}

	coupon, err := s.coupons.FindByCode(ctx, code)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, couponRejected("coupon not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find coupon: %w: %w", apperrors.ErrUpstream, err)
	}

	if !coupon.Active {
		return nil, couponRejected("coupon is inactive")
	}
	if coupon.ExpiresAt != nil && s.now().After(*coupon.ExpiresAt) {
		return nil, couponRejected("coupon has expired")
	}
	if coupon.MaxUses != nil && coupon.CurrentUses >= *coupon.MaxUses {
		return nil, couponRejected("coupon usage limit reached")
	}
	if subtotal.LessThan(coupon.MinPurchaseAmount) {
		return nil, couponRejected("minimum purchase not reached (required: " + FormatMoney(coupon.MinPurchaseAmount) + ")")
	}

	used, err := s.coupons.HasUsageByEmail(ctx, coupon.ID, email)
	if err != nil {
		return nil, fmt.Errorf("check coupon usage: %w: %w", apperrors.ErrUpstream, err)
	}
	if used {
		return nil, couponRejected("you have already used this coupon")
	}

	pending, err := s.orders.FindPendingByEmailAndCoupon(ctx, email, code)
	if err != nil {
		return nil, fmt.Errorf("check pending orders: %w: %w", apperrors.ErrUpstream, err)
	}
	if len(pending) > 0 {
		return nil, couponRejected(fmt.Sprintf("you have %d pending order(s) with this coupon; complete or cancel them first", len(pending)))
	}

	return coupon, nil
}

// CalculateDiscount returns the coupon discount for subtotal, capped at
// subtotal and never negative.
func (s *CouponService) CalculateDiscount(coupon *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch coupon.DiscountType {
	case models.DiscountTypePercentage:
		discount = subtotal.Mul(coupon.DiscountValue).Div(decimal.NewFromInt(100))
	case models.DiscountTypeFixedAmount:
		discount = coupon.DiscountValue
	default:
		return decimal.Zero
	}

	discount = decimal.Min(discount, subtotal)
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount.Round(2)
}

// Check validates a coupon and reports the result in customer terms.
// The error is non-nil only for store failures.
func (s *CouponService) Check(ctx context.Context, code, email string, subtotal decimal.Decimal) (CouponResult, error) {
	result := CouponResult{Code: strings.ToUpper(strings.TrimSpace(code)), Discount: decimal.Zero}

	coupon, err := s.ValidateCoupon(ctx, code, email, subtotal)
	if err != nil {
		var ve *apperrors.ValidationError
		if errors.As(err, &ve) {
			result.Message = ve.Message
			return result, nil
		}
		s.logger.Error("Coupon validation failed", logging.Fields{
			"code":  result.Code,
			"error": err.Error(),
		})
		return result, err
	}

	result.Valid = true
	result.Discount = s.CalculateDiscount(coupon, subtotal)
	result.Message = "coupon applied: " + FormatMoney(result.Discount) + " off"
	return result, nil
}

// ApplyCoupon records a redemption after the order was created.
func (s *CouponService) ApplyCoupon(ctx context.Context, coupon *models.Coupon, order *models.Order) error {
	if err := s.coupons.IncrementUses(ctx, coupon.ID); err != nil {
		return fmt.Errorf("increment coupon uses: %w", err)
	}

	usage := &models.CouponUsage{
		ID:              uuid.NewString(),
		CouponID:        coupon.ID,
		OrderID:         order.ID,
		Email:           strings.ToLower(strings.TrimSpace(order.Email)),
		DiscountApplied: order.Discount,
		OrderTotal:      order.Total,
		UsedAt:          s.now().UTC(),
	}
	if err := s.coupons.SaveUsage(ctx, usage); err != nil {
		return fmt.Errorf("save coupon usage: %w", err)
	}

	s.logger.Info("Coupon redeemed", logging.Fields{
		"coupon": coupon.Code,
		"order":  order.ID,
	})
	return nil
}
