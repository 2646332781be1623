package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

// DiscountPolicy decides how the transfer discount and a coupon combine.
type DiscountPolicy string

const (
	// PolicyExclusive applies a single discount source; a coupon wins over transfer.
	PolicyExclusive DiscountPolicy = "exclusive"
	// PolicyStacked adds both, capped at subtotal + shipping.
	PolicyStacked DiscountPolicy = "stacked"
)

// ParseDiscountPolicy falls back to PolicyExclusive for unknown values.
func ParseDiscountPolicy(s string) DiscountPolicy {
	if DiscountPolicy(strings.ToLower(strings.TrimSpace(s))) == PolicyStacked {
		return PolicyStacked
	}
	return PolicyExclusive
}

// PricingConfig holds the inputs of the calculator that do not change per request.
type PricingConfig struct {
	CourierFee   decimal.Decimal
	TransferRate decimal.Decimal
	Provinces    models.ProvinceCosts
	Policy       DiscountPolicy
}

// NewPricingConfig builds the calculator settings from the checkout config.
func NewPricingConfig(cfg config.CheckoutConfig, provinces models.ProvinceCosts) PricingConfig {
	return PricingConfig{
		CourierFee:   decimal.NewFromFloat(cfg.CourierFee).Round(2),
		TransferRate: decimal.NewFromFloat(cfg.TransferDiscountRate),
		Provinces:    provinces,
		Policy:       ParseDiscountPolicy(cfg.DiscountPolicy),
	}
}

// TotalsInput is the form state the totals depend on.
type TotalsInput struct {
	Subtotal decimal.Decimal
	Shipping models.ShippingMethod
	Province string
	Payment  models.PaymentMethod
	Coupon   models.CouponDiscount
}

// Calculator computes the checkout cost breakdown. It has no side effects.
type Calculator struct {
	cfg PricingConfig
}

func NewCalculator(cfg PricingConfig) *Calculator {
	if cfg.Provinces == nil {
		cfg.Provinces = models.ProvinceCosts{}
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicyExclusive
	}
	return &Calculator{cfg: cfg}
}

// Provinces returns the shipping-company cost table in use.
func (c *Calculator) Provinces() models.ProvinceCosts {
	return c.cfg.Provinces
}

func (c *Calculator) Policy() DiscountPolicy {
	return c.cfg.Policy
}

// ShippingCost returns the cost for a method. Unmapped provinces cost zero.
func (c *Calculator) ShippingCost(method models.ShippingMethod, province string) decimal.Decimal {
	switch method {
	case models.ShippingCourier:
		return c.cfg.CourierFee
	case models.ShippingCompany:
		if cost, ok := c.cfg.Provinces.Cost(province); ok {
			return cost
		}
		return decimal.Zero
	default:
		return decimal.Zero
	}
}

// TransferDiscount is rate x (subtotal + shipCost), rounded to cents.
func (c *Calculator) TransferDiscount(subtotal, shipCost decimal.Decimal) decimal.Decimal {
	return c.cfg.TransferRate.Mul(subtotal.Add(shipCost)).Round(2)
}

// Totals computes the breakdown. Total is always Subtotal + ShipCost - Discount.
func (c *Calculator) Totals(in TotalsInput) models.CartTotals {
	subtotal := in.Subtotal.Round(2)
	ship := c.ShippingCost(in.Shipping, in.Province)

	transfer := decimal.Zero
	if in.Payment == models.PaymentTransfer {
		transfer = c.TransferDiscount(subtotal, ship)
	}

	coupon := decimal.Zero
	if in.Coupon.Applied() {
		coupon = decimal.Min(in.Coupon.Amount.Round(2), subtotal)
		if coupon.IsNegative() {
			coupon = decimal.Zero
		}
	}

	discount := decimal.Zero
	source := models.DiscountNone
	switch c.cfg.Policy {
	case PolicyStacked:
		discount = decimal.Min(transfer.Add(coupon), subtotal.Add(ship))
		switch {
		case transfer.IsPositive() && coupon.IsPositive():
			source = models.DiscountTransferAnd
		case coupon.IsPositive():
			source = models.DiscountCoupon
		case transfer.IsPositive():
			source = models.DiscountTransfer
		}
	default:
		if coupon.IsPositive() {
			discount, source = coupon, models.DiscountCoupon
		} else if transfer.IsPositive() {
			discount, source = transfer, models.DiscountTransfer
		}
	}

	return models.CartTotals{
		Subtotal:       subtotal,
		ShipCost:       ship,
		Discount:       discount,
		Total:          subtotal.Add(ship).Sub(discount),
		DiscountSource: source,
	}
}

var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney renders "$10,800" or "$1,234.50". Cents are dropped when zero.
func FormatMoney(amount decimal.Decimal) string {
	amount = amount.Round(2)
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	whole := amount.Truncate(0)
	cents := amount.Sub(whole).Mul(decimal.NewFromInt(100)).IntPart()

	out := sign + "$" + moneyPrinter.Sprintf("%d", whole.IntPart())
	if cents != 0 {
		out += fmt.Sprintf(".%02d", cents)
	}
	return out
}
