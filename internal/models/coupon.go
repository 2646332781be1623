package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "percentage"
	DiscountTypeFixedAmount DiscountType = "fixed_amount"
)

type Coupon struct {
	ID                string          `json:"id"`
	Code              string          `json:"code"`
	DiscountType      DiscountType    `json:"discount_type"`
	DiscountValue     decimal.Decimal `json:"discount_value"`
	MinPurchaseAmount decimal.Decimal `json:"min_purchase_amount"`
	MaxUses           *int            `json:"max_uses,omitempty"`
	CurrentUses       int             `json:"current_uses"`
	ExpiresAt         *time.Time      `json:"expires_at,omitempty"`
	Active            bool            `json:"active"`
	Description       string          `json:"description,omitempty"`
}

type CouponUsage struct {
	ID              string          `json:"id"`
	CouponID        string          `json:"coupon_id"`
	OrderID         string          `json:"order_id"`
	Email           string          `json:"email"`
	DiscountApplied decimal.Decimal `json:"discount_applied"`
	OrderTotal      decimal.Decimal `json:"order_total"`
	UsedAt          time.Time       `json:"used_at"`
}

// ProvinceCosts maps a province name to its shipping-company cost.
type ProvinceCosts map[string]decimal.Decimal

// Cost returns the table entry and whether the province is mapped.
func (p ProvinceCosts) Cost(province string) (decimal.Decimal, bool) {
	v, ok := p[province]
	return v, ok
}

// Names returns the provinces in alphabetical order.
func (p ProvinceCosts) Names() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
