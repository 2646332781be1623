package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShippingMethod identifies how an order reaches the customer. Values match
// the storefront form.
type ShippingMethod string

const (
	ShippingPickup  ShippingMethod = "retiro"
	ShippingCourier ShippingMethod = "cadete"
	ShippingCompany ShippingMethod = "envio"
)

// ParseShippingMethod accepts the form value; empty maps to pickup.
func ParseShippingMethod(s string) (ShippingMethod, bool) {
	switch ShippingMethod(s) {
	case "", ShippingPickup:
		return ShippingPickup, true
	case ShippingCourier:
		return ShippingCourier, true
	case ShippingCompany:
		return ShippingCompany, true
	}
	return ShippingPickup, false
}

type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "efectivo"
	PaymentTransfer    PaymentMethod = "transferencia"
	PaymentMercadoPago PaymentMethod = "mercadopago"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentTransfer, PaymentMercadoPago:
		return true
	}
	return false
}

// SectionName is one of the checkout wizard steps.
type SectionName string

const (
	SectionContact  SectionName = "contact"
	SectionShipping SectionName = "shipping"
	SectionPayment  SectionName = "payment"
)

// Sections is the fixed wizard order.
var Sections = []SectionName{SectionContact, SectionShipping, SectionPayment}

// Index returns the position of s in Sections, or -1.
func (s SectionName) Index() int {
	for i, name := range Sections {
		if name == s {
			return i
		}
	}
	return -1
}

type SectionState string

const (
	SectionLocked    SectionState = "locked"
	SectionActive    SectionState = "active"
	SectionCompleted SectionState = "completed"
)

type DiscountSource string

const (
	DiscountNone        DiscountSource = "none"
	DiscountTransfer    DiscountSource = "transfer"
	DiscountCoupon      DiscountSource = "coupon"
	DiscountTransferAnd DiscountSource = "transfer+coupon"
)

// CartTotals is the cost breakdown shown to the customer.
// Total = Subtotal + ShipCost - Discount.
type CartTotals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShipCost       decimal.Decimal `json:"ship_cost"`
	Discount       decimal.Decimal `json:"discount"`
	Total          decimal.Decimal `json:"total"`
	DiscountSource DiscountSource  `json:"discount_source"`
}

// CouponDiscount is set only by a successful coupon validation.
type CouponDiscount struct {
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
}

func (c CouponDiscount) Applied() bool {
	return c.Code != "" && c.Amount.IsPositive()
}

// CartLine is one product line of the cart being checked out.
type CartLine struct {
	Slug      string          `json:"slug"`
	ProductID string          `json:"product_id,omitempty"`
	Title     string          `json:"title"`
	Color     string          `json:"color,omitempty"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// FormValues holds the raw checkout form keyed by field name.
type FormValues map[string]string

func (f FormValues) Get(name string) string {
	if f == nil {
		return ""
	}
	return f[name]
}

// WizardState is the persisted part of the section wizard. A section is
// active when it is Open, completed when Completed[s] is set and not open,
// locked otherwise.
type WizardState struct {
	Open        SectionName               `json:"open"`
	Completed   map[SectionName]bool      `json:"completed"`
	PendingBlur map[SectionName]time.Time `json:"pending_blur,omitempty"`
	Submitting  bool                      `json:"submitting"`
}

// NoticeLevel classifies transient toast messages.
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeWarn  NoticeLevel = "warning"
	NoticeError NoticeLevel = "error"
)

type Notice struct {
	Level NoticeLevel `json:"level"`
	Text  string      `json:"text"`
}

// Session is the server-side checkout state for one cart.
type Session struct {
	ID            string            `json:"id"`
	Lines         []CartLine        `json:"lines"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	Form          FormValues        `json:"form"`
	Touched       map[string]bool   `json:"touched,omitempty"`
	Errors        map[string]string `json:"errors,omitempty"`
	Wizard        WizardState       `json:"wizard"`
	Coupon        CouponDiscount    `json:"coupon"`
	CouponMessage string            `json:"coupon_message,omitempty"`
	CouponSeq     int64             `json:"coupon_seq"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ShippingMethod returns the method currently selected in the form.
func (s *Session) ShippingMethod() ShippingMethod {
	m, _ := ParseShippingMethod(s.Form.Get(FieldShipping))
	return m
}

func (s *Session) PaymentMethod() PaymentMethod {
	return PaymentMethod(s.Form.Get(FieldPaymentMethod))
}

// Form field names, matching the storefront inputs.
const (
	FieldEmail         = "email"
	FieldName          = "name"
	FieldShipping      = "shipping"
	FieldPhone         = "phone"
	FieldAddressCadete = "address_cadete"
	FieldAddressEnvio  = "address_envio"
	FieldProvince      = "province"
	FieldPostalCode    = "postal_code"
	FieldDNI           = "dni"
	FieldPaymentMethod = "payment_method"
	FieldNotes         = "notes"
	FieldCouponCode    = "coupon_code"
)
