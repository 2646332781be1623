// Package view turns checkout snapshots into the declarative model the
// storefront page renders.
package view

import (
	"time"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/service"
)

type FieldView struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Value    string `json:"value"`
	Required bool   `json:"required"`
	Visible  bool   `json:"visible"`
	Touched  bool   `json:"touched"`
	Error    string `json:"error,omitempty"`
}

type SectionView struct {
	Name   models.SectionName  `json:"name"`
	State  models.SectionState `json:"state"`
	Open   bool                `json:"open"`
	Fields []FieldView         `json:"fields"`
}

// TotalsView holds display strings for the totals box. Amount keeps the
// exact numbers for clients that compute with them.
type TotalsView struct {
	Subtotal      string            `json:"subtotal"`
	ShipCost      string            `json:"ship_cost"`
	ShipLabel     string            `json:"ship_label,omitempty"`
	Discount      string            `json:"discount"`
	DiscountLabel string            `json:"discount_label,omitempty"`
	ShowDiscount  bool              `json:"show_discount"`
	Total         string            `json:"total"`
	Amount        models.CartTotals `json:"amount"`
}

type LineView struct {
	Title     string `json:"title"`
	Color     string `json:"color,omitempty"`
	Qty       int    `json:"qty"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type CouponView struct {
	Code    string `json:"code"`
	Applied bool   `json:"applied"`
	Amount  string `json:"amount,omitempty"`
	Message string `json:"message,omitempty"`
	Seq     int64  `json:"seq"`
}

type SubmitView struct {
	Enabled    bool   `json:"enabled"`
	Submitting bool   `json:"submitting"`
	Label      string `json:"label"`
	Reason     string `json:"reason,omitempty"`
}

type ProvinceOption struct {
	Name string `json:"name"`
	Cost string `json:"cost"`
}

// CheckoutView is everything the checkout page shows.
type CheckoutView struct {
	SessionID    string           `json:"session_id"`
	Lines        []LineView       `json:"lines"`
	Sections     []SectionView    `json:"sections"`
	Totals       TotalsView       `json:"totals"`
	StickyTotals TotalsView       `json:"sticky_totals"`
	Coupon       CouponView       `json:"coupon"`
	Submit       SubmitView       `json:"submit"`
	Provinces    []ProvinceOption `json:"provinces"`
	Warning      string           `json:"warning,omitempty"`
	Notice       *models.Notice   `json:"notice,omitempty"`
	Stale        bool             `json:"stale,omitempty"`
	DebounceMS   int64            `json:"debounce_ms"`
	OrderID      string           `json:"order_id,omitempty"`
	RedirectURL  string           `json:"redirect_url,omitempty"`
}

// Renderer builds CheckoutViews.
type Renderer struct {
	validator *service.Validator
	provinces []ProvinceOption
	debounce  time.Duration
}

func NewRenderer(validator *service.Validator, provinces models.ProvinceCosts, debounce time.Duration) *Renderer {
	return &Renderer{
		validator: validator,
		provinces: ProvinceOptions(provinces),
		debounce:  debounce,
	}
}

// ProvinceOptions lists the province table in alphabetical order.
func ProvinceOptions(provinces models.ProvinceCosts) []ProvinceOption {
	names := provinces.Names()
	out := make([]ProvinceOption, 0, len(names))
	for _, name := range names {
		cost, _ := provinces.Cost(name)
		out = append(out, ProvinceOption{Name: name, Cost: service.FormatMoney(cost)})
	}
	return out
}

func (r *Renderer) Render(snap *service.Snapshot) *CheckoutView {
	session := snap.Session
	totals := Totals(snap.Totals, session.Coupon.Code)

	v := &CheckoutView{
		SessionID:    session.ID,
		Lines:        lines(session.Lines),
		Sections:     r.sections(snap),
		Totals:       totals,
		StickyTotals: totals,
		Coupon: CouponView{
			Code:    session.Form.Get(models.FieldCouponCode),
			Applied: session.Coupon.Applied(),
			Message: session.CouponMessage,
			Seq:     session.CouponSeq,
		},
		Submit:     submit(snap.Gate, session.Wizard.Submitting),
		Provinces:  r.provinces,
		Warning:    snap.Warning,
		Notice:     snap.Notice,
		Stale:      snap.Stale,
		DebounceMS: r.debounce.Milliseconds(),
	}
	if v.Coupon.Applied {
		v.Coupon.Code = session.Coupon.Code
		v.Coupon.Amount = service.FormatMoney(session.Coupon.Amount)
	}
	if snap.Placed != nil {
		v.OrderID = snap.Placed.Order.ID
		v.RedirectURL = snap.Placed.RedirectURL
	}
	return v
}

func (r *Renderer) sections(snap *service.Snapshot) []SectionView {
	session := snap.Session
	method := session.ShippingMethod()

	out := make([]SectionView, 0, len(models.Sections))
	for _, name := range models.Sections {
		sv := SectionView{
			Name:  name,
			State: snap.States[name],
			Open:  snap.Open == name,
		}
		for _, field := range service.SectionFields(name) {
			sv.Fields = append(sv.Fields, FieldView{
				Name:     field,
				Label:    r.validator.Label(field),
				Value:    session.Form.Get(field),
				Required: r.validator.Required(field, method),
				Visible:  r.validator.Visible(field, method),
				Touched:  session.Touched[field],
				Error:    session.Errors[field],
			})
		}
		out = append(out, sv)
	}
	return out
}

// Totals formats a breakdown. couponCode labels a coupon discount.
func Totals(t models.CartTotals, couponCode string) TotalsView {
	v := TotalsView{
		Subtotal:     service.FormatMoney(t.Subtotal),
		ShipCost:     service.FormatMoney(t.ShipCost),
		Discount:     service.FormatMoney(t.Discount.Neg()),
		ShowDiscount: t.Discount.IsPositive(),
		Total:        service.FormatMoney(t.Total),
		Amount:       t,
	}
	// ShipCost stays in money format; the free-shipping label is separate.
	if t.ShipCost.IsZero() {
		v.ShipLabel = "Free"
	}

	switch t.DiscountSource {
	case models.DiscountTransfer:
		v.DiscountLabel = "Bank transfer discount"
	case models.DiscountCoupon:
		v.DiscountLabel = "Coupon " + couponCode
	case models.DiscountTransferAnd:
		v.DiscountLabel = "Bank transfer + coupon " + couponCode
	}
	return v
}

func lines(in []models.CartLine) []LineView {
	out := make([]LineView, 0, len(in))
	for _, l := range in {
		out = append(out, LineView{
			Title:     l.Title,
			Color:     l.Color,
			Qty:       l.Qty,
			UnitPrice: service.FormatMoney(l.UnitPrice),
			Subtotal:  service.FormatMoney(l.Subtotal()),
		})
	}
	return out
}

func submit(gate service.SubmitGate, submitting bool) SubmitView {
	v := SubmitView{
		Enabled:    gate.Enabled,
		Submitting: submitting,
		Label:      "Place order",
		Reason:     gate.Reason,
	}
	if submitting {
		v.Label = "Placing order..."
	}
	return v
}
