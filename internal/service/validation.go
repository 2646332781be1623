package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

const (
	maxNameLength    = 140
	maxAddressLength = 255
	maxNotesLength   = 1000
	minPhoneDigits   = 8
	maxPhoneDigits   = 15
)

var (
	dniPattern        = regexp.MustCompile(`^\d{7,8}$`)
	postalCodePattern = regexp.MustCompile(`^\d{4,5}$`)
	phoneCharsPattern = regexp.MustCompile(`^[0-9+\- ]+$`)

	notesPolicy = bluemonday.StrictPolicy()
)

// fieldRule describes one checkout input. requiredFor nil means the field is
// required for every shipping method; optional fields are never required.
type fieldRule struct {
	name        string
	label       string
	section     models.SectionName
	optional    bool
	requiredFor func(models.ShippingMethod) bool
	check       func(v *Validator, value string) string
}

func onlyFor(methods ...models.ShippingMethod) func(models.ShippingMethod) bool {
	return func(m models.ShippingMethod) bool {
		for _, want := range methods {
			if m == want {
				return true
			}
		}
		return false
	}
}

var fieldRules = []fieldRule{
	{name: models.FieldEmail, label: "email", section: models.SectionContact, check: checkEmail},
	{name: models.FieldName, label: "name", section: models.SectionContact, check: maxLength(maxNameLength)},
	{name: models.FieldShipping, label: "shipping method", section: models.SectionShipping, check: checkShipping},
	{name: models.FieldPhone, label: "phone", section: models.SectionShipping, requiredFor: onlyFor(models.ShippingCourier, models.ShippingCompany), check: checkPhone},
	{name: models.FieldAddressCadete, label: "courier address", section: models.SectionShipping, requiredFor: onlyFor(models.ShippingCourier), check: maxLength(maxAddressLength)},
	{name: models.FieldAddressEnvio, label: "shipping address", section: models.SectionShipping, requiredFor: onlyFor(models.ShippingCompany), check: maxLength(maxAddressLength)},
	{name: models.FieldProvince, label: "province", section: models.SectionShipping, requiredFor: onlyFor(models.ShippingCompany), check: checkProvince},
	{name: models.FieldPostalCode, label: "postal code", section: models.SectionShipping, requiredFor: onlyFor(models.ShippingCompany), check: checkPattern(postalCodePattern, "postal code must have 4 or 5 digits")},
	{name: models.FieldDNI, label: "DNI", section: models.SectionShipping, requiredFor: onlyFor(models.ShippingCompany), check: checkPattern(dniPattern, "DNI must have 7 or 8 digits")},
	{name: models.FieldPaymentMethod, label: "payment method", section: models.SectionPayment, check: checkPaymentMethod},
	{name: models.FieldNotes, label: "notes", section: models.SectionPayment, optional: true, check: maxLength(maxNotesLength)},
	{name: models.FieldCouponCode, label: "coupon code", section: models.SectionPayment, optional: true},
}

// Validator checks checkout fields against the rules of the selected shipping method.
type Validator struct {
	validate  *validator.Validate
	provinces models.ProvinceCosts
	rules     map[string]fieldRule
}

func NewValidator(provinces models.ProvinceCosts) *Validator {
	rules := make(map[string]fieldRule, len(fieldRules))
	for _, r := range fieldRules {
		rules[r.name] = r
	}
	return &Validator{
		validate:  validator.New(),
		provinces: provinces,
		rules:     rules,
	}
}

// SectionFields lists the fields of a section in form order.
func SectionFields(section models.SectionName) []string {
	var out []string
	for _, r := range fieldRules {
		if r.section == section {
			out = append(out, r.name)
		}
	}
	return out
}

// SectionOf returns the section a field belongs to.
func (v *Validator) SectionOf(field string) (models.SectionName, bool) {
	r, ok := v.rules[field]
	return r.section, ok
}

// Label returns the human name of a field.
func (v *Validator) Label(field string) string {
	if r, ok := v.rules[field]; ok {
		return r.label
	}
	return field
}

// Required reports whether field must be filled in for the given method.
func (v *Validator) Required(field string, method models.ShippingMethod) bool {
	r, ok := v.rules[field]
	if !ok || r.optional {
		return false
	}
	return r.requiredFor == nil || r.requiredFor(method)
}

// Visible reports whether the field applies to the given method at all.
// Method-specific fields for other methods are exempt from validation.
func (v *Validator) Visible(field string, method models.ShippingMethod) bool {
	r, ok := v.rules[field]
	if !ok {
		return false
	}
	return r.requiredFor == nil || r.requiredFor(method)
}

// ValidateField returns "" when the value is acceptable, otherwise a message.
func (v *Validator) ValidateField(field string, form models.FormValues) string {
	r, ok := v.rules[field]
	if !ok {
		return ""
	}
	method, _ := models.ParseShippingMethod(form.Get(models.FieldShipping))
	if !v.Visible(field, method) {
		return ""
	}

	value := strings.TrimSpace(form.Get(field))
	if value == "" {
		if v.Required(field, method) {
			return r.label + " is required"
		}
		return ""
	}
	if r.check == nil {
		return ""
	}
	return r.check(v, value)
}

// ValidateSection validates every applicable field of a section and
// returns the failing ones keyed by field name.
func (v *Validator) ValidateSection(section models.SectionName, form models.FormValues) map[string]string {
	errs := make(map[string]string)
	for _, field := range SectionFields(section) {
		if msg := v.ValidateField(field, form); msg != "" {
			errs[field] = msg
		}
	}
	return errs
}

// ValidateAll runs every section and returns a ValidationError when any field fails.
func (v *Validator) ValidateAll(form models.FormValues) error {
	all := make(map[string]string)
	for _, section := range models.Sections {
		for field, msg := range v.ValidateSection(section, form) {
			all[field] = msg
		}
	}
	if len(all) > 0 {
		return apperrors.NewFieldErrors("checkout", all)
	}
	return nil
}

// ExemptFields lists the method-specific fields that do not apply to method.
func (v *Validator) ExemptFields(method models.ShippingMethod) []string {
	var out []string
	for _, r := range fieldRules {
		if !v.Visible(r.name, method) {
			out = append(out, r.name)
		}
	}
	return out
}

func checkEmail(v *Validator, value string) string {
	if err := v.validate.Var(value, "required,email"); err != nil {
		return "email is not valid"
	}
	return ""
}

func checkShipping(_ *Validator, value string) string {
	if _, ok := models.ParseShippingMethod(value); !ok {
		return "shipping method is not valid"
	}
	return ""
}

func checkPaymentMethod(_ *Validator, value string) string {
	if !models.PaymentMethod(value).Valid() {
		return "payment method is not valid"
	}
	return ""
}

func checkPhone(_ *Validator, value string) string {
	if !phoneCharsPattern.MatchString(value) {
		return "phone may only contain digits, spaces, + and -"
	}
	digits := 0
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < minPhoneDigits || digits > maxPhoneDigits {
		return "phone must have between 8 and 15 digits"
	}
	return ""
}

func checkProvince(v *Validator, value string) string {
	if _, ok := v.provinces.Cost(value); !ok {
		return "province is not in the shipping table"
	}
	return ""
}

func checkPattern(re *regexp.Regexp, msg string) func(*Validator, string) string {
	return func(_ *Validator, value string) string {
		if !re.MatchString(value) {
			return msg
		}
		return ""
	}
}

func maxLength(n int) func(*Validator, string) string {
	return func(_ *Validator, value string) string {
		if utf8.RuneCountInString(value) > n {
			return fmt.Sprintf("must be at most %d characters", n)
		}
		return ""
	}
}

// SanitizeOrderNotes strips markup from order notes and limits their length.
func SanitizeOrderNotes(notes string) string {
	notes = strings.TrimSpace(notesPolicy.Sanitize(notes))
	if utf8.RuneCountInString(notes) > maxNotesLength {
		notes = string([]rune(notes)[:maxNotesLength])
	}
	return notes
}
