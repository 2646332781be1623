package service

import (
	"strings"
	"testing"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

func testValidator() *Validator {
	return NewValidator(models.ProvinceCosts{"Cordoba": dec("2000")})
}

func TestValidator_ValidateField(t *testing.T) {
	v := testValidator()

	tests := []struct {
		name    string
		field   string
		form    models.FormValues
		wantErr bool
	}{
		{"valid email", models.FieldEmail, models.FormValues{"email": "ana@example.com"}, false},
		{"bad email", models.FieldEmail, models.FormValues{"email": "ana@"}, true},
		{"missing email", models.FieldEmail, models.FormValues{}, true},
		{"name too long", models.FieldName, models.FormValues{"name": strings.Repeat("a", 141)}, true},
		{"name ok", models.FieldName, models.FormValues{"name": "Ana"}, false},
		{"unknown shipping", models.FieldShipping, models.FormValues{"shipping": "drone"}, true},
		{"phone exempt for pickup", models.FieldPhone, models.FormValues{"shipping": "retiro"}, false},
		{"phone required for courier", models.FieldPhone, models.FormValues{"shipping": "cadete"}, true},
		{"phone with separators", models.FieldPhone, models.FormValues{"shipping": "cadete", "phone": "+54 341-555-1234"}, false},
		{"phone too short", models.FieldPhone, models.FormValues{"shipping": "cadete", "phone": "1234"}, true},
		{"phone with letters", models.FieldPhone, models.FormValues{"shipping": "cadete", "phone": "341abc5551"}, true},
		{"courier address required", models.FieldAddressCadete, models.FormValues{"shipping": "cadete"}, true},
		{"courier address exempt for company", models.FieldAddressCadete, models.FormValues{"shipping": "envio"}, false},
		{"province required for company", models.FieldProvince, models.FormValues{"shipping": "envio"}, true},
		{"province not in table", models.FieldProvince, models.FormValues{"shipping": "envio", "province": "Atlantis"}, true},
		{"province in table", models.FieldProvince, models.FormValues{"shipping": "envio", "province": "Cordoba"}, false},
		{"postal code digits", models.FieldPostalCode, models.FormValues{"shipping": "envio", "postal_code": "2000"}, false},
		{"postal code letters", models.FieldPostalCode, models.FormValues{"shipping": "envio", "postal_code": "S2000"}, true},
		{"dni eight digits", models.FieldDNI, models.FormValues{"shipping": "envio", "dni": "30123456"}, false},
		{"dni too short", models.FieldDNI, models.FormValues{"shipping": "envio", "dni": "123456"}, true},
		{"dni exempt for courier", models.FieldDNI, models.FormValues{"shipping": "cadete", "dni": "x"}, false},
		{"payment method required", models.FieldPaymentMethod, models.FormValues{}, true},
		{"payment method valid", models.FieldPaymentMethod, models.FormValues{"payment_method": "transferencia"}, false},
		{"notes optional", models.FieldNotes, models.FormValues{}, false},
		{"coupon optional", models.FieldCouponCode, models.FormValues{"coupon_code": "anything"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := v.ValidateField(tt.field, tt.form)
			if (msg != "") != tt.wantErr {
				t.Errorf("ValidateField(%s) = %q, wantErr %v", tt.field, msg, tt.wantErr)
			}
		})
	}
}

func TestValidator_ValidateSection_ShippingCompany(t *testing.T) {
	v := testValidator()
	form := models.FormValues{"shipping": "envio"}

	errs := v.ValidateSection(models.SectionShipping, form)

	for _, field := range []string{"phone", "address_envio", "province", "postal_code", "dni"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("Expected error for %s", field)
		}
	}
	if _, ok := errs["address_cadete"]; ok {
		t.Error("courier address should be exempt for shipping company")
	}
}

func TestValidator_Required(t *testing.T) {
	v := testValidator()

	if v.Required(models.FieldPhone, models.ShippingPickup) {
		t.Error("phone should not be required for pickup")
	}
	if !v.Required(models.FieldPhone, models.ShippingCompany) {
		t.Error("phone should be required for shipping company")
	}
	if v.Required(models.FieldNotes, models.ShippingCompany) {
		t.Error("notes are optional")
	}
	if !v.Required(models.FieldEmail, models.ShippingPickup) {
		t.Error("email is always required")
	}
}

func TestValidator_ExemptFields(t *testing.T) {
	v := testValidator()

	exempt := v.ExemptFields(models.ShippingPickup)
	want := []string{"phone", "address_cadete", "address_envio", "province", "postal_code", "dni"}
	if strings.Join(exempt, ",") != strings.Join(want, ",") {
		t.Errorf("ExemptFields(pickup) = %v, want %v", exempt, want)
	}
}

func TestValidator_ValidateAll(t *testing.T) {
	v := testValidator()

	err := v.ValidateAll(models.FormValues{"email": "ana@example.com", "name": "Ana", "shipping": "retiro"})
	if !apperrors.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}

	err = v.ValidateAll(models.FormValues{
		"email":          "ana@example.com",
		"name":           "Ana",
		"shipping":       "retiro",
		"payment_method": "efectivo",
	})
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestSanitizeOrderNotes(t *testing.T) {
	got := SanitizeOrderNotes("  <script>alert(1)</script><b>Ring twice</b>  ")
	if strings.Contains(got, "<") {
		t.Errorf("Expected markup removed, got %q", got)
	}
	if !strings.Contains(got, "Ring twice") {
		t.Errorf("Expected text kept, got %q", got)
	}

	long := SanitizeOrderNotes(strings.Repeat("ñ", 1200))
	if n := len([]rune(long)); n != 1000 {
		t.Errorf("Expected 1000 runes, got %d", n)
	}
}
