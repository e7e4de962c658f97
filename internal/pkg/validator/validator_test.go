package validator_test

import (
	"testing"

	"github.com/bridge-pay/bridge-api/internal/pkg/validator"
)

type phoneForm struct {
	Phone string `json:"phone" validate:"required,phone"`
}

func TestPhoneValidation(t *testing.T) {
	valid := []string{"+254712345678", "254712345678", "+12025550123", "999999999"}
	for _, p := range valid {
		if errs := validator.Validate(&phoneForm{Phone: p}); errs != nil {
			t.Errorf("expected %q to be valid, got %v", p, errs)
		}
	}

	invalid := []string{"", "12345678", "+2547abc45678", "+1234567890123456", "not-a-phone"}
	for _, p := range invalid {
		errs := validator.Validate(&phoneForm{Phone: p})
		if errs == nil {
			t.Errorf("expected %q to be rejected", p)
			continue
		}
		if _, ok := errs["phone"]; !ok {
			t.Errorf("expected error keyed by json tag, got %v", errs)
		}
	}
}

type typeFilter struct {
	Type string `json:"type" validate:"tx_type"`
}

func TestTxTypeValidation(t *testing.T) {
	for _, v := range []string{"", "TRANSFER", "DEPOSIT", "WITHDRAWAL"} {
		if errs := validator.Validate(&typeFilter{Type: v}); errs != nil {
			t.Errorf("expected %q to be valid, got %v", v, errs)
		}
	}
	for _, v := range []string{"transfer", "REFUND", "X"} {
		if errs := validator.Validate(&typeFilter{Type: v}); errs == nil {
			t.Errorf("expected %q to be rejected", v)
		}
	}
}
