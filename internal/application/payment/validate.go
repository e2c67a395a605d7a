package payment

import (
	"strings"

	domcust "github.com/payflow-labs/payflow/internal/domain/customer"
	dompay "github.com/payflow-labs/payflow/internal/domain/payment"
)

// CustomerValidator runs the local checks on customer data. Pure; no
// side effects beyond the returned error.
type CustomerValidator struct{}

func (CustomerValidator) Validate(c domcust.CustomerData) error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Subject: "customer data", Reason: "missing name"}
	}
	if c.Contact == nil {
		return &ValidationError{Subject: "customer data", Reason: "missing contact info"}
	}
	if !c.Contact.HasChannel() {
		return &ValidationError{Subject: "customer data", Reason: "contact info needs an email or a phone"}
	}
	return nil
}

// PaymentValidator runs the local checks on payment data.
type PaymentValidator struct{}

func (PaymentValidator) Validate(p dompay.PaymentData) error {
	if p.Source == "" {
		return &ValidationError{Subject: "payment data", Reason: "missing source"}
	}
	if p.Amount <= 0 {
		return &ValidationError{Subject: "payment data", Reason: "amount must be greater than zero"}
	}
	return nil
}
