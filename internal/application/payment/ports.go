package payment

import (
	"context"

	domcust "github.com/payflow-labs/payflow/internal/domain/customer"
	dompay "github.com/payflow-labs/payflow/internal/domain/payment"
)

// The processor capabilities are outbound ports of the application layer.
// A concrete backend implements the subset it supports; the service holds
// the optional ones as nil-able references typed by capability, never by
// backend.

// Charger attempts to debit payment.Source for payment.Amount. Backend
// rejections come back as a failed PaymentResponse, not as an error;
// the error return is reserved for programming and transport-setup faults.
type Charger interface {
	Charge(ctx context.Context, customer domcust.CustomerData, payment dompay.PaymentData) (dompay.PaymentResponse, error)
}

// Refunder reverses a prior charge by its transaction id.
type Refunder interface {
	Refund(ctx context.Context, transactionID string) (dompay.PaymentResponse, error)
}

// RecurringCharger establishes a repeating charge, resolving or creating
// the backend-side customer record and attaching the payment source as
// the default method. Creation without an email fails with a
// ConfigurationError.
type RecurringCharger interface {
	SetupRecurring(ctx context.Context, customer domcust.CustomerData, payment dompay.PaymentData) (dompay.PaymentResponse, error)
}

// Notifier delivers a best-effort payment confirmation over whichever
// channel the implementation targets.
type Notifier interface {
	SendConfirmation(ctx context.Context, customer domcust.CustomerData) error
}

// TransactionLog is the append-only record of outcomes. Write failures
// propagate; there is no recovery path for a lost ledger.
type TransactionLog interface {
	LogTransaction(ctx context.Context, customer domcust.CustomerData, payment dompay.PaymentData, resp dompay.PaymentResponse) error
	LogRefund(ctx context.Context, transactionID string, resp dompay.PaymentResponse) error
}
