package notify

import (
	"context"
	"errors"

	domcust "github.com/payflow-labs/payflow/internal/domain/customer"
	"github.com/payflow-labs/payflow/internal/observability"
)

const confirmationBody = "Thank you for your payment."

var (
	ErrNoEmail      = errors.New("notify: customer has no email address")
	ErrNoPhone      = errors.New("notify: customer has no phone number")
	ErrNotReachable = errors.New("notify: customer has no contact channel")
)

// EmailNotifier sends the confirmation over email. Delivery is simulated
// through the structured log; the SMTP hookup is an external collaborator.
type EmailNotifier struct {
	log  observability.Logger
	sent observability.Counter
}

func NewEmail(tel observability.Observability) *EmailNotifier {
	log, sent := instruments(tel)
	return &EmailNotifier{log: log.With(observability.F("component", "email_notifier")), sent: sent}
}

func (n *EmailNotifier) SendConfirmation(ctx context.Context, customer domcust.CustomerData) error {
	_ = ctx
	if customer.Email() == "" {
		n.sent.Add(1, observability.L("channel", "email"), observability.L("outcome", "error"))
		return ErrNoEmail
	}
	n.log.Info("confirmation_sent",
		observability.F("to", customer.Email()),
		observability.F("subject", "Payment Confirmation"),
		observability.F("body", confirmationBody),
	)
	n.sent.Add(1, observability.L("channel", "email"), observability.L("outcome", "sent"))
	return nil
}

// SMSNotifier sends the confirmation over SMS.
type SMSNotifier struct {
	log  observability.Logger
	sent observability.Counter
}

func NewSMS(tel observability.Observability) *SMSNotifier {
	log, sent := instruments(tel)
	return &SMSNotifier{log: log.With(observability.F("component", "sms_notifier")), sent: sent}
}

func (n *SMSNotifier) SendConfirmation(ctx context.Context, customer domcust.CustomerData) error {
	_ = ctx
	if customer.Phone() == "" {
		n.sent.Add(1, observability.L("channel", "sms"), observability.L("outcome", "error"))
		return ErrNoPhone
	}
	n.log.Info("confirmation_sent",
		observability.F("to", customer.Phone()),
		observability.F("body", confirmationBody),
	)
	n.sent.Add(1, observability.L("channel", "sms"), observability.L("outcome", "sent"))
	return nil
}

// Router picks the channel from the customer's contact data, email first.
// Validation upstream guarantees at least one channel on any customer
// that reaches a notifier.
type Router struct {
	email *EmailNotifier
	sms   *SMSNotifier
}

func NewRouter(tel observability.Observability) *Router {
	return &Router{email: NewEmail(tel), sms: NewSMS(tel)}
}

func (r *Router) SendConfirmation(ctx context.Context, customer domcust.CustomerData) error {
	switch {
	case customer.Email() != "":
		return r.email.SendConfirmation(ctx, customer)
	case customer.Phone() != "":
		return r.sms.SendConfirmation(ctx, customer)
	default:
		return ErrNotReachable
	}
}

func instruments(tel observability.Observability) (observability.Logger, observability.Counter) {
	if tel == nil {
		return observability.NopLogger(), observability.NopCounter()
	}
	return tel.Logger(), tel.Metrics().Counter(observability.MNotifications)
}
