package payment

import (
	"context"
	"fmt"
	"time"

	domcust "github.com/payflow-labs/payflow/internal/domain/customer"
	dompay "github.com/payflow-labs/payflow/internal/domain/payment"
	"github.com/payflow-labs/payflow/internal/observability"
	"github.com/payflow-labs/payflow/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	serviceName = "payment-service"

	opProcessTransaction = "payment.process_transaction"
	opProcessRefund      = "payment.process_refund"
	opSetupRecurring     = "payment.setup_recurring"

	spanPrefix = "UC."
)

// Collaborators is the fixed set of dependencies a Service is built from.
// Charger, Notifier and Log are required; Refunder and Recurring are
// optional capabilities a backend may not provide.
type Collaborators struct {
	Charger   Charger
	Refunder  Refunder
	Recurring RecurringCharger
	Notifier  Notifier
	Log       TransactionLog
}

// Service orchestrates a single best-effort synchronous transaction per
// call: validate -> delegate -> notify -> log -> respond. Composition is
// static per instance; switching backends means constructing a new
// Service, not mutating this one.
type Service struct {
	customers CustomerValidator
	payments  PaymentValidator

	charger   Charger
	refunder  Refunder
	recurring RecurringCharger
	notifier  Notifier
	translog  TransactionLog

	tel        observability.Observability
	log        observability.Logger
	reqCounter observability.Counter
	durHist    observability.Histogram
	notifCount observability.Counter
}

func NewService(c Collaborators, tel observability.Observability) *Service {
	baseLog := observability.NopLogger().With(
		observability.F("service", serviceName),
	)
	metricsProvider := observability.NopMetrics()
	if tel != nil {
		baseLog = tel.Logger().With(
			observability.F("service", serviceName),
		)
		metricsProvider = tel.Metrics()
	}

	return &Service{
		charger:    c.Charger,
		refunder:   c.Refunder,
		recurring:  c.Recurring,
		notifier:   c.Notifier,
		translog:   c.Log,
		tel:        tel,
		log:        baseLog,
		reqCounter: metricsProvider.Counter(observability.MPaymentRequests),
		durHist:    metricsProvider.Histogram(observability.MPaymentDuration),
		notifCount: metricsProvider.Counter(observability.MNotifications),
	}
}

// SupportsRefunds reports whether a refund capability was configured.
func (s *Service) SupportsRefunds() bool { return s.refunder != nil }

// SupportsRecurring reports whether a recurring capability was configured.
func (s *Service) SupportsRecurring() bool { return s.recurring != nil }

// ProcessTransaction runs the full pipeline for one charge attempt.
// Validation failures abort before any backend, notifier or log call.
// A declined charge is returned as a failed response: it is always
// written to the transaction log but never triggers a confirmation.
func (s *Service) ProcessTransaction(ctx context.Context, customer domcust.CustomerData, payment dompay.PaymentData) (resp dompay.PaymentResponse, err error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", opProcessTransaction),
		observability.F("customer", customer.Name),
		observability.F("amount", payment.Amount),
	)

	tracer := observability.NopTracer()
	if s.tel != nil {
		tracer = s.tel.Tracer()
	}
	ctx, span := tracer.Start(ctx, spanPrefix+"ProcessTransaction",
		attribute.String("use_case", opProcessTransaction),
		attribute.Int64("payment.amount", payment.Amount),
	)

	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		if span != nil {
			span.SetAttributes(attribute.String("payment.status", string(resp.Status)))
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, statusText)
			} else {
				span.SetStatus(codes.Ok, statusText)
			}
			span.End()
		}
		s.finish(logger, opProcessTransaction, outcome, statusText, start, resp, err)
	}()

	if err = s.customers.Validate(customer); err != nil {
		outcome, statusText = "error", "CUSTOMER_INVALID"
		return dompay.PaymentResponse{}, err
	}
	if err = s.payments.Validate(payment); err != nil {
		outcome, statusText = "error", "PAYMENT_INVALID"
		return dompay.PaymentResponse{}, err
	}

	resp, err = s.charger.Charge(ctx, customer, payment)
	if err != nil {
		outcome, statusText = "error", "CHARGE_ERROR"
		return resp, err
	}

	if resp.Succeeded() {
		if notifyErr := s.notifier.SendConfirmation(ctx, customer); notifyErr != nil {
			// Best effort: a lost confirmation does not fail the charge.
			logger.Warn("confirmation_failed", observability.F("error", notifyErr.Error()))
			s.notifCount.Add(1, observability.L("channel", "unknown"), observability.L("outcome", "error"))
		}
	} else {
		statusText = "DECLINED"
	}

	if err = s.translog.LogTransaction(ctx, customer, payment, resp); err != nil {
		outcome, statusText = "error", "TRANSLOG_WRITE_FAILED"
		return resp, fmt.Errorf("payment: record transaction: %w", err)
	}

	return resp, nil
}

// ProcessRefund reverses a prior charge. The capability check comes
// first: a service without a refund collaborator fails regardless of
// input.
func (s *Service) ProcessRefund(ctx context.Context, transactionID string) (resp dompay.PaymentResponse, err error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", opProcessRefund),
		observability.F("transaction_id", transactionID),
	)

	tracer := observability.NopTracer()
	if s.tel != nil {
		tracer = s.tel.Tracer()
	}
	ctx, span := tracer.Start(ctx, spanPrefix+"ProcessRefund",
		attribute.String("use_case", opProcessRefund),
		attribute.String("payment.transaction_id", transactionID),
	)

	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		if span != nil {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, statusText)
			} else {
				span.SetStatus(codes.Ok, statusText)
			}
			span.End()
		}
		s.finish(logger, opProcessRefund, outcome, statusText, start, resp, err)
	}()

	if s.refunder == nil {
		outcome, statusText = "error", "REFUNDS_UNSUPPORTED"
		return dompay.PaymentResponse{}, &CapabilityError{Capability: "refunds"}
	}
	if transactionID == "" {
		outcome, statusText = "error", "TRANSACTION_ID_REQUIRED"
		return dompay.PaymentResponse{}, &ValidationError{Subject: "refund request", Reason: "missing transaction id"}
	}

	resp, err = s.refunder.Refund(ctx, transactionID)
	if err != nil {
		outcome, statusText = "error", "REFUND_ERROR"
		return resp, err
	}
	if !resp.Succeeded() {
		statusText = "REJECTED"
	}

	if err = s.translog.LogRefund(ctx, transactionID, resp); err != nil {
		outcome, statusText = "error", "TRANSLOG_WRITE_FAILED"
		return resp, fmt.Errorf("payment: record refund: %w", err)
	}

	return resp, nil
}

// SetupRecurring establishes a repeating charge through the optional
// recurring capability. Same validate -> delegate -> log shape as a
// one-off charge; no confirmation is sent for the setup itself.
func (s *Service) SetupRecurring(ctx context.Context, customer domcust.CustomerData, payment dompay.PaymentData) (resp dompay.PaymentResponse, err error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", opSetupRecurring),
		observability.F("customer", customer.Name),
		observability.F("amount", payment.Amount),
	)

	tracer := observability.NopTracer()
	if s.tel != nil {
		tracer = s.tel.Tracer()
	}
	ctx, span := tracer.Start(ctx, spanPrefix+"SetupRecurring",
		attribute.String("use_case", opSetupRecurring),
		attribute.Int64("payment.amount", payment.Amount),
	)

	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		if span != nil {
			span.SetAttributes(attribute.String("payment.status", string(resp.Status)))
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, statusText)
			} else {
				span.SetStatus(codes.Ok, statusText)
			}
			span.End()
		}
		s.finish(logger, opSetupRecurring, outcome, statusText, start, resp, err)
	}()

	if s.recurring == nil {
		outcome, statusText = "error", "RECURRING_UNSUPPORTED"
		return dompay.PaymentResponse{}, &CapabilityError{Capability: "recurring payments"}
	}
	if err = s.customers.Validate(customer); err != nil {
		outcome, statusText = "error", "CUSTOMER_INVALID"
		return dompay.PaymentResponse{}, err
	}
	if err = s.payments.Validate(payment); err != nil {
		outcome, statusText = "error", "PAYMENT_INVALID"
		return dompay.PaymentResponse{}, err
	}

	resp, err = s.recurring.SetupRecurring(ctx, customer, payment)
	if err != nil {
		outcome, statusText = "error", "RECURRING_SETUP_ERROR"
		return resp, err
	}
	if !resp.Succeeded() {
		statusText = "DECLINED"
	}

	if err = s.translog.LogTransaction(ctx, customer, payment, resp); err != nil {
		outcome, statusText = "error", "TRANSLOG_WRITE_FAILED"
		return resp, fmt.Errorf("payment: record recurring setup: %w", err)
	}

	return resp, nil
}

// finish emits the per-call metrics and the structured done-log shared by
// every operation.
func (s *Service) finish(logger observability.Logger, op, outcome, statusText string, start time.Time, resp dompay.PaymentResponse, err error) {
	latency := time.Since(start).Seconds()
	if s.reqCounter != nil {
		s.reqCounter.Add(1,
			observability.L("operation", op),
			observability.L("outcome", outcome),
		)
	}
	if s.durHist != nil {
		s.durHist.Observe(latency,
			observability.L("operation", op),
		)
	}

	fields := []observability.Field{
		observability.F("outcome", outcome),
		observability.F("status", statusText),
		observability.F("latency_seconds", latency),
		observability.F("payment_status", string(resp.Status)),
	}
	if resp.TransactionID != "" {
		fields = append(fields, observability.F("transaction_id", resp.TransactionID))
	}
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}
	logger.Info("use_case_done", fields...)
}
