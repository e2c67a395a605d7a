package payment

import (
	"context"
	"errors"
	"testing"

	domcust "github.com/payflow-labs/payflow/internal/domain/customer"
	dompay "github.com/payflow-labs/payflow/internal/domain/payment"
)

func johnDoe() domcust.CustomerData {
	return domcust.CustomerData{
		Name:    "John Doe",
		Contact: &domcust.ContactInfo{Email: "e@mail.com"},
	}
}

func TestProcessTransaction_Success(t *testing.T) {
	charger := &fakeCharger{}
	notifier := &fakeNotifier{}
	log := &memLog{}
	svc := NewService(Collaborators{Charger: charger, Notifier: notifier, Log: log}, nil)

	resp, err := svc.ProcessTransaction(context.Background(), johnDoe(), dompay.PaymentData{Amount: 500, Source: "tok_valid"})
	if err != nil {
		t.Fatalf("ProcessTransaction: %v", err)
	}

	if resp.Status != dompay.StatusSuccess {
		t.Errorf("status = %q, want %q", resp.Status, dompay.StatusSuccess)
	}
	if resp.Amount != 500 {
		t.Errorf("amount = %d, want 500", resp.Amount)
	}
	if resp.TransactionID == "" {
		t.Error("transaction id is empty")
	}
	if resp.Message != "Offline payment success" {
		t.Errorf("message = %q, want %q", resp.Message, "Offline payment success")
	}

	if len(notifier.notified) != 1 {
		t.Errorf("notifications = %d, want 1", len(notifier.notified))
	}
	if len(log.transactions) != 1 {
		t.Errorf("log entries = %d, want 1", len(log.transactions))
	}
}

func TestProcessTransaction_ValidationAbortsBeforeSideEffects(t *testing.T) {
	cases := []struct {
		name     string
		customer domcust.CustomerData
		payment  dompay.PaymentData
	}{
		{"zero amount", johnDoe(), dompay.PaymentData{Amount: 0, Source: "tok_valid"}},
		{"empty source", johnDoe(), dompay.PaymentData{Amount: 500}},
		{"missing name", domcust.CustomerData{Contact: &domcust.ContactInfo{Email: "e@mail.com"}}, dompay.PaymentData{Amount: 500, Source: "tok_valid"}},
		{"missing contact", domcust.CustomerData{Name: "John Doe"}, dompay.PaymentData{Amount: 500, Source: "tok_valid"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			charger := &fakeCharger{}
			notifier := &fakeNotifier{}
			log := &memLog{}
			svc := NewService(Collaborators{Charger: charger, Notifier: notifier, Log: log}, nil)

			_, err := svc.ProcessTransaction(context.Background(), tc.customer, tc.payment)

			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected *ValidationError, got %T: %v", err, err)
			}
			if len(charger.calls) != 0 {
				t.Errorf("charger called %d times, want 0", len(charger.calls))
			}
			if len(notifier.notified) != 0 {
				t.Errorf("notifications = %d, want 0", len(notifier.notified))
			}
			if len(log.transactions) != 0 {
				t.Errorf("log entries = %d, want 0", len(log.transactions))
			}
		})
	}
}

func TestProcessTransaction_DeclinedChargeIsLoggedNotNotified(t *testing.T) {
	declined := dompay.Failed(700, "card declined")
	charger := &fakeCharger{resp: &declined}
	notifier := &fakeNotifier{}
	log := &memLog{}
	svc := NewService(Collaborators{Charger: charger, Notifier: notifier, Log: log}, nil)

	resp, err := svc.ProcessTransaction(context.Background(), johnDoe(), dompay.PaymentData{Amount: 700, Source: "tok_block"})
	if err != nil {
		t.Fatalf("a declined charge must not be an error: %v", err)
	}
	if resp.Status != dompay.StatusFailed {
		t.Errorf("status = %q, want %q", resp.Status, dompay.StatusFailed)
	}
	if resp.Message != "card declined" {
		t.Errorf("message = %q, want %q", resp.Message, "card declined")
	}
	if len(notifier.notified) != 0 {
		t.Errorf("declined charge triggered %d notifications, want 0", len(notifier.notified))
	}
	if len(log.transactions) != 1 {
		t.Errorf("declined charge produced %d log entries, want 1", len(log.transactions))
	}
}

func TestProcessTransaction_NotifierFailureIsNonFatal(t *testing.T) {
	charger := &fakeCharger{}
	notifier := &fakeNotifier{err: errors.New("smtp down")}
	log := &memLog{}
	svc := NewService(Collaborators{Charger: charger, Notifier: notifier, Log: log}, nil)

	resp, err := svc.ProcessTransaction(context.Background(), johnDoe(), dompay.PaymentData{Amount: 500, Source: "tok_valid"})
	if err != nil {
		t.Fatalf("notifier failure must not fail the transaction: %v", err)
	}
	if resp.Status != dompay.StatusSuccess {
		t.Errorf("status = %q, want %q", resp.Status, dompay.StatusSuccess)
	}
	if len(log.transactions) != 1 {
		t.Errorf("log entries = %d, want 1", len(log.transactions))
	}
}

func TestProcessTransaction_LogSinkFailurePropagates(t *testing.T) {
	charger := &fakeCharger{}
	log := &memLog{err: errors.New("disk full")}
	svc := NewService(Collaborators{Charger: charger, Notifier: &fakeNotifier{}, Log: log}, nil)

	_, err := svc.ProcessTransaction(context.Background(), johnDoe(), dompay.PaymentData{Amount: 500, Source: "tok_valid"})
	if err == nil {
		t.Fatal("expected the log sink failure to propagate")
	}
}

func TestProcessTransaction_NoDedup(t *testing.T) {
	charger := &fakeCharger{}
	log := &memLog{}
	svc := NewService(Collaborators{Charger: charger, Notifier: &fakeNotifier{}, Log: log}, nil)

	payment := dompay.PaymentData{Amount: 500, Source: "tok_valid"}
	first, err := svc.ProcessTransaction(context.Background(), johnDoe(), payment)
	if err != nil {
		t.Fatalf("first charge: %v", err)
	}
	second, err := svc.ProcessTransaction(context.Background(), johnDoe(), payment)
	if err != nil {
		t.Fatalf("second charge: %v", err)
	}

	// Identical inputs are charged twice; there is no idempotency layer.
	if len(charger.calls) != 2 {
		t.Fatalf("charger called %d times, want 2", len(charger.calls))
	}
	if first.TransactionID == second.TransactionID {
		t.Errorf("both charges share transaction id %q", first.TransactionID)
	}
}

func TestProcessRefund(t *testing.T) {
	t.Run("without capability", func(t *testing.T) {
		svc := NewService(Collaborators{Charger: &fakeCharger{}, Notifier: &fakeNotifier{}, Log: &memLog{}}, nil)

		_, err := svc.ProcessRefund(context.Background(), "ch_123")
		var capabilityErr *CapabilityError
		if !errors.As(err, &capabilityErr) {
			t.Fatalf("expected *CapabilityError, got %T: %v", err, err)
		}
	})

	t.Run("without capability, empty input", func(t *testing.T) {
		svc := NewService(Collaborators{Charger: &fakeCharger{}, Notifier: &fakeNotifier{}, Log: &memLog{}}, nil)

		// The capability check wins regardless of input.
		_, err := svc.ProcessRefund(context.Background(), "")
		var capabilityErr *CapabilityError
		if !errors.As(err, &capabilityErr) {
			t.Fatalf("expected *CapabilityError, got %T: %v", err, err)
		}
	})

	t.Run("delegates and logs", func(t *testing.T) {
		refunder := &fakeRefunder{resp: dompay.PaymentResponse{Status: dompay.StatusSuccess, TransactionID: "re_1"}}
		log := &memLog{}
		svc := NewService(Collaborators{Charger: &fakeCharger{}, Refunder: refunder, Notifier: &fakeNotifier{}, Log: log}, nil)

		resp, err := svc.ProcessRefund(context.Background(), "ch_123")
		if err != nil {
			t.Fatalf("ProcessRefund: %v", err)
		}
		if resp.Status != dompay.StatusSuccess {
			t.Errorf("status = %q, want %q", resp.Status, dompay.StatusSuccess)
		}
		if len(refunder.calls) != 1 || refunder.calls[0] != "ch_123" {
			t.Errorf("refunder calls = %v, want [ch_123]", refunder.calls)
		}
		if len(log.refunds) != 1 {
			t.Errorf("refund log entries = %d, want 1", len(log.refunds))
		}
	})

	t.Run("empty transaction id", func(t *testing.T) {
		refunder := &fakeRefunder{}
		svc := NewService(Collaborators{Charger: &fakeCharger{}, Refunder: refunder, Notifier: &fakeNotifier{}, Log: &memLog{}}, nil)

		_, err := svc.ProcessRefund(context.Background(), "")
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("expected *ValidationError, got %T: %v", err, err)
		}
		if len(refunder.calls) != 0 {
			t.Errorf("refunder called %d times, want 0", len(refunder.calls))
		}
	})

	t.Run("rejected refund is a failed response", func(t *testing.T) {
		refunder := &fakeRefunder{resp: dompay.Failed(0, "already refunded")}
		log := &memLog{}
		svc := NewService(Collaborators{Charger: &fakeCharger{}, Refunder: refunder, Notifier: &fakeNotifier{}, Log: log}, nil)

		resp, err := svc.ProcessRefund(context.Background(), "ch_123")
		if err != nil {
			t.Fatalf("a rejected refund must not be an error: %v", err)
		}
		if resp.Status != dompay.StatusFailed {
			t.Errorf("status = %q, want %q", resp.Status, dompay.StatusFailed)
		}
		if len(log.refunds) != 1 {
			t.Errorf("refund log entries = %d, want 1", len(log.refunds))
		}
	})
}

func TestSetupRecurring(t *testing.T) {
	t.Run("without capability", func(t *testing.T) {
		svc := NewService(Collaborators{Charger: &fakeCharger{}, Notifier: &fakeNotifier{}, Log: &memLog{}}, nil)

		_, err := svc.SetupRecurring(context.Background(), johnDoe(), dompay.PaymentData{Amount: 500, Source: "tok_valid"})
		var capabilityErr *CapabilityError
		if !errors.As(err, &capabilityErr) {
			t.Fatalf("expected *CapabilityError, got %T: %v", err, err)
		}
	})

	t.Run("configuration error passes through", func(t *testing.T) {
		recurring := &fakeRecurring{err: &ConfigurationError{Reason: "creating a gateway customer requires an email"}}
		log := &memLog{}
		svc := NewService(Collaborators{Charger: &fakeCharger{}, Recurring: recurring, Notifier: &fakeNotifier{}, Log: log}, nil)

		phoneOnly := domcust.CustomerData{Name: "Jane Roe", Contact: &domcust.ContactInfo{Phone: "1234567890"}}
		_, err := svc.SetupRecurring(context.Background(), phoneOnly, dompay.PaymentData{Amount: 500, Source: "tok_valid"})
		var configurationErr *ConfigurationError
		if !errors.As(err, &configurationErr) {
			t.Fatalf("expected *ConfigurationError, got %T: %v", err, err)
		}
		if len(log.transactions) != 0 {
			t.Errorf("failed setup produced %d log entries, want 0", len(log.transactions))
		}
	})

	t.Run("delegates and logs", func(t *testing.T) {
		recurring := &fakeRecurring{resp: dompay.PaymentResponse{Status: dompay.StatusSuccess, Amount: 500, TransactionID: "sub_1"}}
		log := &memLog{}
		svc := NewService(Collaborators{Charger: &fakeCharger{}, Recurring: recurring, Notifier: &fakeNotifier{}, Log: log}, nil)

		resp, err := svc.SetupRecurring(context.Background(), johnDoe(), dompay.PaymentData{Amount: 500, Source: "tok_valid"})
		if err != nil {
			t.Fatalf("SetupRecurring: %v", err)
		}
		if resp.TransactionID != "sub_1" {
			t.Errorf("transaction id = %q, want sub_1", resp.TransactionID)
		}
		if recurring.calls != 1 {
			t.Errorf("recurring calls = %d, want 1", recurring.calls)
		}
		if len(log.transactions) != 1 {
			t.Errorf("log entries = %d, want 1", len(log.transactions))
		}
	})
}

func TestCapabilityReporting(t *testing.T) {
	base := Collaborators{Charger: &fakeCharger{}, Notifier: &fakeNotifier{}, Log: &memLog{}}
	svc := NewService(base, nil)
	if svc.SupportsRefunds() || svc.SupportsRecurring() {
		t.Error("bare service reports optional capabilities")
	}

	full := base
	full.Refunder = &fakeRefunder{}
	full.Recurring = &fakeRecurring{}
	svc = NewService(full, nil)
	if !svc.SupportsRefunds() || !svc.SupportsRecurring() {
		t.Error("fully configured service is missing capabilities")
	}
}
