package payment

import (
	"context"
	"sync"

	"github.com/google/uuid"
	domcust "github.com/payflow-labs/payflow/internal/domain/customer"
	dompay "github.com/payflow-labs/payflow/internal/domain/payment"
)

// fakeCharger records charges and answers with a canned response.
type fakeCharger struct {
	calls []dompay.PaymentData
	resp  *dompay.PaymentResponse
	err   error
}

func (f *fakeCharger) Charge(_ context.Context, _ domcust.CustomerData, payment dompay.PaymentData) (dompay.PaymentResponse, error) {
	f.calls = append(f.calls, payment)
	if f.err != nil {
		return dompay.PaymentResponse{}, f.err
	}
	if f.resp != nil {
		return *f.resp, nil
	}
	return dompay.PaymentResponse{
		Status:        dompay.StatusSuccess,
		Amount:        payment.Amount,
		TransactionID: "ch_" + uuid.NewString(),
		Message:       "Offline payment success",
	}, nil
}

type fakeRefunder struct {
	calls []string
	resp  dompay.PaymentResponse
	err   error
}

func (f *fakeRefunder) Refund(_ context.Context, transactionID string) (dompay.PaymentResponse, error) {
	f.calls = append(f.calls, transactionID)
	return f.resp, f.err
}

type fakeRecurring struct {
	calls int
	resp  dompay.PaymentResponse
	err   error
}

func (f *fakeRecurring) SetupRecurring(_ context.Context, _ domcust.CustomerData, _ dompay.PaymentData) (dompay.PaymentResponse, error) {
	f.calls++
	return f.resp, f.err
}

type fakeNotifier struct {
	notified []domcust.CustomerData
	err      error
}

func (f *fakeNotifier) SendConfirmation(_ context.Context, customer domcust.CustomerData) error {
	f.notified = append(f.notified, customer)
	return f.err
}

// memLog is an in-memory transaction log safe for concurrent appends.
type memLog struct {
	mu           sync.Mutex
	transactions []dompay.PaymentResponse
	refunds      []string
	err          error
}

func (l *memLog) LogTransaction(_ context.Context, _ domcust.CustomerData, _ dompay.PaymentData, resp dompay.PaymentResponse) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.transactions = append(l.transactions, resp)
	return nil
}

func (l *memLog) LogRefund(_ context.Context, transactionID string, _ dompay.PaymentResponse) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.refunds = append(l.refunds, transactionID)
	return nil
}
