package translog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	domcust "github.com/payflow-labs/payflow/internal/domain/customer"
	dompay "github.com/payflow-labs/payflow/internal/domain/payment"
)

// FileLog appends human-readable transaction records to a text file.
// Appends are serialized behind a mutex and written with a single Write
// call so concurrent service instances cannot interleave records.
type FileLog struct {
	mu sync.Mutex
	f  *os.File
}

func NewFileLog(path string) (*FileLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("translog: prepare directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("translog: open %s: %w", path, err)
	}
	return &FileLog{f: f}, nil
}

func (l *FileLog) LogTransaction(ctx context.Context, customer domcust.CustomerData, payment dompay.PaymentData, resp dompay.PaymentResponse) error {
	_ = ctx
	var b strings.Builder
	fmt.Fprintf(&b, "%s paid %d\n", customer.Name, payment.Amount)
	fmt.Fprintf(&b, "Payment status: %s\n", resp.Status)
	if resp.TransactionID != "" {
		fmt.Fprintf(&b, "Transaction ID: %s\n", resp.TransactionID)
	}
	if resp.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", resp.Message)
	}
	return l.append(b.String())
}

func (l *FileLog) LogRefund(ctx context.Context, transactionID string, resp dompay.PaymentResponse) error {
	_ = ctx
	var b strings.Builder
	fmt.Fprintf(&b, "Refund processed for transaction %s\n", transactionID)
	fmt.Fprintf(&b, "Refund status: %s\n", resp.Status)
	if resp.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", resp.Message)
	}
	return l.append(b.String())
}

func (l *FileLog) append(record string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.f.WriteString(record); err != nil {
		return fmt.Errorf("translog: append: %w", err)
	}
	return nil
}

func (l *FileLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
