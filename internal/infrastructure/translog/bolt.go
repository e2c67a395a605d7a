package translog

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"
	json "github.com/goccy/go-json"

	domcust "github.com/payflow-labs/payflow/internal/domain/customer"
	dompay "github.com/payflow-labs/payflow/internal/domain/payment"
)

const ledgerBucket = "transactions"

// Record is one ledger entry. The fields preserve the content of the
// text log lines in structured form.
type Record struct {
	Kind          string    `json:"kind"` // "charge" or "refund"
	Customer      string    `json:"customer,omitempty"`
	Amount        int64     `json:"amount,omitempty"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Message       string    `json:"message,omitempty"`
	At            time.Time `json:"at"`
}

// BoltLog is the append-safe ledger sink: a single-file embedded store
// whose single-writer transactions make concurrent appends atomic.
type BoltLog struct {
	db *bolt.DB
}

func NewBoltLog(path string) (*BoltLog, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("translog: open ledger: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(ledgerBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("translog: prepare ledger bucket: %w", err)
	}

	return &BoltLog{db: db}, nil
}

func (l *BoltLog) LogTransaction(ctx context.Context, customer domcust.CustomerData, payment dompay.PaymentData, resp dompay.PaymentResponse) error {
	_ = ctx
	return l.append(Record{
		Kind:          "charge",
		Customer:      customer.Name,
		Amount:        payment.Amount,
		Status:        string(resp.Status),
		TransactionID: resp.TransactionID,
		Message:       resp.Message,
		At:            time.Now().UTC(),
	})
}

func (l *BoltLog) LogRefund(ctx context.Context, transactionID string, resp dompay.PaymentResponse) error {
	_ = ctx
	return l.append(Record{
		Kind:          "refund",
		Status:        string(resp.Status),
		TransactionID: transactionID,
		Message:       resp.Message,
		At:            time.Now().UTC(),
	})
}

func (l *BoltLog) append(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("translog: encode record: %w", err)
	}

	err = l.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(ledgerBucket))
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, data)
	})
	if err != nil {
		return fmt.Errorf("translog: append: %w", err)
	}
	return nil
}

// Records returns every ledger entry in append order.
func (l *BoltLog) Records() ([]Record, error) {
	var out []Record
	err := l.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(ledgerBucket))
		return b.ForEach(func(_, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases the ledger file lock.
func (l *BoltLog) Close() error {
	return l.db.Close()
}
