package payment

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// PaymentData describes a single attempted debit: an amount in the
// smallest currency unit and an opaque token identifying the funding
// instrument. Single-use, immutable per call.
type PaymentData struct {
	Amount int64
	Source string
}

// PaymentResponse is the normalized result of every processor operation.
// Backends report their own success-equivalent status string; failures
// are always StatusFailed with the detail in Message. TransactionID is
// populated only when the operation succeeded.
type PaymentResponse struct {
	Status        Status
	Amount        int64
	TransactionID string
	Message       string
}

// Failed builds a failure response carrying the backend's detail.
// A failed charge is a normal business outcome, not an error.
func Failed(amount int64, message string) PaymentResponse {
	return PaymentResponse{Status: StatusFailed, Amount: amount, Message: message}
}

// Succeeded reports whether the backend accepted the operation.
func (r PaymentResponse) Succeeded() bool {
	return r.Status != "" && r.Status != StatusFailed
}
