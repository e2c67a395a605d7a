package offline

import (
	"context"

	"github.com/google/uuid"
	domcust "github.com/payflow-labs/payflow/internal/domain/customer"
	dompay "github.com/payflow-labs/payflow/internal/domain/payment"
)

// Processor is the offline payment backend: it implements only the
// charge capability and synthesizes a success without touching the
// network. Used for tests and demo paths.
type Processor struct{}

func New() *Processor { return &Processor{} }

func (p *Processor) Charge(ctx context.Context, _ domcust.CustomerData, payment dompay.PaymentData) (dompay.PaymentResponse, error) {
	// respect cancellation even though nothing blocks here
	select {
	case <-ctx.Done():
		return dompay.Failed(payment.Amount, ctx.Err().Error()), ctx.Err()
	default:
	}

	return dompay.PaymentResponse{
		Status:        dompay.StatusSuccess,
		Amount:        payment.Amount,
		TransactionID: "off_" + uuid.NewString(),
		Message:       "Offline payment success",
	}, nil
}
