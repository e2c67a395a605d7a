package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	apppay "github.com/payflow-labs/payflow/internal/application/payment"
	domcust "github.com/payflow-labs/payflow/internal/domain/customer"
	dompay "github.com/payflow-labs/payflow/internal/domain/payment"
	"github.com/payflow-labs/payflow/internal/observability"
)

const defaultTimeout = 10 * time.Second

// Config carries the gateway credentials and the plan used for
// recurring charges. Values come from the environment, never hardcoded.
type Config struct {
	BaseURL string
	APIKey  string
	PlanID  string
}

// Processor is the live payment backend: an HTTP client for the gateway's
// REST API implementing all three capabilities. Backend rejections are
// normalized into failed PaymentResponses; only context cancellation and
// request-construction faults surface as errors.
type Processor struct {
	cfg    Config
	client *http.Client

	log        observability.Logger
	reqCounter observability.Counter
	durHist    observability.Histogram
}

func New(cfg Config, client *http.Client, tel observability.Observability) *Processor {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	baseLog := observability.NopLogger()
	metricsProvider := observability.NopMetrics()
	if tel != nil {
		baseLog = tel.Logger()
		metricsProvider = tel.Metrics()
	}

	return &Processor{
		cfg:        cfg,
		client:     client,
		log:        baseLog.With(observability.F("component", "gateway")),
		reqCounter: metricsProvider.Counter(observability.MGatewayRequests),
		durHist:    metricsProvider.Histogram(observability.MGatewayRequestDuration),
	}
}

type chargeRequest struct {
	Amount      int64  `json:"amount"`
	Source      string `json:"source"`
	Description string `json:"description"`
}

type chargeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type customerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type customerResponse struct {
	ID string `json:"id"`
}

type sourceRequest struct {
	Source string `json:"source"`
}

type subscriptionRequest struct {
	Customer string `json:"customer"`
	Plan     string `json:"plan"`
	Source   string `json:"source"`
	Amount   int64  `json:"amount"`
}

type subscriptionResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Charge debits payment.Source via POST /charges. Declines and transport
// failures come back as failed responses with the detail in Message.
func (p *Processor) Charge(ctx context.Context, customer domcust.CustomerData, payment dompay.PaymentData) (dompay.PaymentResponse, error) {
	in := chargeRequest{
		Amount:      payment.Amount,
		Source:      payment.Source,
		Description: "Charge for " + customer.Name,
	}

	var out chargeResponse
	if failure, err := p.call(ctx, "charges", http.MethodPost, "/charges", in, &out); err != nil {
		return dompay.PaymentResponse{}, err
	} else if failure != "" {
		return dompay.Failed(payment.Amount, failure), nil
	}

	return dompay.PaymentResponse{
		Status:        normalizeStatus(out.Status),
		Amount:        payment.Amount,
		TransactionID: out.ID,
	}, nil
}

// Refund reverses a charge via POST /charges/{id}/refunds. A rejected
// refund is a failed response, not an error.
func (p *Processor) Refund(ctx context.Context, transactionID string) (dompay.PaymentResponse, error) {
	path := "/charges/" + url.PathEscape(transactionID) + "/refunds"

	var out chargeResponse
	if failure, err := p.call(ctx, "refunds", http.MethodPost, path, struct{}{}, &out); err != nil {
		return dompay.PaymentResponse{}, err
	} else if failure != "" {
		return dompay.Failed(0, failure), nil
	}

	return dompay.PaymentResponse{
		Status:        normalizeStatus(out.Status),
		TransactionID: out.ID,
	}, nil
}

// SetupRecurring resolves or creates the gateway customer, attaches the
// source as the default payment method, then creates the subscription on
// the configured plan.
func (p *Processor) SetupRecurring(ctx context.Context, customer domcust.CustomerData, payment dompay.PaymentData) (dompay.PaymentResponse, error) {
	if p.cfg.PlanID == "" {
		return dompay.PaymentResponse{}, &apppay.ConfigurationError{Reason: "recurring plan id is not configured"}
	}

	customerID := customer.CustomerID
	if customerID == "" {
		if customer.Email() == "" {
			return dompay.PaymentResponse{}, &apppay.ConfigurationError{Reason: "creating a gateway customer requires an email"}
		}

		var created customerResponse
		in := customerRequest{Name: customer.Name, Email: customer.Email(), Phone: customer.Phone()}
		if failure, err := p.call(ctx, "customers", http.MethodPost, "/customers", in, &created); err != nil {
			return dompay.PaymentResponse{}, err
		} else if failure != "" {
			return dompay.Failed(payment.Amount, failure), nil
		}
		customerID = created.ID
	}

	attachPath := "/customers/" + url.PathEscape(customerID) + "/sources"
	if failure, err := p.call(ctx, "sources", http.MethodPost, attachPath, sourceRequest{Source: payment.Source}, nil); err != nil {
		return dompay.PaymentResponse{}, err
	} else if failure != "" {
		return dompay.Failed(payment.Amount, failure), nil
	}

	in := subscriptionRequest{
		Customer: customerID,
		Plan:     p.cfg.PlanID,
		Source:   payment.Source,
		Amount:   payment.Amount,
	}
	var sub subscriptionResponse
	if failure, err := p.call(ctx, "subscriptions", http.MethodPost, "/subscriptions", in, &sub); err != nil {
		return dompay.PaymentResponse{}, err
	} else if failure != "" {
		return dompay.Failed(payment.Amount, failure), nil
	}

	return dompay.PaymentResponse{
		Status:        normalizeStatus(sub.Status),
		Amount:        payment.Amount,
		TransactionID: sub.ID,
	}, nil
}

// call performs one gateway request. It returns a non-empty failure
// detail for backend rejections and transport faults, and an error only
// for cancellation and request-construction problems.
func (p *Processor) call(ctx context.Context, endpoint, method, path string, in, out any) (failure string, err error) {
	start := time.Now()
	outcome := "success"
	defer func() {
		p.reqCounter.Add(1,
			observability.L("endpoint", endpoint),
			observability.L("outcome", outcome),
		)
		p.durHist.Observe(time.Since(start).Seconds(),
			observability.L("endpoint", endpoint),
		)
	}()

	payload, err := json.Marshal(in)
	if err != nil {
		outcome = "error"
		return "", fmt.Errorf("gateway: encode %s request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(p.cfg.BaseURL, "/")+path, bytes.NewReader(payload))
	if err != nil {
		outcome = "error"
		return "", fmt.Errorf("gateway: build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	res, err := p.client.Do(req)
	if err != nil {
		outcome = "error"
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		p.log.Warn("gateway_unreachable",
			observability.F("endpoint", endpoint),
			observability.F("error", err.Error()),
		)
		return "gateway unreachable: " + err.Error(), nil
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		outcome = "error"
		return "", fmt.Errorf("gateway: read %s response: %w", endpoint, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		outcome = "failed"
		var detail errorBody
		if unmarshalErr := json.Unmarshal(body, &detail); unmarshalErr == nil && detail.Error != "" {
			return detail.Error, nil
		}
		return fmt.Sprintf("gateway returned %d %s", res.StatusCode, http.StatusText(res.StatusCode)), nil
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			outcome = "error"
			return "", fmt.Errorf("gateway: decode %s response: %w", endpoint, err)
		}
	}
	return "", nil
}

// normalizeStatus keeps whatever success-equivalent status the backend
// reports, defaulting when the gateway omits it.
func normalizeStatus(s string) dompay.Status {
	if s == "" {
		return dompay.StatusSuccess
	}
	return dompay.Status(s)
}
