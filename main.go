package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apppay "github.com/payflow-labs/payflow/internal/application/payment"
	"github.com/payflow-labs/payflow/internal/config"
	"github.com/payflow-labs/payflow/internal/infrastructure/gateway"
	"github.com/payflow-labs/payflow/internal/infrastructure/notify"
	infraobs "github.com/payflow-labs/payflow/internal/infrastructure/observability"
	"github.com/payflow-labs/payflow/internal/infrastructure/observability/oteltrace"
	"github.com/payflow-labs/payflow/internal/infrastructure/observability/prometrics"
	"github.com/payflow-labs/payflow/internal/infrastructure/observability/zaplogger"
	"github.com/payflow-labs/payflow/internal/infrastructure/offline"
	"github.com/payflow-labs/payflow/internal/infrastructure/translog"
	"github.com/payflow-labs/payflow/internal/observability"
	httppresentation "github.com/payflow-labs/payflow/internal/presentation/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	logger := zaplogger.New(
		observability.F("service", cfg.ServiceName),
		observability.F("env", cfg.Env),
	)

	registry := prometrics.New(cfg.ServiceName, "")
	counters, histograms := prometrics.Instruments(registry)
	tel := infraobs.New(oteltrace.New(cfg.ServiceName), logger, counters, histograms)

	collaborators, closers, err := buildCollaborators(cfg, tel)
	if err != nil {
		logger.Error("startup_failed", observability.F("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	service := apppay.NewService(collaborators, tel)

	handler := httppresentation.NewHandler(service, logger, tel)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http_server_start",
			observability.F("addr", server.Addr),
			observability.F("backend", cfg.Backend),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", observability.F("error", err.Error()))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error", observability.F("error", err.Error()))
	} else {
		logger.Info("http_server_stopped")
	}
}

type closer interface{ Close() error }

// buildCollaborators assembles the processor capabilities, notifier and
// transaction log the service is composed from. The offline backend
// carries only the charge capability; refunds and recurring setup are
// gateway-only.
func buildCollaborators(cfg config.Config, tel observability.Observability) (apppay.Collaborators, []closer, error) {
	var c apppay.Collaborators
	var closers []closer

	switch cfg.Backend {
	case config.BackendGateway:
		if cfg.GatewayURL == "" {
			return c, nil, fmt.Errorf("config: GATEWAY_URL is required for the %s backend", config.BackendGateway)
		}
		processor := gateway.New(gateway.Config{
			BaseURL: cfg.GatewayURL,
			APIKey:  cfg.GatewayAPIKey,
			PlanID:  cfg.GatewayPlanID,
		}, nil, tel)
		c.Charger = processor
		c.Refunder = processor
		c.Recurring = processor
	case config.BackendOffline:
		c.Charger = offline.New()
	default:
		return c, nil, fmt.Errorf("config: unknown payment backend %q", cfg.Backend)
	}

	switch cfg.NotifyChannel {
	case "email":
		c.Notifier = notify.NewEmail(tel)
	case "sms":
		c.Notifier = notify.NewSMS(tel)
	default:
		c.Notifier = notify.NewRouter(tel)
	}

	if cfg.LedgerPath != "" {
		ledger, err := translog.NewBoltLog(cfg.LedgerPath)
		if err != nil {
			return c, nil, err
		}
		c.Log = ledger
		closers = append(closers, ledger)
	} else {
		fileLog, err := translog.NewFileLog(cfg.TransactionsLog)
		if err != nil {
			return c, nil, err
		}
		c.Log = fileLog
		closers = append(closers, fileLog)
	}

	return c, closers, nil
}
