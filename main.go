package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appwarehouse "github.com/martingallagher/warehouse/internal/application/warehouse"
	"github.com/martingallagher/warehouse/internal/domain/identity"
	"github.com/martingallagher/warehouse/internal/infrastructure/audit"
	"github.com/martingallagher/warehouse/internal/infrastructure/memory"
	"github.com/martingallagher/warehouse/internal/infrastructure/observability/oteltrace"
	"github.com/martingallagher/warehouse/internal/infrastructure/observability/prometrics"
	"github.com/martingallagher/warehouse/internal/infrastructure/observability/telemetry"
	"github.com/martingallagher/warehouse/internal/infrastructure/observability/zaplogger"
	"github.com/martingallagher/warehouse/internal/infrastructure/outbox"
	"github.com/martingallagher/warehouse/internal/observability"
	httppresentation "github.com/martingallagher/warehouse/internal/presentation/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	serviceName := getenvDefault("SERVICE_NAME", "warehouse")
	env := getenvDefault("ENV", "dev")
	managerID := getenvDefault("MANAGER_ID", "manager")
	addr := getenvDefault("HTTP_ADDR", ":8080")

	logger := zaplogger.New(
		observability.F("service", serviceName),
		observability.F("env", env),
	)

	metrics := prometrics.New(serviceName, "")
	counters := map[string]observability.Counter{
		observability.MUsecaseRequests: metrics.Counter(
			observability.MUsecaseRequests,
			"Total number of ledger use case invocations.",
			"use_case", "outcome",
		),
		observability.MHTTPRequests: metrics.Counter(
			observability.MHTTPRequests,
			"Total number of HTTP requests.",
			"method", "route", "status",
		),
		observability.MLedgerEvents: metrics.Counter(
			observability.MLedgerEvents,
			"Ledger events observed by the audit worker.",
			"event",
		),
		observability.MLedgerBalanceCaptured: metrics.Counter(
			observability.MLedgerBalanceCaptured,
			"Cumulative payment value captured by the ledger.",
		),
		observability.MEventPublishFailures: metrics.Counter(
			observability.MEventPublishFailures,
			"Count of ledger event publish failures.",
			"event",
		),
	}
	histograms := map[string]observability.Histogram{
		observability.MUsecaseDuration: metrics.Histogram(
			observability.MUsecaseDuration,
			"Duration of ledger use case execution in seconds.",
			nil,
			"use_case",
		),
		observability.MHTTPRequestDuration: metrics.Histogram(
			observability.MHTTPRequestDuration,
			"Duration of HTTP requests in seconds.",
			nil,
			"method", "route", "status",
		),
	}
	tel := telemetry.New(oteltrace.New(serviceName), logger, counters, histograms)

	bus := outbox.NewBus(logger)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	access := identity.NewAccessControl(identity.Actor(managerID))
	service := appwarehouse.NewService(
		access,
		memory.NewCatalogRepository(),
		memory.NewOrderRepository(),
		bus,
		tel,
	)

	auditWorker := audit.New(bus, tel)
	auditWorker.Start()

	handler := httppresentation.NewHandler(service, tel)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http_server_start",
			observability.F("addr", server.Addr),
			observability.F("manager", managerID),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error",
				observability.F("error", err.Error()),
			)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error",
			observability.F("error", err.Error()),
		)
	} else {
		logger.Info("http_server_stopped")
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
