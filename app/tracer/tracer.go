package tracer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/somya-cb/ai-travel-assistant/app/observability/metrics"
)

// Providers holds what InitTracingAndMetrics installed so main can shut it down.
type Providers struct {
	tp      *trace.TracerProvider
	mp      *metric.MeterProvider
	metrics *http.Server
}

// InitTracingAndMetrics installs the global tracer and meter providers and
// serves Prometheus metrics on metricsPort.
func InitTracingAndMetrics(serviceName, metricsPort string, logger *slog.Logger) (*Providers, error) {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	tp := trace.NewTracerProvider(trace.WithResource(res))
	otel.SetTracerProvider(tp)

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
	otel.SetMeterProvider(mp)
	metrics.InitAppMetrics()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              ":" + metricsPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Serving metrics", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", slog.Any("error", err))
		}
	}()

	return &Providers{tp: tp, mp: mp, metrics: srv}, nil
}

func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(
		p.metrics.Shutdown(ctx),
		p.mp.Shutdown(ctx),
		p.tp.Shutdown(ctx),
	)
}
