package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
}

// Metrics exposes the credit engine's instruments. A nil *Metrics is a
// valid no-op receiver so services can treat it as optional.
type Metrics struct {
	scoringRuns        metric.Int64Counter
	autoAddAdded       metric.Int64Counter
	autoAddFailed      metric.Int64Counter
	unblockTransitions metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "", "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	case "http":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported metrics exporter protocol %q", protocol)
	}
}

// New builds the engine instruments on the provided meter provider.
func New(provider metric.MeterProvider, cfg Config) (*Metrics, error) {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "salesops"
	}
	meter := provider.Meter(serviceName)

	scoringRuns, err := meter.Int64Counter("credit_scoring_runs_total",
		metric.WithDescription("Composite score computations performed"))
	if err != nil {
		return nil, err
	}
	autoAddAdded, err := meter.Int64Counter("credit_meeting_autoadd_added_total",
		metric.WithDescription("Customers added to meetings by risk auto-population"))
	if err != nil {
		return nil, err
	}
	autoAddFailed, err := meter.Int64Counter("credit_meeting_autoadd_failed_total",
		metric.WithDescription("Per-customer failures during meeting auto-population"))
	if err != nil {
		return nil, err
	}
	unblockTransitions, err := meter.Int64Counter("credit_unblock_transitions_total",
		metric.WithDescription("Unblock request state transitions"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		scoringRuns:        scoringRuns,
		autoAddAdded:       autoAddAdded,
		autoAddFailed:      autoAddFailed,
		unblockTransitions: unblockTransitions,
	}, nil
}

func (m *Metrics) RecordScoringRun(ctx context.Context, composite int) {
	if m == nil || m.scoringRuns == nil {
		return
	}
	m.scoringRuns.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("composite_score", composite),
	))
}

func (m *Metrics) RecordAutoAdd(ctx context.Context, added, failed int) {
	if m == nil {
		return
	}
	if m.autoAddAdded != nil && added > 0 {
		m.autoAddAdded.Add(ctx, int64(added))
	}
	if m.autoAddFailed != nil && failed > 0 {
		m.autoAddFailed.Add(ctx, int64(failed))
	}
}

func (m *Metrics) RecordUnblockTransition(ctx context.Context, status string) {
	if m == nil || m.unblockTransitions == nil {
		return
	}
	m.unblockTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}
