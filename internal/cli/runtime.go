package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"cargofleet/internal/blob"
	"cargofleet/internal/config"
	"cargofleet/internal/core"
	"cargofleet/internal/hazard"
	"cargofleet/internal/manifest"
	"cargofleet/internal/observability"
	"cargofleet/pkg/domain"
)

// runtime is the fully wired process state for one command invocation.
type runtime struct {
	cfg      config.Config
	logger   *slog.Logger
	svc      *core.Service
	exporter *manifest.Exporter
	hazards  *hazard.Recorder
	journal  *hazard.Journal
	registry *prometheus.Registry
	provider *sdktrace.TracerProvider
}

// settings resolves configuration from the environment, then applies flags
// the user set explicitly.
func (o *globalOptions) settings() config.Config {
	cfg := config.Load()
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.jsonLogs {
		cfg.LogFormat = config.FormatJSON
	}
	if o.metrics {
		cfg.Metrics = true
	}
	return cfg
}

func (o *globalOptions) newLogger(cfg config.Config) (*slog.Logger, error) {
	return config.NewLogger(o.stderr, cfg.LogLevel, cfg.LogFormat)
}

// openRuntime builds the fleet service and its collaborators.
func (o *globalOptions) openRuntime(ctx context.Context) (*runtime, error) {
	cfg := o.settings()
	logger, err := o.newLogger(cfg)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, logger: logger, hazards: &hazard.Recorder{}}

	sinks := []domain.HazardSink{rt.hazards}
	if cfg.LogFormat == config.FormatJSON {
		sinks = append(sinks, hazard.LogSink{Logger: logger})
	} else {
		sinks = append(sinks, consoleHazards{w: o.stdout})
	}

	svcOpts := []core.ServiceOption{core.WithLogger(logger)}
	if cfg.Metrics {
		rt.registry = prometheus.NewRegistry()
		recorder, err := observability.NewPrometheusRecorder(rt.registry)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		svcOpts = append(svcOpts, core.WithMetricsRecorder(recorder))
		sinks = append(sinks, recorder)
	}
	if o.trace {
		rt.provider = observability.NewSpanLogProvider(o.stderr)
		svcOpts = append(svcOpts, core.WithTracer(observability.NewTracer(rt.provider.Tracer("cargofleet/core"))))
	}
	if cfg.JournalEnabled() {
		journal, err := hazard.OpenJournal(ctx, cfg.HazardJournalDriver, cfg.HazardJournalDSN, hazard.WithJournalLogger(logger))
		if err != nil {
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("hazard journal: %w", err)
		}
		rt.journal = journal
		sinks = append(sinks, journal)
	}
	svcOpts = append(svcOpts, core.WithHazardSink(hazard.Multi(sinks...)))
	rt.svc = core.NewService(svcOpts...)

	store, err := blob.Open(ctx, cfg.Blob())
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("manifest store: %w", err)
	}
	rt.exporter = manifest.NewExporter(store, manifest.WithLogger(logger))
	logger.Debug("runtime ready",
		"blob_driver", string(store.Driver()),
		"journal", cfg.HazardJournalDriver,
		"metrics", cfg.Metrics,
		"trace", o.trace,
	)
	return rt, nil
}

// Close flushes spans and closes the journal.
func (rt *runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.provider != nil {
		errs = append(errs, rt.provider.Shutdown(ctx))
	}
	if rt.journal != nil {
		errs = append(errs, rt.journal.Close())
	}
	return errors.Join(errs...)
}
