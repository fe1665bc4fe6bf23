// Package observability adapts the service's metrics and tracing contracts to
// Prometheus and OpenTelemetry.
package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"cargofleet/pkg/domain"
)

var durationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

// PrometheusRecorder counts and times service operations and counts hazard
// notifications by container kind.
type PrometheusRecorder struct {
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	hazards    *prometheus.CounterVec
}

// NewPrometheusRecorder registers the fleet collectors with reg. Collectors
// already registered under the same names are reused.
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &PrometheusRecorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cargofleet",
			Subsystem: "service",
			Name:      "operations_total",
			Help:      "Count of fleet service operations by outcome",
		}, []string{"operation", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cargofleet",
			Subsystem: "service",
			Name:      "operation_duration_seconds",
			Help:      "Latency distribution of fleet service operations",
			Buckets:   durationBuckets,
		}, []string{"operation"}),
		hazards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cargofleet",
			Subsystem: "containers",
			Name:      "hazards_total",
			Help:      "Number of hazard notifications raised by containers",
		}, []string{"kind"}),
	}
	if err := register(reg, &r.operations); err != nil {
		return nil, err
	}
	if err := register(reg, &r.hazards); err != nil {
		return nil, err
	}
	if err := reg.Register(r.durations); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return nil, fmt.Errorf("register %s: %w", "operation_duration_seconds", err)
		}
		existing, ok := already.ExistingCollector.(*prometheus.HistogramVec)
		if !ok {
			return nil, fmt.Errorf("register operation_duration_seconds: unexpected collector %T", already.ExistingCollector)
		}
		r.durations = existing
	}
	return r, nil
}

func register(reg prometheus.Registerer, vec **prometheus.CounterVec) error {
	err := reg.Register(*vec)
	if err == nil {
		return nil
	}
	var already prometheus.AlreadyRegisteredError
	if !errors.As(err, &already) {
		return fmt.Errorf("register counter: %w", err)
	}
	existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
	if !ok {
		return fmt.Errorf("register counter: unexpected collector %T", already.ExistingCollector)
	}
	*vec = existing
	return nil
}

// Observe implements core.MetricsRecorder.
func (r *PrometheusRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.operations.WithLabelValues(operation, status).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// Report implements domain.HazardSink.
func (r *PrometheusRecorder) Report(h domain.Hazard) {
	r.hazards.WithLabelValues(string(h.Kind)).Inc()
}

// WriteText writes every metric family gathered from g in the Prometheus text
// exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
