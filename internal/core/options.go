package core

import "cargofleet/pkg/domain"

// ServiceOption customises NewService.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	logger  Logger
	clock   Clock
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
	hazards domain.HazardSink
	engine  *domain.RulesEngine
	serials *domain.SerialRegistry
}

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		logger:  noopLogger{},
		clock:   ClockFunc(nil),
		audit:   noopAuditRecorder{},
		metrics: noopMetricsRecorder{},
		tracer:  noopTracer{},
	}
}

// WithLogger sets the operation logger. Nil keeps the noop logger.
func WithLogger(logger Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock overrides the clock used for audit timestamps and durations.
func WithClock(clock Clock) ServiceOption {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithAuditRecorder receives one entry per operation.
func WithAuditRecorder(recorder AuditRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.audit = recorder
		}
	}
}

// WithMetricsRecorder observes operation outcomes.
func WithMetricsRecorder(recorder MetricsRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

// WithTracer wraps every operation in a span.
func WithTracer(tracer Tracer) ServiceOption {
	return func(o *serviceOptions) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithHazardSink routes container hazard notifications. The service always
// logs hazards; the sink is called in addition.
func WithHazardSink(sink domain.HazardSink) ServiceOption {
	return func(o *serviceOptions) { o.hazards = sink }
}

// WithRulesEngine replaces the default rule set used for post-operation
// verification and Inspect.
func WithRulesEngine(engine *domain.RulesEngine) ServiceOption {
	return func(o *serviceOptions) { o.engine = engine }
}

// WithSerialRegistry shares a serial registry between services.
func WithSerialRegistry(serials *domain.SerialRegistry) ServiceOption {
	return func(o *serviceOptions) { o.serials = serials }
}
