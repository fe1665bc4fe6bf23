package domain

// Hazard describes a dangerous load attempt reported by a container.
type Hazard struct {
	Serial  string `json:"serial"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// HazardNotifier is implemented by container kinds that carry dangerous cargo.
type HazardNotifier interface {
	NotifyHazard(message string)
}

// HazardSink receives hazard notifications. Report must not block the caller
// for long and must not panic; failures stay inside the sink.
type HazardSink interface {
	Report(h Hazard)
}

// HazardSinkFunc adapts a function to HazardSink.
type HazardSinkFunc func(Hazard)

// Report calls f(h).
func (f HazardSinkFunc) Report(h Hazard) { f(h) }

type discardHazards struct{}

func (discardHazards) Report(Hazard) {}

// notifyHazard shields the load path from a misbehaving sink.
func notifyHazard(sink HazardSink, h Hazard) {
	if sink == nil {
		return
	}
	defer func() { _ = recover() }()
	sink.Report(h)
}
