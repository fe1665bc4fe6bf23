// Package hazard delivers container hazard notifications: to the process log,
// to an alert journal, or to several sinks at once.
package hazard

import (
	"sync"

	"cargofleet/internal/core"
	"cargofleet/pkg/domain"
)

// Headline returns the alert banner for a hazard raised by kind.
func Headline(kind domain.Kind) string {
	switch kind {
	case domain.KindLiquid:
		return "DANGER!"
	case domain.KindGas:
		return "GAS WARNING!"
	default:
		return "WARNING!"
	}
}

// LogSink writes each hazard to a logger at error level.
type LogSink struct {
	Logger core.Logger
}

// Report implements domain.HazardSink.
func (s LogSink) Report(h domain.Hazard) {
	if s.Logger == nil {
		return
	}
	s.Logger.Error(Headline(h.Kind), "serial", h.Serial, "kind", string(h.Kind), "message", h.Message)
}

// Multi fans a hazard out to every non-nil sink in order.
func Multi(sinks ...domain.HazardSink) domain.HazardSink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

type multi []domain.HazardSink

func (m multi) Report(h domain.Hazard) {
	for _, s := range m {
		s.Report(h)
	}
}

// Recorder keeps every reported hazard in memory.
type Recorder struct {
	mu      sync.Mutex
	hazards []domain.Hazard
}

// Report implements domain.HazardSink.
func (r *Recorder) Report(h domain.Hazard) {
	r.mu.Lock()
	r.hazards = append(r.hazards, h)
	r.mu.Unlock()
}

// Hazards returns the hazards reported so far.
func (r *Recorder) Hazards() []domain.Hazard {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Hazard, len(r.hazards))
	copy(out, r.hazards)
	return out
}
