package domain

import (
	"context"
	"errors"
	"testing"
)

func TestResultMergeAndBlocking(t *testing.T) {
	var result Result
	result.Merge(Result{Violations: []Violation{{Rule: "warn", Severity: SeverityWarn}}})
	if result.HasBlocking() {
		t.Fatalf("expected no blocking violations")
	}
	result.Merge(Result{Violations: []Violation{{Rule: "block", Severity: SeverityBlock}}})
	if !result.HasBlocking() {
		t.Fatalf("expected blocking violation")
	}
	err := RuleViolationError{Result: result}
	if err.Error() != "fleet blocked by rules: 2 violation(s)" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
}

func TestResultMergeEmptyInput(t *testing.T) {
	original := Result{Violations: []Violation{{Rule: "existing", Severity: SeverityWarn}}}
	original.Merge(Result{})
	if len(original.Violations) != 1 || original.Violations[0].Rule != "existing" {
		t.Fatalf("expected original violations to remain, got %+v", original.Violations)
	}
}

type staticRule struct {
	name string
	err  error
}

func (r staticRule) Name() string { return r.name }

func (r staticRule) Evaluate(context.Context, RuleView) (Result, error) {
	if r.err != nil {
		return Result{}, r.err
	}
	return Result{Violations: []Violation{{Rule: r.name, Severity: SeverityWarn}}}, nil
}

func TestRulesEngineEvaluate(t *testing.T) {
	engine := NewRulesEngine()
	engine.Register(staticRule{name: "first"})
	engine.Register(staticRule{name: "second"})
	res, err := engine.Evaluate(context.Background(), FleetView{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 2 || res.Violations[0].Rule != "first" {
		t.Fatalf("expected violations in registration order, got %+v", res.Violations)
	}
	if rules := engine.Rules(); len(rules) != 2 || rules[1].Name() != "second" {
		t.Fatalf("unexpected rules %+v", rules)
	}
}

func TestRulesEngineStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	engine := NewRulesEngine()
	engine.Register(staticRule{name: "broken", err: boom})
	engine.Register(staticRule{name: "never"})
	if _, err := engine.Evaluate(context.Background(), FleetView{}); !errors.Is(err, boom) {
		t.Fatalf("expected rule error, got %v", err)
	}
}

func TestFleetViewFindManifest(t *testing.T) {
	s := NewShip(10, 1, 1, WithShipID("s-1"))
	view := FleetView{Manifests: []Manifest{s.Manifest()}}
	if m, ok := view.FindManifest("s-1"); !ok || m.ShipID != "s-1" {
		t.Fatalf("expected manifest for s-1")
	}
	if _, ok := view.FindManifest("missing"); ok {
		t.Fatalf("unexpected manifest for missing ship")
	}
}
