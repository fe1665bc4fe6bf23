package domain

import "context"

// EntityType identifies the kind of record a violation refers to.
type EntityType string

// Entity types referenced by rule violations.
const (
	EntityShip      EntityType = "ship"
	EntityContainer EntityType = "container"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities.
const (
	// SeverityBlock marks a broken invariant.
	SeverityBlock Severity = "block"
	// SeverityWarn flags a questionable but legal state.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Violation describes a single rule finding.
type Violation struct {
	Rule     string     `json:"rule"`
	Severity Severity   `json:"severity"`
	Message  string     `json:"message"`
	Entity   EntityType `json:"entity"`
	EntityID string     `json:"entity_id"`
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation `json:"violations"`
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleView provides read-only access to the fleet for rule evaluation.
type RuleView interface {
	ListManifests() []Manifest
	ListUnassigned() []ContainerRecord
	FindManifest(id ShipID) (Manifest, bool)
}

// Rule defines an evaluation over a fleet snapshot.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, view RuleView) (Result, error)
}

// RulesEngine orchestrates rule evaluation.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an engine instance.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Rules returns the registered rules in registration order.
func (e *RulesEngine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Evaluate executes all registered rules and aggregates their results.
func (e *RulesEngine) Evaluate(ctx context.Context, view RuleView) (Result, error) {
	var combined Result
	for _, rule := range e.rules {
		res, err := rule.Evaluate(ctx, view)
		if err != nil {
			return Result{}, err
		}
		combined.Merge(res)
	}
	return combined, nil
}

// FleetView is a RuleView over fixed snapshots.
type FleetView struct {
	Manifests  []Manifest
	Unassigned []ContainerRecord
}

// ListManifests returns the ship manifests.
func (v FleetView) ListManifests() []Manifest { return v.Manifests }

// ListUnassigned returns containers not aboard any ship.
func (v FleetView) ListUnassigned() []ContainerRecord { return v.Unassigned }

// FindManifest looks up a manifest by ship ID.
func (v FleetView) FindManifest(id ShipID) (Manifest, bool) {
	for _, m := range v.Manifests {
		if m.ShipID == id {
			return m, true
		}
	}
	return Manifest{}, false
}
