package core

import (
	"context"
	"fmt"

	"cargofleet/pkg/domain"
)

// nearLimitRatio is the load factor above which a ship is reported as close to
// its weight limit.
const nearLimitRatio = 0.95

// NewShipWeightRule returns the rule enforcing each ship's weight limit. Ships
// loaded past 95% of their limit produce a warning.
func NewShipWeightRule() domain.Rule {
	return shipWeightRule{}
}

type shipWeightRule struct{}

func (shipWeightRule) Name() string { return "ship_weight" }

func (r shipWeightRule) Evaluate(_ context.Context, view domain.RuleView) (domain.Result, error) {
	res := domain.Result{}
	for _, m := range view.ListManifests() {
		switch {
		case m.TotalWeightKg > m.MaxWeightKg:
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("ship %s weighs %.1ft, limit %.1ft", m.Label(), m.TotalWeightKg/1000, m.MaxWeightKg/1000),
				Entity:   domain.EntityShip,
				EntityID: string(m.ShipID),
			})
		case m.MaxWeightKg > 0 && m.TotalWeightKg > m.MaxWeightKg*nearLimitRatio:
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("ship %s is at %.0f%% of its weight limit", m.Label(), 100*m.TotalWeightKg/m.MaxWeightKg),
				Entity:   domain.EntityShip,
				EntityID: string(m.ShipID),
			})
		}
	}
	return res, nil
}
