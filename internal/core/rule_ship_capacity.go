package core

import (
	"context"
	"fmt"

	"cargofleet/pkg/domain"
)

// NewShipContainerCountRule returns the rule enforcing each ship's container limit.
func NewShipContainerCountRule() domain.Rule {
	return shipContainerCountRule{}
}

type shipContainerCountRule struct{}

func (shipContainerCountRule) Name() string { return "ship_container_count" }

func (r shipContainerCountRule) Evaluate(_ context.Context, view domain.RuleView) (domain.Result, error) {
	res := domain.Result{}
	for _, m := range view.ListManifests() {
		if count := len(m.Containers); count > m.MaxContainerCount {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("ship %s carries %d/%d containers", m.Label(), count, m.MaxContainerCount),
				Entity:   domain.EntityShip,
				EntityID: string(m.ShipID),
			})
		}
	}
	return res, nil
}
