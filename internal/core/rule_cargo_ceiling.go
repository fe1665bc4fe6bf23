package core

import (
	"context"
	"fmt"

	"cargofleet/pkg/domain"
)

// NewCargoCeilingRule returns the rule checking that no container holds more
// cargo than its kind allows.
func NewCargoCeilingRule() domain.Rule {
	return cargoCeilingRule{}
}

type cargoCeilingRule struct{}

func (cargoCeilingRule) Name() string { return "cargo_ceiling" }

func (r cargoCeilingRule) Evaluate(_ context.Context, view domain.RuleView) (domain.Result, error) {
	res := domain.Result{}
	for _, rec := range allRecords(view) {
		if rec.CargoMass > rec.Ceiling {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("container %s holds %gkg, ceiling %gkg", rec.Serial, rec.CargoMass, rec.Ceiling),
				Entity:   domain.EntityContainer,
				EntityID: rec.Serial,
			})
		}
	}
	return res, nil
}
