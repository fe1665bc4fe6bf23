package core

import (
	"context"
	"fmt"

	"cargofleet/pkg/domain"
)

// NewOwnershipRule returns the rule checking that every container is aboard at
// most one ship and that its back-reference agrees.
func NewOwnershipRule() domain.Rule {
	return ownershipRule{}
}

type ownershipRule struct{}

func (ownershipRule) Name() string { return "ownership_uniqueness" }

func (r ownershipRule) Evaluate(_ context.Context, view domain.RuleView) (domain.Result, error) {
	res := domain.Result{}
	add := func(serial, format string, args ...any) {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     r.Name(),
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf(format, args...),
			Entity:   domain.EntityContainer,
			EntityID: serial,
		})
	}
	aboard := make(map[string]domain.ShipID)
	for _, m := range view.ListManifests() {
		for _, rec := range m.Containers {
			if prev, dup := aboard[rec.Serial]; dup {
				add(rec.Serial, "container %s is aboard both %s and %s", rec.Serial, prev, m.ShipID)
				continue
			}
			aboard[rec.Serial] = m.ShipID
			if rec.ShipID != m.ShipID {
				add(rec.Serial, "container %s is aboard %s but references %q", rec.Serial, m.ShipID, rec.ShipID)
			}
		}
	}
	for _, rec := range view.ListUnassigned() {
		if rec.ShipID != "" {
			add(rec.Serial, "container %s references ship %s but is aboard none", rec.Serial, rec.ShipID)
		}
	}
	return res, nil
}
