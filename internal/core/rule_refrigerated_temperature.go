package core

import (
	"context"
	"fmt"

	"cargofleet/pkg/domain"
)

// NewRefrigeratedTemperatureRule returns the rule checking refrigerated
// containers against their product's minimum temperature.
func NewRefrigeratedTemperatureRule() domain.Rule {
	return refrigeratedTemperatureRule{}
}

type refrigeratedTemperatureRule struct{}

func (refrigeratedTemperatureRule) Name() string { return "refrigerated_temperature" }

func (r refrigeratedTemperatureRule) Evaluate(_ context.Context, view domain.RuleView) (domain.Result, error) {
	res := domain.Result{}
	for _, rec := range allRecords(view) {
		if rec.Kind != domain.KindRefrigerated {
			continue
		}
		minTemp, known := domain.MinimumTemperature(rec.Product)
		switch {
		case !known:
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("container %s stores unknown product %q", rec.Serial, rec.Product),
				Entity:   domain.EntityContainer,
				EntityID: rec.Serial,
			})
		case rec.Temperature < minTemp:
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("container %s holds %s at %g°C, minimum %g°C", rec.Serial, rec.Product, rec.Temperature, minTemp),
				Entity:   domain.EntityContainer,
				EntityID: rec.Serial,
			})
		}
	}
	return res, nil
}
