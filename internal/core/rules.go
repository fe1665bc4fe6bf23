package core

import "cargofleet/pkg/domain"

// NewDefaultRulesEngine builds a rules engine with the built-in fleet policy set.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewShipContainerCountRule())
	engine.Register(NewShipWeightRule())
	engine.Register(NewCargoCeilingRule())
	engine.Register(NewOwnershipRule())
	engine.Register(NewRefrigeratedTemperatureRule())
	return engine
}

// allRecords flattens every container in view, aboard or not.
func allRecords(view domain.RuleView) []domain.ContainerRecord {
	var out []domain.ContainerRecord
	for _, m := range view.ListManifests() {
		out = append(out, m.Containers...)
	}
	return append(out, view.ListUnassigned()...)
}
