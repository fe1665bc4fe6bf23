package scenario

import (
	"fmt"
	"strconv"

	"cargofleet/pkg/domain"
)

// ShipReport summarises a ship: speed, capacity use, weight and serials.
type ShipReport struct {
	ShipID        domain.ShipID
	Label         string
	MaxSpeed      float64
	Count         int
	MaxCount      int
	WeightTons    float64
	MaxWeightTons float64
	Serials       []string
}

// NewShipReport builds a report from m.
func NewShipReport(m domain.Manifest) ShipReport {
	r := ShipReport{
		ShipID:        m.ShipID,
		Label:         m.Label(),
		MaxSpeed:      m.MaxSpeed,
		Count:         len(m.Containers),
		MaxCount:      m.MaxContainerCount,
		WeightTons:    m.TotalWeightKg / 1000,
		MaxWeightTons: m.MaxWeightKg / 1000,
		Serials:       make([]string, 0, len(m.Containers)),
	}
	for _, c := range m.Containers {
		r.Serials = append(r.Serials, c.Serial)
	}
	return r
}

// Lines renders the report as plain text.
func (r ShipReport) Lines() []string {
	lines := []string{
		fmt.Sprintf("Ship %s [Max Speed: %s knots]", r.Label, num(r.MaxSpeed)),
		fmt.Sprintf("Capacity: %d/%d containers", r.Count, r.MaxCount),
		fmt.Sprintf("Weight: %.1ft/%.1ft", r.WeightTons, r.MaxWeightTons),
		"Containers onboard:",
	}
	for _, s := range r.Serials {
		lines = append(lines, "- "+s)
	}
	return lines
}

// ContainerReport describes one container. Type comes from the serial code.
type ContainerReport struct {
	Serial       string
	Type         string
	CargoMass    float64
	MaxPayload   float64
	ShipID       domain.ShipID
	Refrigerated bool
	Product      string
	Temperature  float64
}

// NewContainerReport builds a report from rec.
func NewContainerReport(rec domain.ContainerRecord) ContainerReport {
	typ := "Unknown"
	if kind, ok := domain.KindFromSerial(rec.Serial); ok {
		typ = kind.Label()
	}
	return ContainerReport{
		Serial:       rec.Serial,
		Type:         typ,
		CargoMass:    rec.CargoMass,
		MaxPayload:   rec.MaxPayload,
		ShipID:       rec.ShipID,
		Refrigerated: rec.Kind == domain.KindRefrigerated,
		Product:      rec.Product,
		Temperature:  rec.Temperature,
	}
}

// Lines renders the report as plain text.
func (r ContainerReport) Lines() []string {
	lines := []string{
		"Container " + r.Serial,
		"Type: " + r.Type,
		fmt.Sprintf("Cargo Mass: %skg", num(r.CargoMass)),
		fmt.Sprintf("Max Payload: %skg", num(r.MaxPayload)),
	}
	if r.Refrigerated {
		lines = append(lines, fmt.Sprintf("Product: %s, Temp: %s°C", r.Product, num(r.Temperature)))
	}
	return lines
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
