package domain

// ContainerRecord is a read-only snapshot of a container for reports, rules
// and exports. Kind-specific fields are zero for other kinds.
type ContainerRecord struct {
	Serial      string  `json:"serial"`
	Kind        Kind    `json:"kind"`
	TareWeight  float64 `json:"tare_weight_kg"`
	Height      float64 `json:"height_cm"`
	Depth       float64 `json:"depth_cm"`
	MaxPayload  float64 `json:"max_payload_kg"`
	CargoMass   float64 `json:"cargo_mass_kg"`
	Ceiling     float64 `json:"ceiling_kg"`
	ShipID      ShipID  `json:"ship_id,omitempty"`
	Hazardous   bool    `json:"hazardous,omitempty"`
	Pressure    float64 `json:"pressure_atm,omitempty"`
	Product     string  `json:"product,omitempty"`
	Temperature float64 `json:"temperature_c,omitempty"`
}

// GrossWeight is tare plus cargo.
func (r ContainerRecord) GrossWeight() float64 { return r.TareWeight + r.CargoMass }

// Snapshot captures the current state of c.
func Snapshot(c Container) ContainerRecord {
	rec := ContainerRecord{
		Serial:     c.SerialNumber(),
		Kind:       c.Kind(),
		TareWeight: c.TareWeight(),
		Height:     c.Height(),
		Depth:      c.Depth(),
		MaxPayload: c.MaxPayload(),
		CargoMass:  c.CargoMass(),
		Ceiling:    c.Ceiling(),
		ShipID:     c.ShipID(),
	}
	switch v := c.(type) {
	case *LiquidContainer:
		rec.Hazardous = v.IsHazardous()
	case *GasContainer:
		rec.Pressure = v.Pressure()
	case *RefrigeratedContainer:
		rec.Product = v.Product()
		rec.Temperature = v.Temperature()
	}
	return rec
}

// Manifest is a read-only snapshot of a ship and its cargo in load order.
type Manifest struct {
	ShipID            ShipID            `json:"ship_id"`
	Name              string            `json:"name,omitempty"`
	MaxSpeed          float64           `json:"max_speed_knots"`
	MaxContainerCount int               `json:"max_container_count"`
	MaxWeightKg       float64           `json:"max_weight_kg"`
	TotalWeightKg     float64           `json:"total_weight_kg"`
	Containers        []ContainerRecord `json:"containers"`
}

// Manifest snapshots the ship.
func (s *Ship) Manifest() Manifest {
	m := Manifest{
		ShipID:            s.id,
		Name:              s.name,
		MaxSpeed:          s.maxSpeed,
		MaxContainerCount: s.maxContainerCount,
		MaxWeightKg:       s.maxWeightKg,
		TotalWeightKg:     s.TotalWeight(),
		Containers:        make([]ContainerRecord, 0, len(s.containers)),
	}
	for _, c := range s.containers {
		m.Containers = append(m.Containers, Snapshot(c))
	}
	return m
}

// Label returns the ship name, falling back to its ID.
func (m Manifest) Label() string {
	if m.Name != "" {
		return m.Name
	}
	return string(m.ShipID)
}
