// Package domain defines the cargo containers, the ships that carry them and
// the capacity and ownership rules binding the two.
package domain

import "math"

// Kind identifies a container variant.
type Kind string

// Supported container kinds.
const (
	KindLiquid       Kind = "liquid"
	KindGas          Kind = "gas"
	KindRefrigerated Kind = "refrigerated"
)

// Kinds lists every container kind in serial-code order of introduction.
func Kinds() []Kind {
	return []Kind{KindLiquid, KindGas, KindRefrigerated}
}

// Code returns the single-letter type code embedded in serial numbers.
func (k Kind) Code() string {
	switch k {
	case KindLiquid:
		return "L"
	case KindGas:
		return "G"
	case KindRefrigerated:
		return "C"
	default:
		return "?"
	}
}

// Label returns the human readable kind name used in reports.
func (k Kind) Label() string {
	switch k {
	case KindLiquid:
		return "Liquid"
	case KindGas:
		return "Gas"
	case KindRefrigerated:
		return "Refrigerated"
	default:
		return "Unknown"
	}
}

const (
	hazardousLiquidRatio = 0.5
	liquidRatio          = 0.9
	gasResidualRatio     = 0.05
)

// Dimensions holds the immutable physical attributes shared by all containers.
// Weights are kilograms, lengths centimetres.
type Dimensions struct {
	TareWeight float64 `json:"tare_weight_kg" yaml:"tare"`
	Height     float64 `json:"height_cm" yaml:"height"`
	Depth      float64 `json:"depth_cm" yaml:"depth"`
	MaxPayload float64 `json:"max_payload_kg" yaml:"max_payload"`
}

func (d Dimensions) validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"tare weight", d.TareWeight},
		{"height", d.Height},
		{"depth", d.Depth},
		{"max payload", d.MaxPayload},
	}
	for _, f := range fields {
		if !positive(f.value) {
			return newError(ErrorInvalidConfiguration, "", "%s must be greater than zero, got %v", f.name, f.value)
		}
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Container is the behaviour shared by every container kind. The interface is
// sealed: only the variants in this package implement it.
type Container interface {
	SerialNumber() string
	Kind() Kind
	TareWeight() float64
	Height() float64
	Depth() float64
	MaxPayload() float64
	CargoMass() float64
	// Ceiling is the effective load limit applied by the kind's policy.
	Ceiling() float64
	// GrossWeight is tare plus current cargo.
	GrossWeight() float64
	// ShipID is the owning ship, empty while unassigned.
	ShipID() ShipID
	Empty()

	state() *base
}

// Loader is implemented by kinds that accept cargo without a product declaration.
type Loader interface {
	Container
	LoadCargo(mass float64) error
}

// base carries the fields and policy helpers common to all kinds.
type base struct {
	serial     string
	kind       Kind
	dims       Dimensions
	cargoMass  float64
	ship       ShipID
	hazardSink HazardSink
}

func (b *base) SerialNumber() string   { return b.serial }
func (b *base) Kind() Kind             { return b.kind }
func (b *base) TareWeight() float64    { return b.dims.TareWeight }
func (b *base) Height() float64        { return b.dims.Height }
func (b *base) Depth() float64         { return b.dims.Depth }
func (b *base) MaxPayload() float64    { return b.dims.MaxPayload }
func (b *base) CargoMass() float64     { return b.cargoMass }
func (b *base) GrossWeight() float64   { return b.dims.TareWeight + b.cargoMass }
func (b *base) ShipID() ShipID         { return b.ship }
func (b *base) Dimensions() Dimensions { return b.dims }
func (b *base) state() *base           { return b }

// Empty purges all cargo.
func (b *base) Empty() { b.cargoMass = 0 }

// load applies mass against ceiling. overfill runs before the error is built,
// so hazard notification always precedes the failure.
func (b *base) load(mass, ceiling float64, overfill func()) error {
	if mass < 0 || math.IsNaN(mass) || math.IsInf(mass, 0) {
		return newError(ErrorInvalidConfiguration, b.serial, "container %s: cargo mass must be a non-negative number, got %v", b.serial, mass)
	}
	if b.cargoMass+mass > ceiling {
		if overfill != nil {
			overfill()
		}
		return newError(ErrorOverfill, b.serial, "container %s: cannot load %gkg, %gkg aboard exceeds limit of %gkg", b.serial, mass, b.cargoMass+mass, ceiling)
	}
	b.cargoMass += mass
	return nil
}

func (b *base) hazard(message string) {
	notifyHazard(b.hazardSink, Hazard{Serial: b.serial, Kind: b.kind, Message: message})
}

// Load dispatches a cargo load by kind. product is only consulted for
// refrigerated containers.
func Load(c Container, mass float64, product string) error {
	switch v := c.(type) {
	case *RefrigeratedContainer:
		return v.LoadCargo(mass, product)
	case Loader:
		return v.LoadCargo(mass)
	default:
		return newError(ErrorInvalidConfiguration, "", "container %T cannot be loaded", c)
	}
}

// Factory builds containers, numbering them from its serial registry and
// wiring hazard-capable kinds to its sink.
type Factory struct {
	serials *SerialRegistry
	hazards HazardSink
}

// NewFactory constructs a factory. A nil registry gets a fresh one and a nil
// sink discards notifications.
func NewFactory(serials *SerialRegistry, hazards HazardSink) *Factory {
	if serials == nil {
		serials = NewSerialRegistry()
	}
	if hazards == nil {
		hazards = discardHazards{}
	}
	return &Factory{serials: serials, hazards: hazards}
}

// Serials exposes the registry backing the factory.
func (f *Factory) Serials() *SerialRegistry { return f.serials }

func (f *Factory) newBase(kind Kind, dims Dimensions) base {
	return base{
		serial:     f.serials.Next(kind),
		kind:       kind,
		dims:       dims,
		hazardSink: f.hazards,
	}
}

// NewLiquidContainer builds a liquid container.
func (f *Factory) NewLiquidContainer(dims Dimensions, hazardous bool) (*LiquidContainer, error) {
	if err := dims.validate(); err != nil {
		return nil, err
	}
	return &LiquidContainer{base: f.newBase(KindLiquid, dims), hazardous: hazardous}, nil
}

// NewGasContainer builds a gas container held at pressure (atm).
func (f *Factory) NewGasContainer(dims Dimensions, pressure float64) (*GasContainer, error) {
	if err := dims.validate(); err != nil {
		return nil, err
	}
	if !positive(pressure) {
		return nil, newError(ErrorInvalidConfiguration, "", "pressure must be greater than zero, got %v", pressure)
	}
	return &GasContainer{base: f.newBase(KindGas, dims), pressure: pressure}, nil
}

// NewRefrigeratedContainer builds a refrigerated container dedicated to product.
// It fails when product is unknown or temperature is below the product minimum.
func (f *Factory) NewRefrigeratedContainer(dims Dimensions, product string, temperature float64) (*RefrigeratedContainer, error) {
	if err := dims.validate(); err != nil {
		return nil, err
	}
	minTemp, ok := MinimumTemperature(product)
	if !ok {
		return nil, newError(ErrorInvalidConfiguration, "", "unknown product %q", product)
	}
	if math.IsNaN(temperature) || temperature < minTemp {
		return nil, newError(ErrorInvalidConfiguration, "", "temperature %g°C is too low for %s, minimum is %g°C", temperature, product, minTemp)
	}
	return &RefrigeratedContainer{
		base:        f.newBase(KindRefrigerated, dims),
		product:     product,
		temperature: temperature,
	}, nil
}
