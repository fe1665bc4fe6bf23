package domain

import (
	"fmt"
	"math"
)

// Compile-time capability assertions.
var (
	_ Loader         = (*LiquidContainer)(nil)
	_ Loader         = (*GasContainer)(nil)
	_ HazardNotifier = (*LiquidContainer)(nil)
	_ HazardNotifier = (*GasContainer)(nil)
	_ Container      = (*RefrigeratedContainer)(nil)
)

// LiquidContainer carries liquids. Hazardous contents halve the usable payload.
type LiquidContainer struct {
	base
	hazardous bool
}

// IsHazardous reports whether the container is flagged as carrying dangerous liquid.
func (c *LiquidContainer) IsHazardous() bool { return c.hazardous }

// Ceiling is 50% of the payload for hazardous liquid, 90% otherwise.
func (c *LiquidContainer) Ceiling() float64 {
	if c.hazardous {
		return c.dims.MaxPayload * hazardousLiquidRatio
	}
	return c.dims.MaxPayload * liquidRatio
}

// LoadCargo adds mass, notifying a hazard before rejecting an overfill.
func (c *LiquidContainer) LoadCargo(mass float64) error {
	return c.load(mass, c.Ceiling(), func() {
		c.NotifyHazard(fmt.Sprintf("tried to overload liquid container %s with %gkg", c.serial, mass))
	})
}

// NotifyHazard reports a dangerous operation on this container.
func (c *LiquidContainer) NotifyHazard(message string) { c.hazard(message) }

// GasContainer carries pressurised gas.
type GasContainer struct {
	base
	pressure float64
}

// Pressure returns the container pressure in atmospheres.
func (c *GasContainer) Pressure() float64 { return c.pressure }

// Ceiling is the full payload.
func (c *GasContainer) Ceiling() float64 { return c.dims.MaxPayload }

// LoadCargo adds mass, notifying a hazard before rejecting an overfill.
func (c *GasContainer) LoadCargo(mass float64) error {
	return c.load(mass, c.Ceiling(), func() {
		c.NotifyHazard(fmt.Sprintf("gas overfill in %s: %gkg requested", c.serial, mass))
	})
}

// Empty leaves 5% of the previous cargo behind; residual gas cannot be purged.
// Repeated calls keep decaying the residue rather than reaching zero.
func (c *GasContainer) Empty() { c.cargoMass *= gasResidualRatio }

// NotifyHazard reports a dangerous operation on this container.
func (c *GasContainer) NotifyHazard(message string) { c.hazard(message) }

// RefrigeratedContainer carries a single temperature-sensitive product.
type RefrigeratedContainer struct {
	base
	product     string
	temperature float64
}

// Product returns the product the container is dedicated to.
func (c *RefrigeratedContainer) Product() string { return c.product }

// Temperature returns the current set temperature in °C.
func (c *RefrigeratedContainer) Temperature() float64 { return c.temperature }

// MinimumTemperature returns the stored product's minimum temperature.
func (c *RefrigeratedContainer) MinimumTemperature() float64 {
	minTemp, _ := MinimumTemperature(c.product)
	return minTemp
}

// Ceiling is the full payload.
func (c *RefrigeratedContainer) Ceiling() float64 { return c.dims.MaxPayload }

// LoadCargo adds mass of product, which must match the container's product.
func (c *RefrigeratedContainer) LoadCargo(mass float64, product string) error {
	if product != c.product {
		return newError(ErrorProductMismatch, c.serial, "container %s holds %s, not %s", c.serial, c.product, product)
	}
	return c.load(mass, c.Ceiling(), nil)
}

// SetTemperature changes the set temperature, refusing values below the product minimum.
func (c *RefrigeratedContainer) SetTemperature(temperature float64) error {
	minTemp := c.MinimumTemperature()
	if math.IsNaN(temperature) || temperature < minTemp {
		return newError(ErrorTemperatureViolation, c.serial, "container %s: temperature %g°C is too low for %s, minimum is %g°C", c.serial, temperature, c.product, minTemp)
	}
	c.temperature = temperature
	return nil
}
