package domain

import "sort"

// productMinimums maps each refrigerated product to its minimum safe temperature in °C.
var productMinimums = map[string]float64{
	"Bananas":      13.3,
	"Chocolate":    18,
	"Fish":         2,
	"Meat":         -15,
	"Ice cream":    -18,
	"Frozen pizza": -30,
	"Cheese":       7.2,
	"Sausages":     5,
	"Butter":       20.5,
	"Eggs":         19,
}

// MinimumTemperature returns the lowest temperature a product may be stored at.
func MinimumTemperature(product string) (float64, bool) {
	minTemp, ok := productMinimums[product]
	return minTemp, ok
}

// Product pairs a product name with its minimum storage temperature.
type Product struct {
	Name               string  `json:"name"`
	MinimumTemperature float64 `json:"minimum_temperature_c"`
}

// Products lists the known refrigerated products ordered by name.
func Products() []Product {
	out := make([]Product, 0, len(productMinimums))
	for name, minTemp := range productMinimums {
		out = append(out, Product{Name: name, MinimumTemperature: minTemp})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
