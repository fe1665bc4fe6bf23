package scenario

import (
	"bytes"
	_ "embed"
)

//go:embed demo.yaml
var demoYAML []byte

// Demo returns the built-in port demo: container creation, cargo limits,
// ship capacity, a transfer, a replacement and a temperature violation.
func Demo() (Scenario, error) {
	return Parse(bytes.NewReader(demoYAML))
}

// DemoSource returns the demo scenario as YAML.
func DemoSource() []byte { return bytes.Clone(demoYAML) }
