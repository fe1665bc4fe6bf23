// Package scenario drives a fleet through a scripted list of steps loaded
// from YAML. A failing step is reported and the run moves on.
package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"cargofleet/pkg/domain"
)

// Step operations.
const (
	OpSection            = "section"
	OpCreateLiquid       = "create_liquid"
	OpCreateGas          = "create_gas"
	OpCreateRefrigerated = "create_refrigerated"
	OpCreateShip         = "create_ship"
	OpLoad               = "load"
	OpEmpty              = "empty"
	OpSetTemperature     = "set_temperature"
	OpAdd                = "add"
	OpAddMany            = "add_many"
	OpRemove             = "remove"
	OpReplace            = "replace"
	OpTransfer           = "transfer"
	OpRelease            = "release"
	OpReport             = "report"
	OpInspect            = "inspect"
	OpExport             = "export"
)

var knownOps = map[string]struct{}{
	OpSection: {}, OpCreateLiquid: {}, OpCreateGas: {}, OpCreateRefrigerated: {},
	OpCreateShip: {}, OpLoad: {}, OpEmpty: {}, OpSetTemperature: {}, OpAdd: {},
	OpAddMany: {}, OpRemove: {}, OpReplace: {}, OpTransfer: {}, OpRelease: {},
	OpReport: {}, OpInspect: {}, OpExport: {},
}

// Ops lists the supported step operations alphabetically.
func Ops() []string {
	out := make([]string, 0, len(knownOps))
	for op := range knownOps {
		out = append(out, op)
	}
	sort.Strings(out)
	return out
}

// Scenario is a named list of steps.
type Scenario struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one operation. Only the fields relevant to Op are read.
// Container, Ship, From, To and With accept an alias bound by an earlier
// step's As, or a literal serial or ship ID.
type Step struct {
	Op    string `yaml:"op"`
	As    string `yaml:"as,omitempty"`
	Title string `yaml:"title,omitempty"`

	Dimensions  domain.Dimensions `yaml:"dimensions,omitempty"`
	Hazardous   bool              `yaml:"hazardous,omitempty"`
	Pressure    float64           `yaml:"pressure,omitempty"`
	Product     string            `yaml:"product,omitempty"`
	Temperature float64           `yaml:"temperature,omitempty"`
	Mass        float64           `yaml:"mass,omitempty"`

	ID            string  `yaml:"id,omitempty"`
	Name          string  `yaml:"name,omitempty"`
	MaxSpeed      float64 `yaml:"max_speed,omitempty"`
	MaxContainers int     `yaml:"max_containers,omitempty"`
	MaxWeightTons float64 `yaml:"max_weight_tons,omitempty"`

	Container  string   `yaml:"container,omitempty"`
	Containers []string `yaml:"containers,omitempty"`
	Ship       string   `yaml:"ship,omitempty"`
	From       string   `yaml:"from,omitempty"`
	To         string   `yaml:"to,omitempty"`
	With       string   `yaml:"with,omitempty"`
}

// Parse decodes a scenario and validates its structure. Unknown fields are
// rejected.
func Parse(r io.Reader) (Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return Scenario{}, errors.New("scenario is empty")
		}
		return Scenario{}, fmt.Errorf("decode scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

// Load reads and parses the scenario at path.
func Load(path string) (Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("open scenario: %w", err)
	}
	defer func() { _ = f.Close() }()
	sc, err := Parse(f)
	if err != nil {
		return Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Validate checks operations and the references each one needs. Domain
// limits are left to the fleet.
func (sc Scenario) Validate() error {
	if len(sc.Steps) == 0 {
		return errors.New("scenario has no steps")
	}
	var problems []string
	for i, st := range sc.Steps {
		if msg := st.problem(); msg != "" {
			problems = append(problems, fmt.Sprintf("step %d (%s): %s", i+1, st.Op, msg))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid scenario:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

func (st Step) problem() string {
	if _, ok := knownOps[st.Op]; !ok {
		return fmt.Sprintf("unknown op %q", st.Op)
	}
	need := func(field, value string) string {
		if strings.TrimSpace(value) == "" {
			return field + " is required"
		}
		return ""
	}
	switch st.Op {
	case OpSection:
		return need("title", st.Title)
	case OpCreateRefrigerated:
		return need("product", st.Product)
	case OpLoad, OpEmpty, OpSetTemperature:
		return need("container", st.Container)
	case OpAdd, OpRemove:
		if msg := need("ship", st.Ship); msg != "" {
			return msg
		}
		return need("container", st.Container)
	case OpAddMany:
		if len(st.Containers) == 0 {
			return "containers is required"
		}
		return need("ship", st.Ship)
	case OpReplace:
		if msg := need("ship", st.Ship); msg != "" {
			return msg
		}
		if msg := need("container", st.Container); msg != "" {
			return msg
		}
		return need("with", st.With)
	case OpTransfer:
		if msg := need("from", st.From); msg != "" {
			return msg
		}
		if msg := need("to", st.To); msg != "" {
			return msg
		}
		return need("container", st.Container)
	case OpRelease:
		return need("ship", st.Ship)
	case OpReport:
		if st.Ship != "" && st.Container != "" {
			return "report takes ship or container, not both"
		}
	}
	return ""
}
