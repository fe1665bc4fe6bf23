package scenario

import (
	"fmt"

	"cargofleet/internal/blob"
	"cargofleet/pkg/domain"
)

type captureReporter struct {
	sections   []string
	done       []string
	failed     []string
	errs       []error
	ships      []ShipReport
	containers []ContainerReport
	results    []domain.Result
	exported   []blob.Object
}

func (c *captureReporter) Section(title string) { c.sections = append(c.sections, title) }

func (c *captureReporter) Done(index int, op, message string) {
	c.done = append(c.done, fmt.Sprintf("%d:%s:%s", index, op, message))
}

func (c *captureReporter) Failed(index int, op string, err error) {
	c.failed = append(c.failed, fmt.Sprintf("%d:%s", index, op))
	c.errs = append(c.errs, err)
}

func (c *captureReporter) Ship(r ShipReport)           { c.ships = append(c.ships, r) }
func (c *captureReporter) Container(r ContainerReport) { c.containers = append(c.containers, r) }
func (c *captureReporter) Inspection(r domain.Result)  { c.results = append(c.results, r) }
func (c *captureReporter) Exported(objs []blob.Object) { c.exported = append(c.exported, objs...) }
