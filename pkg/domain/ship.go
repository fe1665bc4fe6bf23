package domain

import "github.com/google/uuid"

// ShipID identifies a ship. Containers reference their owner by ID only.
type ShipID string

// Ship carries containers within fixed count and weight limits. A ship is not
// safe for concurrent use.
type Ship struct {
	id                ShipID
	name              string
	maxSpeed          float64
	maxContainerCount int
	maxWeightKg       float64
	containers        []Container
}

// ShipOption customises NewShip.
type ShipOption func(*Ship)

// WithShipID overrides the generated ship identifier.
func WithShipID(id ShipID) ShipOption {
	return func(s *Ship) {
		if id != "" {
			s.id = id
		}
	}
}

// WithShipName sets the display name used in reports.
func WithShipName(name string) ShipOption {
	return func(s *Ship) { s.name = name }
}

// NewShip builds an empty ship. maxWeightTons is converted to kilograms.
func NewShip(maxSpeed float64, maxContainerCount int, maxWeightTons float64, opts ...ShipOption) *Ship {
	s := &Ship{
		id:                ShipID(uuid.NewString()),
		maxSpeed:          maxSpeed,
		maxContainerCount: maxContainerCount,
		maxWeightKg:       maxWeightTons * 1000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the ship identifier.
func (s *Ship) ID() ShipID { return s.id }

// Name returns the display name, which may be empty.
func (s *Ship) Name() string { return s.name }

// MaxSpeed is the top speed in knots.
func (s *Ship) MaxSpeed() float64 { return s.maxSpeed }

// MaxContainerCount is the most containers the ship may carry.
func (s *Ship) MaxContainerCount() int { return s.maxContainerCount }

// MaxWeightKg is the gross weight limit in kilograms.
func (s *Ship) MaxWeightKg() float64 { return s.maxWeightKg }

// Len is the number of containers aboard.
func (s *Ship) Len() int { return len(s.containers) }

// Containers returns the containers aboard in load order. The slice is a copy;
// the containers are shared.
func (s *Ship) Containers() []Container {
	out := make([]Container, len(s.containers))
	copy(out, s.containers)
	return out
}

// TotalWeight sums tare and cargo over every container aboard. It is computed
// on each call so cargo changes made after boarding are reflected.
func (s *Ship) TotalWeight() float64 {
	var total float64
	for _, c := range s.containers {
		total += c.GrossWeight()
	}
	return total
}

// WeightHeadroom is the additional mass the ship can take before hitting its limit.
func (s *Ship) WeightHeadroom() float64 {
	return s.maxWeightKg - s.TotalWeight()
}

// Find returns the container aboard with the given serial.
func (s *Ship) Find(serial string) (Container, bool) {
	if i := s.indexOf(serial); i >= 0 {
		return s.containers[i], true
	}
	return nil, false
}

func (s *Ship) indexOf(serial string) int {
	for i, c := range s.containers {
		if c.SerialNumber() == serial {
			return i
		}
	}
	return -1
}

// AddContainer boards c.
func (s *Ship) AddContainer(c Container) error {
	return s.AddContainers([]Container{c})
}

// AddContainers boards every container or none of them.
func (s *Ship) AddContainers(batch []Container) error {
	if err := s.admit(batch, nil, ""); err != nil {
		return err
	}
	for _, c := range batch {
		s.attach(c)
	}
	return nil
}

// RemoveContainer unloads the container with serial and clears its owner.
func (s *Ship) RemoveContainer(serial string) (Container, error) {
	i := s.indexOf(serial)
	if i < 0 {
		return nil, s.notAboard(serial)
	}
	c := s.detachAt(i)
	c.state().ship = ""
	return c, nil
}

// ReplaceContainer swaps the container with oldSerial for c. Capacity is
// checked as if c were boarding after the old container left; nothing
// changes when the check fails.
func (s *Ship) ReplaceContainer(oldSerial string, c Container) (Container, error) {
	if c != nil && c.ShipID() != "" {
		return nil, newError(ErrorAlreadyAssigned, c.SerialNumber(), "container %s is already aboard ship %s", c.SerialNumber(), c.ShipID())
	}
	i := s.indexOf(oldSerial)
	if i < 0 {
		return nil, s.notAboard(oldSerial)
	}
	old := s.containers[i]
	if err := s.admit([]Container{c}, old, ""); err != nil {
		return nil, err
	}
	s.detachAt(i)
	old.state().ship = ""
	s.attach(c)
	return old, nil
}

// Release detaches every container so they stay valid once the ship is gone.
func (s *Ship) Release() []Container {
	released := s.containers
	s.containers = nil
	for _, c := range released {
		c.state().ship = ""
	}
	return released
}

// admit validates boarding batch without mutating anything. leaving is a
// container about to depart and is excluded from the totals; from is the ship
// a transferred container is allowed to still belong to.
func (s *Ship) admit(batch []Container, leaving Container, from ShipID) error {
	count := 0
	var weight float64
	// summed in load order so the result matches TotalWeight after boarding
	for _, c := range s.containers {
		if c == leaving {
			continue
		}
		count++
		weight += c.GrossWeight()
	}
	seen := make(map[string]struct{}, len(batch))
	for _, c := range batch {
		if c == nil {
			return newError(ErrorInvalidConfiguration, "", "ship %s: nil container", s.id)
		}
		serial := c.SerialNumber()
		if owner := c.ShipID(); owner != "" && owner != from {
			return newError(ErrorAlreadyAssigned, serial, "container %s is already aboard ship %s", serial, owner)
		}
		if _, dup := seen[serial]; dup {
			return newError(ErrorAlreadyAssigned, serial, "container %s appears more than once", serial)
		}
		seen[serial] = struct{}{}
		if count >= s.maxContainerCount {
			return newError(ErrorOverfill, serial, "ship %s can only carry %d containers", s.label(), s.maxContainerCount)
		}
		if weight+c.GrossWeight() > s.maxWeightKg {
			return newError(ErrorOverfill, serial, "ship %s: adding %s would exceed %.1ft weight limit", s.label(), serial, s.maxWeightKg/1000)
		}
		count++
		weight += c.GrossWeight()
	}
	return nil
}

func (s *Ship) attach(c Container) {
	s.containers = append(s.containers, c)
	c.state().ship = s.id
}

func (s *Ship) detachAt(i int) Container {
	c := s.containers[i]
	s.containers = append(s.containers[:i], s.containers[i+1:]...)
	return c
}

func (s *Ship) notAboard(serial string) error {
	return newError(ErrorNotFound, serial, "container %s not found aboard ship %s", serial, s.label())
}

func (s *Ship) label() string {
	if s.name != "" {
		return s.name
	}
	return string(s.id)
}
