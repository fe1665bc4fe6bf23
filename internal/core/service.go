// Package core hosts the fleet service: the single entry point that owns ships
// and containers, serialises access to them and instruments every operation.
package core

import (
	"context"
	"math"
	"sync"
	"time"

	"cargofleet/pkg/domain"
)

// Service owns a fleet of ships and the containers built for it. All
// operations are serialised by a single mutex.
type Service struct {
	mu         sync.Mutex
	opts       serviceOptions
	engine     *domain.RulesEngine
	factory    *domain.Factory
	ships      map[domain.ShipID]*domain.Ship
	shipOrder  []domain.ShipID
	containers map[string]domain.Container
	serials    []string
}

// NewService constructs an empty fleet.
func NewService(opts ...ServiceOption) *Service {
	options := defaultServiceOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	engine := options.engine
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	s := &Service{
		opts:       options,
		engine:     engine,
		ships:      make(map[domain.ShipID]*domain.Ship),
		containers: make(map[string]domain.Container),
	}
	s.factory = domain.NewFactory(options.serials, hazardRelay{logger: options.logger, next: options.hazards})
	return s
}

// RulesEngine returns the engine used for verification.
func (s *Service) RulesEngine() *domain.RulesEngine {
	return s.engine
}

// hazardRelay logs every hazard before forwarding it to the configured sink.
type hazardRelay struct {
	logger Logger
	next   domain.HazardSink
}

func (h hazardRelay) Report(hz domain.Hazard) {
	h.logger.Warn("container hazard", "serial", hz.Serial, "kind", string(hz.Kind), "message", hz.Message)
	if h.next != nil {
		h.next.Report(hz)
	}
}

type operation struct {
	name    string
	entity  domain.EntityType
	action  string
	mutates bool
}

// run wraps fn in a span, times it, records metrics and audit, and after a
// successful mutation re-runs the rules over the fleet.
func (s *Service) run(ctx context.Context, op operation, fn func() (string, error)) error {
	ctx, span := s.opts.tracer.Start(ctx, op.name)
	start := s.opts.clock.Now()

	s.mu.Lock()
	entityID, err := fn()
	if err == nil && op.mutates {
		s.verifyLocked(ctx, op.name)
	}
	s.mu.Unlock()

	duration := s.opts.clock.Now().Sub(start)
	s.opts.metrics.Observe(ctx, op.name, err == nil, duration)
	entry := AuditEntry{
		Operation: op.name,
		Entity:    string(op.entity),
		Action:    op.action,
		EntityID:  entityID,
		Status:    AuditStatusSuccess,
		Duration:  duration,
		Timestamp: start,
	}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Error = err.Error()
		s.opts.logger.Warn("operation failed", "operation", op.name, "entity_id", entityID, "error", err, "error_kind", string(domain.KindOf(err)))
	} else {
		s.opts.logger.Debug("operation completed", "operation", op.name, "entity_id", entityID, "duration", duration)
	}
	s.opts.audit.Record(ctx, entry)
	span.End(err)
	return err
}

// verifyLocked evaluates the rules engine over the current fleet and logs
// any findings. Violations never undo the operation that exposed them.
func (s *Service) verifyLocked(ctx context.Context, opName string) {
	res, err := s.engine.Evaluate(ctx, s.viewLocked())
	if err != nil {
		s.opts.logger.Error("rule evaluation failed", "operation", opName, "error", err)
		return
	}
	for _, v := range res.Violations {
		s.opts.logger.Warn("rule violation",
			"operation", opName,
			"rule", v.Rule,
			"severity", string(v.Severity),
			"entity", string(v.Entity),
			"entity_id", v.EntityID,
			"message", v.Message,
		)
	}
}

func (s *Service) viewLocked() domain.FleetView {
	view := domain.FleetView{Manifests: make([]domain.Manifest, 0, len(s.shipOrder))}
	for _, id := range s.shipOrder {
		view.Manifests = append(view.Manifests, s.ships[id].Manifest())
	}
	for _, serial := range s.serials {
		c := s.containers[serial]
		if c.ShipID() == "" {
			view.Unassigned = append(view.Unassigned, domain.Snapshot(c))
		}
	}
	return view
}

func (s *Service) shipLocked(id domain.ShipID) (*domain.Ship, error) {
	ship, ok := s.ships[id]
	if !ok {
		return nil, domain.Errorf(domain.ErrorNotFound, "", "ship %s not found", id)
	}
	return ship, nil
}

func (s *Service) containerLocked(serial string) (domain.Container, error) {
	c, ok := s.containers[serial]
	if !ok {
		return nil, domain.Errorf(domain.ErrorNotFound, serial, "container %s not found", serial)
	}
	return c, nil
}

func (s *Service) registerLocked(c domain.Container) domain.ContainerRecord {
	s.containers[c.SerialNumber()] = c
	s.serials = append(s.serials, c.SerialNumber())
	return domain.Snapshot(c)
}

var (
	opCreateLiquid       = operation{name: "create_liquid_container", entity: domain.EntityContainer, action: "create", mutates: true}
	opCreateGas          = operation{name: "create_gas_container", entity: domain.EntityContainer, action: "create", mutates: true}
	opCreateRefrigerated = operation{name: "create_refrigerated_container", entity: domain.EntityContainer, action: "create", mutates: true}
	opCreateShip         = operation{name: "create_ship", entity: domain.EntityShip, action: "create", mutates: true}
	opLoadCargo          = operation{name: "load_cargo", entity: domain.EntityContainer, action: "load", mutates: true}
	opEmptyContainer     = operation{name: "empty_container", entity: domain.EntityContainer, action: "empty", mutates: true}
	opSetTemperature     = operation{name: "set_temperature", entity: domain.EntityContainer, action: "update", mutates: true}
	opAddContainer       = operation{name: "add_container", entity: domain.EntityShip, action: "add", mutates: true}
	opAddContainers      = operation{name: "add_containers", entity: domain.EntityShip, action: "add", mutates: true}
	opRemoveContainer    = operation{name: "remove_container", entity: domain.EntityShip, action: "remove", mutates: true}
	opReplaceContainer   = operation{name: "replace_container", entity: domain.EntityShip, action: "replace", mutates: true}
	opTransferContainer  = operation{name: "transfer_container", entity: domain.EntityContainer, action: "transfer", mutates: true}
	opReleaseShip        = operation{name: "release_ship", entity: domain.EntityShip, action: "delete", mutates: true}
	opGetShip            = operation{name: "get_ship", entity: domain.EntityShip, action: "read"}
	opListShips          = operation{name: "list_ships", entity: domain.EntityShip, action: "read"}
	opGetContainer       = operation{name: "get_container", entity: domain.EntityContainer, action: "read"}
	opListContainers     = operation{name: "list_containers", entity: domain.EntityContainer, action: "read"}
	opInspect            = operation{name: "inspect", entity: domain.EntityShip, action: "verify"}
)

// CreateLiquidContainer builds and registers a liquid container.
func (s *Service) CreateLiquidContainer(ctx context.Context, dims domain.Dimensions, hazardous bool) (domain.ContainerRecord, error) {
	var rec domain.ContainerRecord
	err := s.run(ctx, opCreateLiquid, func() (string, error) {
		c, err := s.factory.NewLiquidContainer(dims, hazardous)
		if err != nil {
			return "", err
		}
		rec = s.registerLocked(c)
		return rec.Serial, nil
	})
	return rec, err
}

// CreateGasContainer builds and registers a gas container.
func (s *Service) CreateGasContainer(ctx context.Context, dims domain.Dimensions, pressure float64) (domain.ContainerRecord, error) {
	var rec domain.ContainerRecord
	err := s.run(ctx, opCreateGas, func() (string, error) {
		c, err := s.factory.NewGasContainer(dims, pressure)
		if err != nil {
			return "", err
		}
		rec = s.registerLocked(c)
		return rec.Serial, nil
	})
	return rec, err
}

// CreateRefrigeratedContainer builds and registers a refrigerated container.
func (s *Service) CreateRefrigeratedContainer(ctx context.Context, dims domain.Dimensions, product string, temperature float64) (domain.ContainerRecord, error) {
	var rec domain.ContainerRecord
	err := s.run(ctx, opCreateRefrigerated, func() (string, error) {
		c, err := s.factory.NewRefrigeratedContainer(dims, product, temperature)
		if err != nil {
			return "", err
		}
		rec = s.registerLocked(c)
		return rec.Serial, nil
	})
	return rec, err
}

// ShipSpec describes a ship to create. MaxWeightTons is converted to kilograms.
type ShipSpec struct {
	ID                domain.ShipID
	Name              string
	MaxSpeed          float64
	MaxContainerCount int
	MaxWeightTons     float64
}

// CreateShip adds an empty ship to the fleet.
func (s *Service) CreateShip(ctx context.Context, spec ShipSpec) (domain.Manifest, error) {
	var m domain.Manifest
	err := s.run(ctx, opCreateShip, func() (string, error) {
		if spec.MaxContainerCount < 0 || spec.MaxWeightTons < 0 || math.IsNaN(spec.MaxWeightTons) || math.IsNaN(spec.MaxSpeed) {
			return string(spec.ID), domain.Errorf(domain.ErrorInvalidConfiguration, "", "ship limits must be non-negative numbers")
		}
		if _, exists := s.ships[spec.ID]; spec.ID != "" && exists {
			return string(spec.ID), domain.Errorf(domain.ErrorInvalidConfiguration, "", "ship %s already exists", spec.ID)
		}
		ship := domain.NewShip(spec.MaxSpeed, spec.MaxContainerCount, spec.MaxWeightTons,
			domain.WithShipID(spec.ID), domain.WithShipName(spec.Name))
		s.ships[ship.ID()] = ship
		s.shipOrder = append(s.shipOrder, ship.ID())
		m = ship.Manifest()
		return string(ship.ID()), nil
	})
	return m, err
}

// LoadCargo loads mass into a container. product is required for
// refrigerated containers and ignored otherwise. A container already aboard
// a ship may only take cargo the ship has weight headroom for.
func (s *Service) LoadCargo(ctx context.Context, serial string, mass float64, product string) (domain.ContainerRecord, error) {
	var rec domain.ContainerRecord
	err := s.run(ctx, opLoadCargo, func() (string, error) {
		c, err := s.containerLocked(serial)
		if err != nil {
			return serial, err
		}
		if owner := c.ShipID(); owner != "" && fitsContainer(c, mass, product) {
			if ship, ok := s.ships[owner]; ok && mass > ship.WeightHeadroom() {
				return serial, domain.Errorf(domain.ErrorOverfill, serial,
					"container %s: loading %gkg would exceed ship %s weight limit by %gkg",
					serial, mass, shipLabel(ship), mass-ship.WeightHeadroom())
			}
		}
		if err := domain.Load(c, mass, product); err != nil {
			return serial, err
		}
		rec = domain.Snapshot(c)
		return serial, nil
	})
	return rec, err
}

// EmptyContainer purges a container according to its kind.
func (s *Service) EmptyContainer(ctx context.Context, serial string) (domain.ContainerRecord, error) {
	var rec domain.ContainerRecord
	err := s.run(ctx, opEmptyContainer, func() (string, error) {
		c, err := s.containerLocked(serial)
		if err != nil {
			return serial, err
		}
		c.Empty()
		rec = domain.Snapshot(c)
		return serial, nil
	})
	return rec, err
}

// SetTemperature changes the temperature of a refrigerated container.
func (s *Service) SetTemperature(ctx context.Context, serial string, temperature float64) (domain.ContainerRecord, error) {
	var rec domain.ContainerRecord
	err := s.run(ctx, opSetTemperature, func() (string, error) {
		c, err := s.containerLocked(serial)
		if err != nil {
			return serial, err
		}
		fridge, ok := c.(*domain.RefrigeratedContainer)
		if !ok {
			return serial, domain.Errorf(domain.ErrorInvalidConfiguration, serial, "container %s is not refrigerated", serial)
		}
		if err := fridge.SetTemperature(temperature); err != nil {
			return serial, err
		}
		rec = domain.Snapshot(c)
		return serial, nil
	})
	return rec, err
}

// AddContainer boards one registered container onto a ship.
func (s *Service) AddContainer(ctx context.Context, shipID domain.ShipID, serial string) (domain.Manifest, error) {
	var m domain.Manifest
	err := s.run(ctx, opAddContainer, func() (string, error) {
		ship, err := s.shipLocked(shipID)
		if err != nil {
			return string(shipID), err
		}
		c, err := s.containerLocked(serial)
		if err != nil {
			return string(shipID), err
		}
		if err := ship.AddContainer(c); err != nil {
			return string(shipID), err
		}
		m = ship.Manifest()
		return string(shipID), nil
	})
	return m, err
}

// AddContainers boards every listed container or none of them.
func (s *Service) AddContainers(ctx context.Context, shipID domain.ShipID, serials []string) (domain.Manifest, error) {
	var m domain.Manifest
	err := s.run(ctx, opAddContainers, func() (string, error) {
		ship, err := s.shipLocked(shipID)
		if err != nil {
			return string(shipID), err
		}
		batch := make([]domain.Container, 0, len(serials))
		for _, serial := range serials {
			c, err := s.containerLocked(serial)
			if err != nil {
				return string(shipID), err
			}
			batch = append(batch, c)
		}
		if err := ship.AddContainers(batch); err != nil {
			return string(shipID), err
		}
		m = ship.Manifest()
		return string(shipID), nil
	})
	return m, err
}

// RemoveContainer unloads a container from a ship. The container stays in the
// fleet, unassigned.
func (s *Service) RemoveContainer(ctx context.Context, shipID domain.ShipID, serial string) (domain.ContainerRecord, error) {
	var rec domain.ContainerRecord
	err := s.run(ctx, opRemoveContainer, func() (string, error) {
		ship, err := s.shipLocked(shipID)
		if err != nil {
			return string(shipID), err
		}
		c, err := ship.RemoveContainer(serial)
		if err != nil {
			return string(shipID), err
		}
		rec = domain.Snapshot(c)
		return string(shipID), nil
	})
	return rec, err
}

// ReplaceContainer swaps oldSerial aboard shipID for newSerial and returns the
// record of the container taken off.
func (s *Service) ReplaceContainer(ctx context.Context, shipID domain.ShipID, oldSerial, newSerial string) (domain.ContainerRecord, error) {
	var rec domain.ContainerRecord
	err := s.run(ctx, opReplaceContainer, func() (string, error) {
		ship, err := s.shipLocked(shipID)
		if err != nil {
			return string(shipID), err
		}
		replacement, err := s.containerLocked(newSerial)
		if err != nil {
			return string(shipID), err
		}
		old, err := ship.ReplaceContainer(oldSerial, replacement)
		if err != nil {
			return string(shipID), err
		}
		rec = domain.Snapshot(old)
		return string(shipID), nil
	})
	return rec, err
}

// TransferContainer moves a container between two ships of the fleet.
func (s *Service) TransferContainer(ctx context.Context, from, to domain.ShipID, serial string) error {
	return s.run(ctx, opTransferContainer, func() (string, error) {
		source, err := s.shipLocked(from)
		if err != nil {
			return serial, err
		}
		destination, err := s.shipLocked(to)
		if err != nil {
			return serial, err
		}
		return serial, domain.TransferContainer(source, destination, serial)
	})
}

// ReleaseShip removes a ship from the fleet. Its containers are detached and
// stay registered.
func (s *Service) ReleaseShip(ctx context.Context, shipID domain.ShipID) ([]domain.ContainerRecord, error) {
	var released []domain.ContainerRecord
	err := s.run(ctx, opReleaseShip, func() (string, error) {
		ship, err := s.shipLocked(shipID)
		if err != nil {
			return string(shipID), err
		}
		for _, c := range ship.Release() {
			released = append(released, domain.Snapshot(c))
		}
		delete(s.ships, shipID)
		for i, id := range s.shipOrder {
			if id == shipID {
				s.shipOrder = append(s.shipOrder[:i], s.shipOrder[i+1:]...)
				break
			}
		}
		return string(shipID), nil
	})
	return released, err
}

// Ship returns the manifest of a ship.
func (s *Service) Ship(ctx context.Context, shipID domain.ShipID) (domain.Manifest, error) {
	var m domain.Manifest
	err := s.run(ctx, opGetShip, func() (string, error) {
		ship, err := s.shipLocked(shipID)
		if err != nil {
			return string(shipID), err
		}
		m = ship.Manifest()
		return string(shipID), nil
	})
	return m, err
}

// Ships returns every manifest in creation order.
func (s *Service) Ships(ctx context.Context) ([]domain.Manifest, error) {
	var out []domain.Manifest
	err := s.run(ctx, opListShips, func() (string, error) {
		out = s.viewLocked().Manifests
		return "", nil
	})
	return out, err
}

// Container returns the current state of a container.
func (s *Service) Container(ctx context.Context, serial string) (domain.ContainerRecord, error) {
	var rec domain.ContainerRecord
	err := s.run(ctx, opGetContainer, func() (string, error) {
		c, err := s.containerLocked(serial)
		if err != nil {
			return serial, err
		}
		rec = domain.Snapshot(c)
		return serial, nil
	})
	return rec, err
}

// Containers returns every registered container in creation order.
func (s *Service) Containers(ctx context.Context) ([]domain.ContainerRecord, error) {
	var out []domain.ContainerRecord
	err := s.run(ctx, opListContainers, func() (string, error) {
		out = make([]domain.ContainerRecord, 0, len(s.serials))
		for _, serial := range s.serials {
			out = append(out, domain.Snapshot(s.containers[serial]))
		}
		return "", nil
	})
	return out, err
}

// Inspect evaluates the rules engine over the whole fleet.
func (s *Service) Inspect(ctx context.Context) (domain.Result, error) {
	var res domain.Result
	err := s.run(ctx, opInspect, func() (string, error) {
		var err error
		res, err = s.engine.Evaluate(ctx, s.viewLocked())
		return "", err
	})
	return res, err
}

// Now exposes the service clock so collaborators stamp records consistently.
func (s *Service) Now() time.Time {
	return s.opts.clock.Now()
}

// fitsContainer reports whether the container itself would accept the load,
// leaving container-level failures and their hazard notifications to the domain.
func fitsContainer(c domain.Container, mass float64, product string) bool {
	if mass < 0 || math.IsNaN(mass) || math.IsInf(mass, 0) {
		return false
	}
	if fridge, ok := c.(*domain.RefrigeratedContainer); ok && fridge.Product() != product {
		return false
	}
	return c.CargoMass()+mass <= c.Ceiling()
}

func shipLabel(ship *domain.Ship) string {
	if ship.Name() != "" {
		return ship.Name()
	}
	return string(ship.ID())
}
