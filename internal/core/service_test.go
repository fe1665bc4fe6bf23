package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"cargofleet/pkg/domain"
)

func dims(tare, payload float64) domain.Dimensions {
	return domain.Dimensions{TareWeight: tare, Height: 250, Depth: 300, MaxPayload: payload}
}

func mustShip(t *testing.T, svc *Service, spec ShipSpec) domain.Manifest {
	t.Helper()
	m, err := svc.CreateShip(context.Background(), spec)
	if err != nil {
		t.Fatalf("create ship: %v", err)
	}
	return m
}

func mustLiquid(t *testing.T, svc *Service, tare float64, hazardous bool) domain.ContainerRecord {
	t.Helper()
	rec, err := svc.CreateLiquidContainer(context.Background(), dims(tare, 5000), hazardous)
	if err != nil {
		t.Fatalf("create liquid: %v", err)
	}
	return rec
}

func TestServiceCreateContainers(t *testing.T) {
	ctx := context.Background()
	svc := NewService()
	liquid := mustLiquid(t, svc, 1000, true)
	gas, err := svc.CreateGasContainer(ctx, dims(1500, 4000), 5)
	if err != nil {
		t.Fatalf("create gas: %v", err)
	}
	fridge, err := svc.CreateRefrigeratedContainer(ctx, dims(2000, 10000), "Bananas", 14)
	if err != nil {
		t.Fatalf("create refrigerated: %v", err)
	}
	if liquid.Serial != "KON-L-1" || gas.Serial != "KON-G-1" || fridge.Serial != "KON-C-1" {
		t.Fatalf("unexpected serials %s %s %s", liquid.Serial, gas.Serial, fridge.Serial)
	}
	if _, err := svc.CreateRefrigeratedContainer(ctx, dims(2000, 10000), "Fish", 1); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
	all, err := svc.Containers(ctx)
	if err != nil {
		t.Fatalf("containers: %v", err)
	}
	if len(all) != 3 || all[0].Serial != liquid.Serial || all[2].Serial != fridge.Serial {
		t.Fatalf("unexpected registry contents %+v", all)
	}
}

func TestServiceUnknownReferences(t *testing.T) {
	ctx := context.Background()
	svc := NewService()
	ship := mustShip(t, svc, ShipSpec{Name: "Alpha", MaxSpeed: 20, MaxContainerCount: 5, MaxWeightTons: 50})
	if _, err := svc.Ship(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found ship, got %v", err)
	}
	if _, err := svc.AddContainer(ctx, ship.ShipID, "KON-L-9"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found container, got %v", err)
	}
	if _, err := svc.LoadCargo(ctx, "KON-G-9", 1, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found container, got %v", err)
	}
	if err := svc.TransferContainer(ctx, ship.ShipID, "missing", "KON-L-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found destination, got %v", err)
	}
	if _, err := svc.CreateShip(ctx, ShipSpec{ID: ship.ShipID, MaxContainerCount: 1, MaxWeightTons: 1}); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("expected duplicate ship ID rejection, got %v", err)
	}
}

func TestServiceShipCountLimit(t *testing.T) {
	ctx := context.Background()
	svc := NewService()
	ship := mustShip(t, svc, ShipSpec{MaxSpeed: 10, MaxContainerCount: 1, MaxWeightTons: 100})
	c1 := mustLiquid(t, svc, 1000, false)
	c2 := mustLiquid(t, svc, 1000, false)
	if _, err := svc.AddContainer(ctx, ship.ShipID, c1.Serial); err != nil {
		t.Fatalf("add c1: %v", err)
	}
	if _, err := svc.AddContainer(ctx, ship.ShipID, c2.Serial); !errors.Is(err, domain.ErrOverfill) {
		t.Fatalf("expected overfill, got %v", err)
	}
	m, _ := svc.Ship(ctx, ship.ShipID)
	if len(m.Containers) != 1 {
		t.Fatalf("expected one container aboard, got %d", len(m.Containers))
	}
}

func TestServiceLoadCargoRespectsShipHeadroom(t *testing.T) {
	ctx := context.Background()
	svc := NewService()
	ship := mustShip(t, svc, ShipSpec{MaxSpeed: 10, MaxContainerCount: 2, MaxWeightTons: 2})
	c := mustLiquid(t, svc, 1000, false)
	if _, err := svc.AddContainer(ctx, ship.ShipID, c.Serial); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.LoadCargo(ctx, c.Serial, 1500, ""); !errors.Is(err, domain.ErrOverfill) {
		t.Fatalf("expected ship weight overfill, got %v", err)
	}
	rec, err := svc.LoadCargo(ctx, c.Serial, 1000, "")
	if err != nil {
		t.Fatalf("load within headroom: %v", err)
	}
	if rec.CargoMass != 1000 {
		t.Fatalf("expected 1000kg cargo, got %v", rec.CargoMass)
	}
	res, err := svc.Inspect(ctx)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if res.HasBlocking() {
		t.Fatalf("fleet should be consistent: %+v", res.Violations)
	}
}

func TestServiceHazardsReachSink(t *testing.T) {
	ctx := context.Background()
	var hazards []domain.Hazard
	svc := NewService(WithHazardSink(domain.HazardSinkFunc(func(h domain.Hazard) { hazards = append(hazards, h) })))
	c := mustLiquid(t, svc, 1000, true)
	if _, err := svc.LoadCargo(ctx, c.Serial, 3000, ""); !errors.Is(err, domain.ErrOverfill) {
		t.Fatalf("expected overfill, got %v", err)
	}
	if len(hazards) != 1 || hazards[0].Serial != c.Serial {
		t.Fatalf("expected hazard for %s, got %+v", c.Serial, hazards)
	}
	rec, _ := svc.Container(ctx, c.Serial)
	if rec.CargoMass != 0 {
		t.Fatalf("failed load changed cargo to %v", rec.CargoMass)
	}
}

func TestServiceHazardNotSuppressedByShipHeadroom(t *testing.T) {
	ctx := context.Background()
	var hazards int
	svc := NewService(WithHazardSink(domain.HazardSinkFunc(func(domain.Hazard) { hazards++ })))
	ship := mustShip(t, svc, ShipSpec{MaxContainerCount: 1, MaxWeightTons: 1.5})
	c, err := svc.CreateGasContainer(ctx, dims(1000, 1000), 3)
	if err != nil {
		t.Fatalf("create gas: %v", err)
	}
	if _, err := svc.AddContainer(ctx, ship.ShipID, c.Serial); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.LoadCargo(ctx, c.Serial, 2000, ""); !errors.Is(err, domain.ErrOverfill) {
		t.Fatalf("expected overfill, got %v", err)
	}
	if hazards != 1 {
		t.Fatalf("container overfill must still notify, got %d notifications", hazards)
	}
}

func TestServiceEmptyAndTemperature(t *testing.T) {
	ctx := context.Background()
	svc := NewService()
	gas, _ := svc.CreateGasContainer(ctx, dims(1000, 2000), 4)
	fridge, _ := svc.CreateRefrigeratedContainer(ctx, dims(1000, 2000), "Meat", -10)
	if _, err := svc.LoadCargo(ctx, gas.Serial, 1000, ""); err != nil {
		t.Fatalf("load gas: %v", err)
	}
	rec, err := svc.EmptyContainer(ctx, gas.Serial)
	if err != nil || rec.CargoMass != 50 {
		t.Fatalf("expected 50kg residue, got %v (%v)", rec.CargoMass, err)
	}
	if _, err := svc.SetTemperature(ctx, gas.Serial, 5); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration for gas, got %v", err)
	}
	if _, err := svc.SetTemperature(ctx, fridge.Serial, -20); !errors.Is(err, domain.ErrTemperatureViolation) {
		t.Fatalf("expected temperature violation, got %v", err)
	}
	if rec, err := svc.SetTemperature(ctx, fridge.Serial, -15); err != nil || rec.Temperature != -15 {
		t.Fatalf("expected -15°C, got %v (%v)", rec.Temperature, err)
	}
	if _, err := svc.LoadCargo(ctx, fridge.Serial, 100, "Fish"); !errors.Is(err, domain.ErrProductMismatch) {
		t.Fatalf("expected product mismatch, got %v", err)
	}
}

func TestServiceTransferReplaceRelease(t *testing.T) {
	ctx := context.Background()
	svc := NewService()
	alpha := mustShip(t, svc, ShipSpec{Name: "Alpha", MaxSpeed: 20, MaxContainerCount: 3, MaxWeightTons: 20})
	beta := mustShip(t, svc, ShipSpec{Name: "Beta", MaxSpeed: 25, MaxContainerCount: 1, MaxWeightTons: 20})
	c1 := mustLiquid(t, svc, 1000, false)
	c2 := mustLiquid(t, svc, 1000, false)
	c3 := mustLiquid(t, svc, 1000, false)
	if _, err := svc.AddContainers(ctx, alpha.ShipID, []string{c1.Serial, c2.Serial}); err != nil {
		t.Fatalf("add many: %v", err)
	}
	if err := svc.TransferContainer(ctx, alpha.ShipID, beta.ShipID, c1.Serial); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := svc.TransferContainer(ctx, alpha.ShipID, beta.ShipID, c2.Serial); !errors.Is(err, domain.ErrOverfill) {
		t.Fatalf("expected overfill on full destination, got %v", err)
	}
	rec, _ := svc.Container(ctx, c2.Serial)
	if rec.ShipID != alpha.ShipID {
		t.Fatalf("failed transfer moved container to %q", rec.ShipID)
	}

	old, err := svc.ReplaceContainer(ctx, beta.ShipID, c1.Serial, c3.Serial)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if old.Serial != c1.Serial || old.ShipID != "" {
		t.Fatalf("unexpected replaced record %+v", old)
	}
	if _, err := svc.RemoveContainer(ctx, beta.ShipID, c1.Serial); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after replace, got %v", err)
	}

	released, err := svc.ReleaseShip(ctx, alpha.ShipID)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if len(released) != 1 || released[0].Serial != c2.Serial || released[0].ShipID != "" {
		t.Fatalf("unexpected released records %+v", released)
	}
	ships, _ := svc.Ships(ctx)
	if len(ships) != 1 || ships[0].ShipID != beta.ShipID {
		t.Fatalf("expected only beta to remain, got %+v", ships)
	}
	if _, err := svc.AddContainer(ctx, beta.ShipID, c2.Serial); !errors.Is(err, domain.ErrOverfill) {
		t.Fatalf("released container should be free but beta is full, got %v", err)
	}
}

func TestServiceConcurrentAddsRespectLimits(t *testing.T) {
	ctx := context.Background()
	svc := NewService()
	ship := mustShip(t, svc, ShipSpec{MaxContainerCount: 10, MaxWeightTons: 1000})
	const workers = 40
	serials := make([]string, workers)
	for i := range serials {
		serials[i] = mustLiquid(t, svc, 100, false).Serial
	}
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ok  int
		bad []error
	)
	for _, serial := range serials {
		wg.Add(1)
		go func(serial string) {
			defer wg.Done()
			_, err := svc.AddContainer(ctx, ship.ShipID, serial)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case !errors.Is(err, domain.ErrOverfill):
				bad = append(bad, fmt.Errorf("%s: %w", serial, err))
			}
		}(serial)
	}
	wg.Wait()
	if len(bad) > 0 {
		t.Fatalf("unexpected errors: %v", bad)
	}
	m, _ := svc.Ship(ctx, ship.ShipID)
	if ok != 10 || len(m.Containers) != 10 {
		t.Fatalf("expected exactly 10 containers aboard, got ok=%d aboard=%d", ok, len(m.Containers))
	}
}

func TestServiceSharedSerialRegistry(t *testing.T) {
	serials := domain.NewSerialRegistry()
	a := NewService(WithSerialRegistry(serials))
	b := NewService(WithSerialRegistry(serials))
	ca := mustLiquid(t, a, 1, false)
	cb := mustLiquid(t, b, 1, false)
	if ca.Serial == cb.Serial {
		t.Fatalf("shared registry issued %s twice", ca.Serial)
	}
}
