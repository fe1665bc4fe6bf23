package domain

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func newTestLiquid(t *testing.T, f *Factory, tare float64) *LiquidContainer {
	t.Helper()
	c, err := f.NewLiquidContainer(dims(tare, 5000), false)
	if err != nil {
		t.Fatalf("new liquid: %v", err)
	}
	return c
}

func serials(cs []Container) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.SerialNumber())
	}
	return out
}

func TestNewShipConvertsTons(t *testing.T) {
	s := NewShip(20, 5, 50, WithShipName("Alpha"))
	if s.MaxWeightKg() != 50000 {
		t.Fatalf("expected 50000kg, got %v", s.MaxWeightKg())
	}
	if s.ID() == "" || s.Name() != "Alpha" || s.MaxSpeed() != 20 || s.MaxContainerCount() != 5 || s.Len() != 0 {
		t.Fatalf("unexpected ship attributes: %+v", s.Manifest())
	}
	if other := NewShip(20, 5, 50); other.ID() == s.ID() {
		t.Fatalf("expected distinct generated IDs")
	}
	if fixed := NewShip(1, 1, 1, WithShipID("fixed")); fixed.ID() != "fixed" {
		t.Fatalf("expected explicit ID, got %s", fixed.ID())
	}
}

func TestAddContainerCountLimit(t *testing.T) {
	f := NewFactory(nil, nil)
	s := NewShip(20, 1, 100)
	c1 := newTestLiquid(t, f, 1000)
	c2 := newTestLiquid(t, f, 1000)
	if err := s.AddContainer(c1); err != nil {
		t.Fatalf("add first: %v", err)
	}
	if c1.ShipID() != s.ID() {
		t.Fatalf("expected back-reference to ship")
	}
	if err := s.AddContainer(c2); !errors.Is(err, ErrOverfill) {
		t.Fatalf("expected overfill, got %v", err)
	}
	if s.Len() != 1 || c2.ShipID() != "" {
		t.Fatalf("rejected container must stay unassigned, len=%d owner=%q", s.Len(), c2.ShipID())
	}
}

func TestAddContainerWeightLimit(t *testing.T) {
	f := NewFactory(nil, nil)
	s := NewShip(20, 10, 3)
	c1 := newTestLiquid(t, f, 1000)
	if err := c1.LoadCargo(1000); err != nil {
		t.Fatalf("load: %v", err)
	}
	c2 := newTestLiquid(t, f, 1000)
	c3 := newTestLiquid(t, f, 1001)
	if err := s.AddContainer(c1); err != nil {
		t.Fatalf("add c1: %v", err)
	}
	if err := s.AddContainer(c3); !errors.Is(err, ErrOverfill) {
		t.Fatalf("expected weight overfill, got %v", err)
	}
	if err := s.AddContainer(c2); err != nil {
		t.Fatalf("exactly reaching the limit is allowed: %v", err)
	}
	if s.TotalWeight() != 3000 {
		t.Fatalf("expected 3000kg aboard, got %v", s.TotalWeight())
	}
}

func TestAddContainerAlreadyAssigned(t *testing.T) {
	f := NewFactory(nil, nil)
	a := NewShip(20, 5, 50)
	b := NewShip(20, 5, 50)
	c := newTestLiquid(t, f, 1000)
	if err := a.AddContainer(c); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := b.AddContainer(c); !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("expected already assigned, got %v", err)
	}
	if err := a.AddContainer(c); !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("expected already assigned on same ship, got %v", err)
	}
	if b.Len() != 0 || c.ShipID() != a.ID() {
		t.Fatalf("ownership changed on failed add")
	}
}

func TestAddContainersAllOrNothing(t *testing.T) {
	f := NewFactory(nil, nil)
	cases := []struct {
		name    string
		ship    func() *Ship
		batch   func(t *testing.T) []Container
		wantErr error
	}{
		{
			name: "cumulative count",
			ship: func() *Ship { return NewShip(20, 2, 100) },
			batch: func(t *testing.T) []Container {
				return []Container{newTestLiquid(t, f, 1), newTestLiquid(t, f, 1), newTestLiquid(t, f, 1)}
			},
			wantErr: ErrOverfill,
		},
		{
			name: "cumulative weight",
			ship: func() *Ship { return NewShip(20, 10, 2.5) },
			batch: func(t *testing.T) []Container {
				return []Container{newTestLiquid(t, f, 1000), newTestLiquid(t, f, 1000), newTestLiquid(t, f, 1000)}
			},
			wantErr: ErrOverfill,
		},
		{
			name: "owned member",
			ship: func() *Ship { return NewShip(20, 10, 100) },
			batch: func(t *testing.T) []Container {
				owned := newTestLiquid(t, f, 1)
				if err := NewShip(1, 1, 1).AddContainer(owned); err != nil {
					t.Fatalf("pre-assign: %v", err)
				}
				return []Container{newTestLiquid(t, f, 1), owned}
			},
			wantErr: ErrAlreadyAssigned,
		},
		{
			name: "duplicate member",
			ship: func() *Ship { return NewShip(20, 10, 100) },
			batch: func(t *testing.T) []Container {
				c := newTestLiquid(t, f, 1)
				return []Container{c, c}
			},
			wantErr: ErrAlreadyAssigned,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.ship()
			batch := tc.batch(t)
			err := s.AddContainers(batch)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if s.Len() != 0 {
				t.Fatalf("partial load: %v", serials(s.Containers()))
			}
			for _, c := range batch {
				if c.ShipID() == s.ID() {
					t.Fatalf("container %s left pointing at rejecting ship", c.SerialNumber())
				}
			}
		})
	}
}

func TestAddContainersPreservesOrder(t *testing.T) {
	f := NewFactory(nil, nil)
	s := NewShip(20, 5, 50)
	batch := []Container{newTestLiquid(t, f, 1000), newTestLiquid(t, f, 1000), newTestLiquid(t, f, 1000)}
	if err := s.AddContainers(batch); err != nil {
		t.Fatalf("add batch: %v", err)
	}
	got := serials(s.Containers())
	want := serials(batch)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected load order %v, got %v", want, got)
		}
	}
}

func TestRemoveContainer(t *testing.T) {
	f := NewFactory(nil, nil)
	s := NewShip(20, 5, 50)
	c := newTestLiquid(t, f, 1000)
	if err := s.AddContainer(c); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.RemoveContainer("KON-L-999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	removed, err := s.RemoveContainer(c.SerialNumber())
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed != c || c.ShipID() != "" || s.Len() != 0 {
		t.Fatalf("remove did not detach container")
	}
	if err := NewShip(1, 1, 10).AddContainer(c); err != nil {
		t.Fatalf("removed container should be reusable: %v", err)
	}
}

func TestReplaceContainerUsesPostRemovalCapacity(t *testing.T) {
	f := NewFactory(nil, nil)
	s := NewShip(20, 2, 3)
	keep := newTestLiquid(t, f, 1000)
	old := newTestLiquid(t, f, 1500)
	if err := s.AddContainers([]Container{keep, old}); err != nil {
		t.Fatalf("add: %v", err)
	}
	// Full by count and 2.5t of 3t used: the replacement only fits once old is gone.
	repl := newTestLiquid(t, f, 2000)
	gotOld, err := s.ReplaceContainer(old.SerialNumber(), repl)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if gotOld != old || old.ShipID() != "" || repl.ShipID() != s.ID() {
		t.Fatalf("ownership not swapped")
	}
	got := serials(s.Containers())
	if len(got) != 2 || got[0] != keep.SerialNumber() || got[1] != repl.SerialNumber() {
		t.Fatalf("unexpected containers after replace: %v", got)
	}
}

func TestReplaceContainerFailuresLeaveShipUntouched(t *testing.T) {
	f := NewFactory(nil, nil)
	s := NewShip(20, 2, 3)
	old := newTestLiquid(t, f, 1000)
	if err := s.AddContainer(old); err != nil {
		t.Fatalf("add: %v", err)
	}
	tooHeavy := newTestLiquid(t, f, 3001)
	if _, err := s.ReplaceContainer(old.SerialNumber(), tooHeavy); !errors.Is(err, ErrOverfill) {
		t.Fatalf("expected overfill, got %v", err)
	}
	if _, err := s.ReplaceContainer("KON-L-404", newTestLiquid(t, f, 1)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.ReplaceContainer(old.SerialNumber(), old); !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("expected already assigned, got %v", err)
	}
	if s.Len() != 1 || old.ShipID() != s.ID() || tooHeavy.ShipID() != "" {
		t.Fatalf("failed replace mutated state")
	}
}

func TestReplaceContainerNeverExceedsWeightLimit(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	f := NewFactory(nil, nil)
	for i := 0; i < 2000; i++ {
		old := newTestLiquid(t, f, 1+r.Float64()*1000)
		keep := newTestLiquid(t, f, 1+r.Float64()*1000)
		repl := newTestLiquid(t, f, 1+r.Float64()*1000)
		// limit sits exactly on total - old + new, where rounding differs most
		limitKg := (old.GrossWeight() + keep.GrossWeight()) - old.GrossWeight() + repl.GrossWeight()
		s := NewShip(20, 2, limitKg/1000)
		if err := s.AddContainers([]Container{old, keep}); err != nil {
			continue
		}
		if _, err := s.ReplaceContainer(old.SerialNumber(), repl); err != nil {
			continue
		}
		if s.TotalWeight() > s.MaxWeightKg() {
			t.Fatalf("iteration %d: replace accepted at %v over limit %v", i, s.TotalWeight(), s.MaxWeightKg())
		}
	}
}

func TestReplaceContainerChecksAssignmentFirst(t *testing.T) {
	f := NewFactory(nil, nil)
	s := NewShip(20, 2, 10)
	other := NewShip(20, 2, 10)
	aboardOther := newTestLiquid(t, f, 100)
	if err := other.AddContainer(aboardOther); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err := s.ReplaceContainer("KON-L-404", aboardOther)
	if !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("expected already assigned, got %v", err)
	}
	if aboardOther.ShipID() != other.ID() {
		t.Fatalf("failed replace moved the container")
	}
}

func TestTotalWeightTracksLiveCargo(t *testing.T) {
	f := NewFactory(nil, nil)
	s := NewShip(20, 5, 50)
	c := newTestLiquid(t, f, 1000)
	if err := s.AddContainer(c); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.LoadCargo(500); err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.TotalWeight() != 1500 {
		t.Fatalf("expected 1500kg, got %v", s.TotalWeight())
	}
	if s.WeightHeadroom() != 48500 {
		t.Fatalf("expected 48500kg headroom, got %v", s.WeightHeadroom())
	}
}

func TestReleaseDetachesEverything(t *testing.T) {
	f := NewFactory(nil, nil)
	s := NewShip(20, 5, 50)
	batch := []Container{newTestLiquid(t, f, 1000), newTestLiquid(t, f, 1000)}
	if err := s.AddContainers(batch); err != nil {
		t.Fatalf("add: %v", err)
	}
	released := s.Release()
	if len(released) != 2 || s.Len() != 0 {
		t.Fatalf("expected two released containers and an empty ship")
	}
	for _, c := range batch {
		if c.ShipID() != "" {
			t.Fatalf("%s still references released ship", c.SerialNumber())
		}
	}
}

func TestManifestSnapshot(t *testing.T) {
	f := NewFactory(nil, nil)
	s := NewShip(25, 10, 100, WithShipName("Beta"))
	fridge, _ := f.NewRefrigeratedContainer(dims(2000, 10000), "Bananas", 14)
	gas, _ := f.NewGasContainer(dims(1500, 4000), 5)
	if err := s.AddContainers([]Container{fridge, gas}); err != nil {
		t.Fatalf("add: %v", err)
	}
	m := s.Manifest()
	if m.Label() != "Beta" || m.TotalWeightKg != 3500 || len(m.Containers) != 2 {
		t.Fatalf("unexpected manifest: %+v", m)
	}
	if m.Containers[0].Product != "Bananas" || m.Containers[0].Temperature != 14 || m.Containers[0].ShipID != s.ID() {
		t.Fatalf("unexpected refrigerated record: %+v", m.Containers[0])
	}
	if m.Containers[1].Pressure != 5 || m.Containers[1].Kind != KindGas {
		t.Fatalf("unexpected gas record: %+v", m.Containers[1])
	}
}
