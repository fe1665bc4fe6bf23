package scenario

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cargofleet/internal/blob"
	"cargofleet/internal/core"
	"cargofleet/internal/manifest"
	"cargofleet/pkg/domain"
)

// ErrExportDisabled is returned by export steps when the runner has no
// exporter.
var ErrExportDisabled = errors.New("manifest export is not configured")

// Reporter receives the outcome of every step.
type Reporter interface {
	Section(title string)
	Done(index int, op, message string)
	Failed(index int, op string, err error)
	Ship(report ShipReport)
	Container(report ContainerReport)
	Inspection(result domain.Result)
	Exported(objects []blob.Object)
}

// Summary counts step outcomes. Sections are not counted.
type Summary struct {
	Steps  int
	Failed int
}

// Runner executes scenarios against one fleet. Aliases persist across Run
// calls on the same Runner.
type Runner struct {
	svc        *core.Service
	reporter   Reporter
	exporter   *manifest.Exporter
	logger     core.Logger
	containers map[string]string
	ships      map[string]domain.ShipID
}

// RunnerOption customises a Runner.
type RunnerOption func(*Runner)

// WithExporter enables export steps.
func WithExporter(exporter *manifest.Exporter) RunnerOption {
	return func(r *Runner) { r.exporter = exporter }
}

// WithRunnerLogger logs step failures at debug with their index.
func WithRunnerLogger(logger core.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner binds a runner to svc and reporter.
func NewRunner(svc *core.Service, reporter Reporter, opts ...RunnerOption) *Runner {
	r := &Runner{
		svc:        svc,
		reporter:   reporter,
		logger:     core.NopLogger(),
		containers: make(map[string]string),
		ships:      make(map[string]domain.ShipID),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every step in order. Step failures are reported and counted;
// only context cancellation stops the run early.
func (r *Runner) Run(ctx context.Context, sc Scenario) (Summary, error) {
	var sum Summary
	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if st.Op == OpSection {
			r.reporter.Section(st.Title)
			continue
		}
		sum.Steps++
		msg, err := r.step(ctx, st)
		if err != nil {
			sum.Failed++
			r.logger.Debug("scenario step failed", "step", i+1, "op", st.Op, "error", err)
			r.reporter.Failed(i+1, st.Op, err)
			continue
		}
		if msg != "" {
			r.reporter.Done(i+1, st.Op, msg)
		}
	}
	return sum, nil
}

// Container resolves an alias or serial to its serial.
func (r *Runner) Container(ref string) string {
	if serial, ok := r.containers[ref]; ok {
		return serial
	}
	return ref
}

// Ship resolves an alias or ID to a ship ID.
func (r *Runner) Ship(ref string) domain.ShipID {
	if id, ok := r.ships[ref]; ok {
		return id
	}
	return domain.ShipID(ref)
}

func (r *Runner) step(ctx context.Context, st Step) (string, error) {
	switch st.Op {
	case OpCreateLiquid:
		rec, err := r.svc.CreateLiquidContainer(ctx, st.Dimensions, st.Hazardous)
		return r.created(st, rec, err)
	case OpCreateGas:
		rec, err := r.svc.CreateGasContainer(ctx, st.Dimensions, st.Pressure)
		return r.created(st, rec, err)
	case OpCreateRefrigerated:
		rec, err := r.svc.CreateRefrigeratedContainer(ctx, st.Dimensions, st.Product, st.Temperature)
		return r.created(st, rec, err)
	case OpCreateShip:
		m, err := r.svc.CreateShip(ctx, core.ShipSpec{
			ID:                domain.ShipID(st.ID),
			Name:              st.Name,
			MaxSpeed:          st.MaxSpeed,
			MaxContainerCount: st.MaxContainers,
			MaxWeightTons:     st.MaxWeightTons,
		})
		if err != nil {
			return "", err
		}
		if st.As != "" {
			r.ships[st.As] = m.ShipID
		}
		return fmt.Sprintf("created ship %s (%s)", m.Label(), m.ShipID), nil
	case OpLoad:
		rec, err := r.svc.LoadCargo(ctx, r.Container(st.Container), st.Mass, st.Product)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("loaded %s kg into %s (%s/%s kg)", num(st.Mass), rec.Serial, num(rec.CargoMass), num(rec.Ceiling)), nil
	case OpEmpty:
		rec, err := r.svc.EmptyContainer(ctx, r.Container(st.Container))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("emptied %s (%s kg left)", rec.Serial, num(rec.CargoMass)), nil
	case OpSetTemperature:
		rec, err := r.svc.SetTemperature(ctx, r.Container(st.Container), st.Temperature)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("set %s to %s°C", rec.Serial, num(rec.Temperature)), nil
	case OpAdd:
		m, err := r.svc.AddContainer(ctx, r.Ship(st.Ship), r.Container(st.Container))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("added %s to %s (%d/%d)", r.Container(st.Container), m.Label(), len(m.Containers), m.MaxContainerCount), nil
	case OpAddMany:
		serials := make([]string, 0, len(st.Containers))
		for _, ref := range st.Containers {
			serials = append(serials, r.Container(ref))
		}
		m, err := r.svc.AddContainers(ctx, r.Ship(st.Ship), serials)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("added %d containers to %s", len(serials), m.Label()), nil
	case OpRemove:
		rec, err := r.svc.RemoveContainer(ctx, r.Ship(st.Ship), r.Container(st.Container))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("removed %s from %s", rec.Serial, r.Ship(st.Ship)), nil
	case OpReplace:
		old, err := r.svc.ReplaceContainer(ctx, r.Ship(st.Ship), r.Container(st.Container), r.Container(st.With))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("replaced %s with %s", old.Serial, r.Container(st.With)), nil
	case OpTransfer:
		serial := r.Container(st.Container)
		if err := r.svc.TransferContainer(ctx, r.Ship(st.From), r.Ship(st.To), serial); err != nil {
			return "", err
		}
		return fmt.Sprintf("transferred %s from %s to %s", serial, r.Ship(st.From), r.Ship(st.To)), nil
	case OpRelease:
		released, err := r.svc.ReleaseShip(ctx, r.Ship(st.Ship))
		if err != nil {
			return "", err
		}
		serials := make([]string, 0, len(released))
		for _, rec := range released {
			serials = append(serials, rec.Serial)
		}
		return fmt.Sprintf("released %s; unloaded [%s]", r.Ship(st.Ship), strings.Join(serials, ", ")), nil
	case OpReport:
		return "", r.report(ctx, st)
	case OpInspect:
		res, err := r.svc.Inspect(ctx)
		if err != nil {
			return "", err
		}
		r.reporter.Inspection(res)
		return "", nil
	case OpExport:
		return "", r.export(ctx, st)
	}
	return "", fmt.Errorf("unknown op %q", st.Op)
}

func (r *Runner) created(st Step, rec domain.ContainerRecord, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if st.As != "" {
		r.containers[st.As] = rec.Serial
	}
	return fmt.Sprintf("created %s container %s", rec.Kind, rec.Serial), nil
}

func (r *Runner) report(ctx context.Context, st Step) error {
	switch {
	case st.Container != "":
		rec, err := r.svc.Container(ctx, r.Container(st.Container))
		if err != nil {
			return err
		}
		r.reporter.Container(NewContainerReport(rec))
	case st.Ship != "":
		m, err := r.svc.Ship(ctx, r.Ship(st.Ship))
		if err != nil {
			return err
		}
		r.reporter.Ship(NewShipReport(m))
	default:
		ships, err := r.svc.Ships(ctx)
		if err != nil {
			return err
		}
		for _, m := range ships {
			r.reporter.Ship(NewShipReport(m))
		}
	}
	return nil
}

func (r *Runner) export(ctx context.Context, st Step) error {
	if r.exporter == nil {
		return ErrExportDisabled
	}
	if st.Ship == "" {
		objs, err := r.exporter.ExportFleet(ctx, r.svc)
		if len(objs) > 0 {
			r.reporter.Exported(objs)
		}
		return err
	}
	m, err := r.svc.Ship(ctx, r.Ship(st.Ship))
	if err != nil {
		return err
	}
	obj, err := r.exporter.Export(ctx, m)
	if err != nil {
		return err
	}
	r.reporter.Exported([]blob.Object{obj})
	return nil
}
