package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"cargofleet/internal/observability"
	"cargofleet/internal/scenario"
)

func newRunCommand(opts *globalOptions) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a fleet scenario file",
		Long: `Run executes every step of a scenario file against a fresh fleet.

A failed step prints its error and the run continues. With --strict the
command exits with status 2 when any step failed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			return opts.runScenario(cmd.Context(), sc, strict)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any step fails")
	return cmd
}

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <scenario.yaml>",
		Short: "Validate a scenario file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successMsg("%s: %d steps", args[0], len(sc.Steps)))
			return nil
		},
	}
}

func newDemoCommand(opts *globalOptions) *cobra.Command {
	var printOnly bool
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the built-in port demo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if printOnly {
				_, err := cmd.OutOrStdout().Write(scenario.DemoSource())
				return err
			}
			sc, err := scenario.Demo()
			if err != nil {
				return err
			}
			return opts.runScenario(cmd.Context(), sc, false)
		},
	}
	cmd.Flags().BoolVar(&printOnly, "print", false, "print the demo scenario YAML instead of running it")
	return cmd
}

// runScenario wires a runtime, runs sc and prints the closing output.
func (o *globalOptions) runScenario(ctx context.Context, sc scenario.Scenario, strict bool) (err error) {
	rt, err := o.openRuntime(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rt.Close(context.WithoutCancel(ctx)); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	out := console{w: o.stdout}
	runner := scenario.NewRunner(rt.svc, out,
		scenario.WithExporter(rt.exporter),
		scenario.WithRunnerLogger(rt.logger),
	)
	if sc.Name != "" {
		fmt.Fprintln(o.stdout, accentStyle.Render(sc.Name))
	}
	sum, err := runner.Run(ctx, sc)
	if err != nil {
		return err
	}
	rt.logger.Info("scenario finished", "name", sc.Name, "steps", sum.Steps, "failed", sum.Failed)

	if o.export {
		objects, err := rt.exporter.ExportFleet(ctx, rt.svc)
		if err != nil {
			return fmt.Errorf("export manifests: %w", err)
		}
		out.Exported(objects)
	}
	printSummary(o.stdout, sum, rt.hazards.Hazards())
	if rt.registry != nil {
		if err := writeMetrics(o.stdout, rt); err != nil {
			return err
		}
	}
	if strict && sum.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", errStepsFailed, sum.Failed, sum.Steps)
	}
	return nil
}

func writeMetrics(w io.Writer, rt *runtime) error {
	fmt.Fprintln(w)
	return observability.WriteText(w, rt.registry)
}
