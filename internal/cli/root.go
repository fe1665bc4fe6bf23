// Package cli implements the cargofleet command line: running scenario files
// against an in-memory fleet, the built-in port demo, and lookups against the
// hazard journal and manifest exports.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Build metadata, set from main.
var (
	Version = "dev"
	Commit  = "none"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitStepsFailed = 2
)

// errStepsFailed is returned by run --strict when at least one step failed.
var errStepsFailed = errors.New("scenario finished with failed steps")

// globalOptions holds persistent flags shared by every subcommand.
type globalOptions struct {
	logLevel string
	jsonLogs bool
	export   bool
	metrics  bool
	trace    bool
	noColor  bool

	stdout io.Writer
	stderr io.Writer
}

// NewRootCommand wires every subcommand. stdout receives reports, stderr
// receives logs, spans and errors.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:   "cargofleet",
		Short: "Container fleet manager",
		Long: `cargofleet loads liquid, gas and refrigerated containers onto ships,
enforcing payload, temperature, count and weight limits.

Scenarios are YAML files listing fleet operations; failed steps are reported
and the run continues.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit: %s)", Version, Commit),
		PersistentPreRun: func(*cobra.Command, []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug|info|warn|error (default from CARGOFLEET_LOG_LEVEL)")
	flags.BoolVar(&opts.jsonLogs, "json-logs", false, "emit JSON logs and log hazards instead of printing them")
	flags.BoolVar(&opts.export, "export", false, "export every ship manifest when the run ends")
	flags.BoolVar(&opts.metrics, "metrics", false, "print Prometheus metrics when the run ends")
	flags.BoolVar(&opts.trace, "trace", false, "print one line per service operation span to stderr")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable coloured output")

	root.AddCommand(
		newRunCommand(opts),
		newCheckCommand(),
		newDemoCommand(opts),
		newProductsCommand(opts),
		newHazardsCommand(opts),
		newExportsCommand(opts),
	)
	return root
}

// Execute runs root until completion or SIGINT/SIGTERM and maps the result
// to an exit code.
func Execute(root *cobra.Command) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	fmt.Fprintf(root.ErrOrStderr(), "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), err)
	if errors.Is(err, errStepsFailed) {
		return ExitStepsFailed
	}
	return ExitError
}
