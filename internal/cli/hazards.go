package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cargofleet/internal/hazard"
)

func newHazardsCommand(opts *globalOptions) *cobra.Command {
	var (
		serial string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "hazards",
		Short: "List recent hazard alerts from the journal",
		Long: `Hazards reads the alert journal configured through
CARGOFLEET_HAZARD_JOURNAL_DRIVER and CARGOFLEET_HAZARD_JOURNAL_DSN.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.settings()
			if !cfg.JournalEnabled() {
				return errors.New("hazard journal is not configured; set CARGOFLEET_HAZARD_JOURNAL_DRIVER")
			}
			logger, err := opts.newLogger(cfg)
			if err != nil {
				return err
			}
			journal, err := hazard.OpenJournal(cmd.Context(), cfg.HazardJournalDriver, cfg.HazardJournalDSN, hazard.WithJournalLogger(logger))
			if err != nil {
				return err
			}
			defer func() { _ = journal.Close() }()

			alerts, err := journal.Recent(cmd.Context(), serial, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(alerts) == 0 {
				fmt.Fprintln(out, muted("no hazard alerts recorded"))
				return nil
			}
			rows := make([][]string, 0, len(alerts))
			for _, a := range alerts {
				rows = append(rows, []string{
					a.RecordedAt.Local().Format(time.DateTime),
					a.Serial,
					string(a.Kind),
					a.Headline,
					a.Message,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"RECORDED", "SERIAL", "KIND", "HEADLINE", "MESSAGE"}, rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&serial, "serial", "", "only alerts for this container serial")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of alerts")
	return cmd
}
