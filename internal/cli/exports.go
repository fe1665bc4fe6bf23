package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cargofleet/internal/blob"
	"cargofleet/internal/manifest"
	"cargofleet/pkg/domain"
)

func newExportsCommand(opts *globalOptions) *cobra.Command {
	var (
		links bool
		ttl   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "exports <ship-id>",
		Short: "List exported manifest snapshots for a ship",
		Long: `Exports lists manifest snapshots written by --export or an export step
to the store selected by CARGOFLEET_BLOB_DRIVER. The memory driver does not
outlive a process, so use fs or s3.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := opts.settings()
			logger, err := opts.newLogger(cfg)
			if err != nil {
				return err
			}
			store, err := blob.Open(ctx, cfg.Blob())
			if err != nil {
				return err
			}
			exporter := manifest.NewExporter(store, manifest.WithLogger(logger))
			objects, err := exporter.History(ctx, domain.ShipID(args[0]))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(objects) == 0 {
				fmt.Fprintln(out, muted("no exports for "+args[0]))
				return nil
			}
			headers := []string{"KEY", "SIZE", "CONTAINERS", "WRITTEN"}
			if links {
				headers = append(headers, "LINK")
			}
			rows := make([][]string, 0, len(objects))
			for _, obj := range objects {
				row := []string{
					obj.Key,
					fmt.Sprintf("%d B", obj.Size),
					obj.Metadata["containers"],
					obj.LastModified.Local().Format(time.DateTime),
				}
				if links {
					url, err := exporter.Link(ctx, obj.Key, ttl)
					switch {
					case errors.Is(err, blob.ErrUnsupported):
						url = "-"
					case err != nil:
						return err
					}
					row = append(row, url)
				}
				rows = append(rows, row)
			}
			fmt.Fprintln(out, renderTable(headers, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&links, "links", false, "add a download link per snapshot when the store supports it")
	cmd.Flags().DurationVar(&ttl, "ttl", 15*time.Minute, "lifetime of presigned links")
	return cmd
}
