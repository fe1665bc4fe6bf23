package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"cargofleet/pkg/domain"
)

func newProductsCommand(_ *globalOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List refrigerated products and their minimum temperatures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			products := domain.Products()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(products)
			}
			rows := make([][]string, 0, len(products))
			for _, p := range products {
				rows = append(rows, []string{p.Name, fmt.Sprintf("%g °C", p.MinimumTemperature)})
			}
			fmt.Fprintln(out, renderTable([]string{"PRODUCT", "MIN TEMP"}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
