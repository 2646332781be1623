package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/view"
)

func newProvincesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "provinces",
		Short: "Print the shipping-company cost table",
		RunE: func(cmd *cobra.Command, args []string) error {
			provinces, err := loadProvinces(cmd, config.Load())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PROVINCE\tCOST")
			for _, p := range view.ProvinceOptions(provinces) {
				fmt.Fprintf(tw, "%s\t%s\n", p.Name, p.Cost)
			}
			return tw.Flush()
		},
	}
}
