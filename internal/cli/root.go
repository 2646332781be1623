// Package cli implements checkoutctl, the operator tool for the checkout service.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/repository"
)

// NewRootCommand builds the checkoutctl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "checkoutctl",
		Short: "Operate the checkout service",
		Long: `checkoutctl quotes carts with the live pricing rules, prints the
shipping table and applies database migrations.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("province-costs", "", "YAML file with province shipping costs (default $CHECKOUT_PROVINCE_COSTS_FILE)")

	root.AddCommand(newQuoteCommand(), newProvincesCommand(), newMigrateCommand())
	return root
}

// Execute runs checkoutctl with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func loadProvinces(cmd *cobra.Command, cfg *config.Config) (models.ProvinceCosts, error) {
	path, _ := cmd.Flags().GetString("province-costs")
	if path == "" {
		path = cfg.Checkout.ProvinceCostsFile
	}
	return repository.LoadProvinceCosts(path)
}
