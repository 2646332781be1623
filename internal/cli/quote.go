package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/service"
)

type quoteOptions struct {
	subtotal     string
	shipping     string
	province     string
	payment      string
	couponAmount string
	policy       string
}

func newQuoteCommand() *cobra.Command {
	opts := &quoteOptions{}
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Compute the totals for a cart",
		Example: `  checkoutctl quote --subtotal 10000 --shipping cadete --payment transferencia
  checkoutctl quote --subtotal 8000 --shipping envio --province Cordoba --coupon-amount 800`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.subtotal, "subtotal", "", "cart subtotal")
	cmd.Flags().StringVar(&opts.shipping, "shipping", string(models.ShippingPickup), "shipping method: retiro, cadete or envio")
	cmd.Flags().StringVar(&opts.province, "province", "", "destination province for envio")
	cmd.Flags().StringVar(&opts.payment, "payment", string(models.PaymentMercadoPago), "payment method: efectivo, transferencia or mercadopago")
	cmd.Flags().StringVar(&opts.couponAmount, "coupon-amount", "", "coupon discount already validated for the cart")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "discount policy override: exclusive or stacked")
	_ = cmd.MarkFlagRequired("subtotal")

	return cmd
}

func runQuote(cmd *cobra.Command, opts *quoteOptions) error {
	cfg := config.Load()
	if opts.policy != "" {
		cfg.Checkout.DiscountPolicy = opts.policy
	}

	subtotal, err := decimal.NewFromString(opts.subtotal)
	if err != nil || subtotal.IsNegative() {
		return fmt.Errorf("invalid subtotal %q", opts.subtotal)
	}
	method, ok := models.ParseShippingMethod(opts.shipping)
	if !ok {
		return fmt.Errorf("unknown shipping method %q", opts.shipping)
	}

	in := service.TotalsInput{
		Subtotal: subtotal,
		Shipping: method,
		Province: opts.province,
		Payment:  models.PaymentMethod(opts.payment),
	}
	if opts.couponAmount != "" {
		amount, err := decimal.NewFromString(opts.couponAmount)
		if err != nil {
			return fmt.Errorf("invalid coupon amount %q", opts.couponAmount)
		}
		in.Coupon = models.CouponDiscount{Code: "CLI", Amount: amount}
	}

	provinces, err := loadProvinces(cmd, cfg)
	if err != nil {
		return err
	}
	totals := service.NewCalculator(service.NewPricingConfig(cfg.Checkout, provinces)).Totals(in)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Subtotal:  %s\n", service.FormatMoney(totals.Subtotal))
	fmt.Fprintf(out, "Shipping:  %s\n", service.FormatMoney(totals.ShipCost))
	fmt.Fprintf(out, "Discount:  %s (%s)\n", service.FormatMoney(totals.Discount.Neg()), totals.DiscountSource)
	fmt.Fprintf(out, "Total:     %s\n", service.FormatMoney(totals.Total))
	return nil
}
