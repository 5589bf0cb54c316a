package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shopkeep/internal/auth"
	"github.com/mesh-intelligence/shopkeep/internal/pos"
)

func newSaleCmd() *cobra.Command {
	var payment string
	cmd := &cobra.Command{
		Use:   "sale <barcode>...",
		Short: "Ring up scanned items and record the sale",
		Long: `Sale scans each barcode into a cart, records one sale for the logged-in
user and takes the items out of stock. Repeat a barcode to sell more than
one unit.`,
		Example: `  shopkeep sale 6001 6001 6002 --payment MoMo -u kofi -p secret`,
		Args:    usage(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(a *app, s *auth.Session) error {
				var cart pos.Cart
				for _, code := range args {
					if _, err := a.pos.Scan(&cart, code); err != nil {
						return err
					}
				}
				receipt, err := a.pos.Checkout(s, &cart, payment)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				if flags.jsonMode {
					return writeJSON(w, receipt)
				}
				fmt.Fprintf(w, "%s  %s  %s\n", receipt.InvoiceID, receipt.Timestamp, receipt.Staff)
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
				for _, l := range receipt.Lines {
					fmt.Fprintf(tw, "%s\t%s\t\n", l.Name, l.Price.StringFixed(2))
				}
				fmt.Fprintf(tw, "Total (%s)\t%s\t\n", receipt.Payment, receipt.Total.StringFixed(2))
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&payment, "payment", pos.DefaultPayment, "payment method")
	return cmd
}
