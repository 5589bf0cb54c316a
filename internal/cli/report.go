package cli

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shopkeep/internal/auth"
	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

func newReportCmd() *cobra.Command {
	var recent int
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the business summary",
		Args:  usage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(a *app, s *auth.Session) error {
				d, err := a.pos.Dashboard(s, recent)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if flags.jsonMode {
					return writeJSON(w, d)
				}

				fmt.Fprintf(w, "Revenue: %s (%d sales)\n", d.Sales.Revenue.StringFixed(2), d.Sales.Count)
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				if len(d.LowStock) > 0 {
					fmt.Fprintln(tw, "\nLow stock:")
					for _, item := range d.LowStock {
						fmt.Fprintf(tw, "  %s\t%s\t%g (min %g)\n", item.Barcode, item.Name, item.Stock, item.MinStock)
					}
				}
				if len(d.Repairs) > 0 {
					fmt.Fprintln(tw, "\nRepairs:")
					statuses := make([]string, 0, len(d.Repairs))
					for status := range d.Repairs {
						statuses = append(statuses, status)
					}
					slices.Sort(statuses)
					for _, status := range statuses {
						fmt.Fprintf(tw, "  %s\t%d\n", status, d.Repairs[status])
					}
				}
				if len(d.Recent) > 0 {
					fmt.Fprintln(tw, "\nRecent sales:")
					for _, sale := range d.Recent {
						fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
							sale[types.ColInvoiceID], sale[types.ColTimestamp],
							decimal.NewFromFloat(cast.ToFloat64(sale[types.ColTotal])).StringFixed(2),
							sale[types.ColStaff], sale[types.ColPayment])
					}
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&recent, "recent", 5, "number of recent sales to show")
	return cmd
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List products as the storefront shows them",
		Args:  usage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				products, err := a.pos.Catalog()
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if flags.jsonMode {
					return writeJSON(w, products)
				}
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				for _, p := range products {
					status := "Out of Stock"
					if p.InStock {
						status = "In Stock"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, p.Price.StringFixed(2), status)
				}
				return tw.Flush()
			})
		},
	}
}
