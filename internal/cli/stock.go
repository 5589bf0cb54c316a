package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shopkeep/internal/auth"
	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

func newStockCmd() *cobra.Command {
	stock := &cobra.Command{
		Use:   "stock",
		Short: "Manage the stock list",
	}
	stock.AddCommand(newStockAddCmd(), newStockRestockCmd(), newStockImportCmd())
	return stock
}

// stockFlags maps stock add flags to stock columns.
var stockFlags = []struct {
	flag, column, usage string
}{
	{"barcode", types.ColBarcode, "item barcode (required)"},
	{"name", types.ColProductName, "product name"},
	{"category", types.ColCategory, "category"},
	{"price", types.ColSellingPrice, "selling price"},
	{"qty", types.ColStock, "units in stock"},
	{"min-stock", types.ColMinStock, "reorder threshold (default 5)"},
	{"image-url", types.ColImageURL, "storefront image URL"},
	{"description", types.ColDescription, "storefront description"},
}

func newStockAddCmd() *cobra.Command {
	values := make(map[string]*string, len(stockFlags))
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add one stock item",
		Example: `  shopkeep stock add --barcode 6001 --name "USB-C Cable" --price 25 --qty 10`,
		Args:    usage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			item := make(types.Record)
			for _, f := range stockFlags {
				if cmd.Flags().Changed(f.flag) {
					item[f.column] = *values[f.flag]
				}
			}
			return withSession(cmd, func(a *app, s *auth.Session) error {
				if err := a.pos.AddItem(s, item); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", item[types.ColBarcode])
				return nil
			})
		},
	}
	for _, f := range stockFlags {
		values[f.flag] = cmd.Flags().String(f.flag, "", f.usage)
	}
	return cmd
}

func newStockRestockCmd() *cobra.Command {
	var qty float64
	cmd := &cobra.Command{
		Use:   "restock <barcode>",
		Short: "Add units to an existing item",
		Args:  usage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(a *app, s *auth.Session) error {
				if err := a.pos.Restock(s, args[0], qty); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restocked %s by %g\n", args[0], qty)
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&qty, "qty", 1, "units received")
	return cmd
}

func newStockImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Bulk import stock items (administrators only)",
		Long: `Import appends the items of a CSV file to stock. The file needs a header
row; Barcode, Product Name, Selling Price and Stock are the usual columns.
Missing columns take their defaults and unknown columns are ignored. Rows
without a barcode or with a barcode already in stock are skipped.`,
		Args: usage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return usageError{err}
			}
			defer f.Close()

			return withSession(cmd, func(a *app, s *auth.Session) error {
				res, err := a.pos.Import(s, f)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if flags.jsonMode {
					return writeJSON(w, res)
				}
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintf(tw, "added\t%d\n", res.Added)
				fmt.Fprintf(tw, "skipped\t%d\n", res.Skipped)
				fmt.Fprintf(tw, "defaulted cells\t%d\n", res.Defaulted)
				if len(res.Ignored) > 0 {
					fmt.Fprintf(tw, "ignored columns\t%v\n", res.Ignored)
				}
				return tw.Flush()
			})
		},
	}
}
