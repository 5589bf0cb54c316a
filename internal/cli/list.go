package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

// maskedPassword replaces password cells in listings.
const maskedPassword = "********"

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <dataset> [column=value...]",
		Short: "List rows of a dataset with optional filter",
		Long: `List prints the rows of a dataset. Filters are column=value pairs and are
ANDed together. Numeric columns compare as numbers and usernames ignore case.
Passwords are never printed.

Example:
  shopkeep list stock
  shopkeep list stock Category=Phones
  shopkeep list repairs Status=Received`,
		Args: usage(cobra.MinimumNArgs(1)),
		RunE: runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	filter := make(map[string]any)
	for _, arg := range args[1:] {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return usageError{fmt.Errorf("invalid filter %q (expected column=value)", arg)}
		}
		filter[key] = value
	}

	return withApp(cmd, func(a *app) error {
		d, err := a.backend.Dataset(args[0])
		if err != nil {
			return err
		}
		t, err := d.Load()
		if err != nil {
			return err
		}
		rows, err := d.Fetch(filter)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if _, ok := row[types.ColPassword]; ok && d.Name() == types.DatasetUsers {
				row[types.ColPassword] = maskedPassword
			}
		}

		w := cmd.OutOrStdout()
		if flags.jsonMode {
			return writeJSON(w, rows)
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
		cells := make([]string, len(t.Columns))
		for _, row := range rows {
			for i, col := range t.Columns {
				cells[i] = cast.ToString(row[col])
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		return tw.Flush()
	})
}
