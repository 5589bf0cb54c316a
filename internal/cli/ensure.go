package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

func newEnsureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure [dataset...]",
		Short: "Heal datasets against their schemas",
		Long: `Ensure loads each named dataset (all of them by default), restores missing
columns, replaces values that are not numbers in numeric columns, and writes
the store back when its shape changed.

Datasets: stock, sales, repairs, users`,
		RunE: runEnsure,
	}
}

func runEnsure(cmd *cobra.Command, args []string) error {
	names := args
	if len(names) == 0 {
		names = types.StandardDatasetNames
	}
	return withApp(cmd, func(a *app) error {
		var results []*types.Result
		for _, name := range names {
			res, err := a.backend.Ensure(name)
			if err != nil {
				return fmt.Errorf("ensure %s: %w", name, err)
			}
			results = append(results, res)
		}

		w := cmd.OutOrStdout()
		if flags.jsonMode {
			reports := make([]types.HealReport, len(results))
			for i, res := range results {
				reports[i] = res.Report
			}
			return writeJSON(w, reports)
		}
		for _, res := range results {
			if notice := res.Report.Notice(); notice != "" {
				fmt.Fprintln(w, notice)
				continue
			}
			fmt.Fprintf(w, "%s: ok (%d rows)\n", res.Report.Dataset, res.Table.Len())
		}
		return nil
	})
}
