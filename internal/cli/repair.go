package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shopkeep/internal/auth"
)

func newRepairCmd() *cobra.Command {
	repair := &cobra.Command{
		Use:   "repair",
		Short: "Track devices in for repair",
	}
	repair.AddCommand(newRepairLogCmd(), newRepairStatusCmd())
	return repair
}

func newRepairLogCmd() *cobra.Command {
	var phone, device, issue string
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log a device brought in for repair",
		Args:  usage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(a *app, s *auth.Session) error {
				id, err := a.pos.LogRepair(s, phone, device, issue)
				if err != nil {
					return err
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), map[string]string{"repair_id": id})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged %s\n", id)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "customer phone number")
	cmd.Flags().StringVar(&device, "device", "", "device model")
	cmd.Flags().StringVar(&issue, "issue", "", "reported problem")
	return cmd
}

func newRepairStatusCmd() *cobra.Command {
	var price string
	cmd := &cobra.Command{
		Use:     "status <repair-id> <status>",
		Short:   "Move a repair to a new status",
		Example: `  shopkeep repair status REP-0A1B2C3D4E Fixed --price 250`,
		Args:    usage(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p decimal.NullDecimal
			if cmd.Flags().Changed("price") {
				d, err := decimal.NewFromString(price)
				if err != nil {
					return usageError{fmt.Errorf("invalid price %q: %w", price, err)}
				}
				p = decimal.NewNullDecimal(d)
			}
			return withSession(cmd, func(a *app, s *auth.Session) error {
				if err := a.pos.SetRepairStatus(s, args[0], args[1], p); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], args[1])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&price, "price", "", "agreed repair price")
	return cmd
}
