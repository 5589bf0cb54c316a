package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shopkeep/internal/auth"
	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <dataset>",
		Short: "Recreate a dataset empty (administrators only)",
		Long: `Reset discards every row of a dataset and recreates its store from the
schema. Resetting users keeps only the configured administrator, with its
current password.`,
		Args: usage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(a *app, s *auth.Session) error {
				if err := s.RequireRole(types.RoleAdmin); err != nil {
					return err
				}
				d, err := a.backend.Dataset(args[0])
				if err != nil {
					return err
				}
				if err := d.Reset(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s reset\n", d.Name())
				return nil
			})
		},
	}
}
