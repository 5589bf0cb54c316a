package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shopkeep/internal/auth"
	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Check staff credentials",
		Long: "Login verifies --user and --password (and --unlock on a terminal with a\n" +
			"master key). A legacy plaintext password is rehashed on success.",
		Args: usage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(a *app, s *auth.Session) error {
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), map[string]string{
						"username": s.Username(),
						"role":     s.Role(),
						"state":    s.State().String(),
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", s.Username(), s.Role())
				return nil
			})
		},
	}
}

func newUserCmd() *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage staff accounts",
	}

	var newPassword, role string
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Add a staff account (administrators only)",
		Args:  usage(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(a *app, s *auth.Session) error {
				if err := a.auth.AddUser(s, args[0], newPassword, role); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User %s added\n", types.NormalizeIdentity(args[0]))
				return nil
			})
		},
	}
	add.Flags().StringVar(&newPassword, "new-password", "", "password for the new account")
	add.Flags().StringVar(&role, "role", types.RoleStaff, "role for the new account")

	user.AddCommand(add)
	return user
}
