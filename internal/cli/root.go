// Package cli implements the shopkeep command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	strict    bool
	user      string
	password  string
	unlockKey string
}

var flags rootFlags

// NewRootCmd creates the top-level "shopkeep" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags = rootFlags{}

	root := &cobra.Command{
		Use:   "shopkeep",
		Short: "Point-of-sale records for a retail and repair shop",
		Long: "Shopkeep keeps the stock, sales, repairs and users of a shop in CSV files\n" +
			"and heals them against their schemas before every use.",
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: $(CWD)/.shopkeep)")
	pf.StringVar(&flags.dataDir, "data-dir", "", "directory holding the CSV stores (default: $(CWD))")
	pf.BoolVar(&flags.jsonMode, "json", false, "output in JSON format")
	pf.BoolVar(&flags.strict, "strict", false, "fail on unreadable stores and drop legacy columns")
	pf.StringVarP(&flags.user, "user", "u", "", "staff username (env "+envUser+")")
	pf.StringVarP(&flags.password, "password", "p", "", "staff password (env "+envPassword+")")
	pf.StringVar(&flags.unlockKey, "unlock", "", "master key for a locked terminal (env "+envUnlock+")")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newEnsureCmd(),
		newListCmd(),
		newResetCmd(),
		newLoginCmd(),
		newUserCmd(),
		newStockCmd(),
		newCatalogCmd(),
		newSaleCmd(),
		newRepairCmd(),
		newReportCmd(),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "shopkeep:", err)
		os.Exit(exitCode(err))
	}
}

// userErrors are failures the operator can fix by changing the input.
var userErrors = []error{
	types.ErrDatasetNotFound,
	types.ErrUnknownColumn,
	types.ErrInvalidRecord,
	types.ErrNotFound,
	types.ErrLocked,
	types.ErrInvalidMasterKey,
	types.ErrInvalidCredentials,
	types.ErrAlreadyAuthenticated,
	types.ErrUnauthenticated,
	types.ErrForbidden,
	types.ErrEmptyCart,
	types.ErrAdminUsernameInvalid,
	types.ErrAdminRoleInvalid,
}

// exitCode maps a command error to the process exit code. Anything not
// known to be the operator's mistake is a system error.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ue usageError
	if errors.As(err, &ue) {
		return exitUserError
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	return exitSysError
}

// usageError marks bad flags or arguments.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// usage wraps an argument validator so its failures count as usage errors.
func usage(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}
