package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

type initOutput struct {
	ConfigDir         string             `json:"config_dir"`
	DataDir           string             `json:"data_dir"`
	Datasets          []types.HealReport `json:"datasets"`
	GeneratedPassword string             `json:"generated_password,omitempty"`
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize shopkeep storage",
		Long: "Create the configuration directory and config.yaml, then create or heal\n" +
			"every CSV store in the data directory.",
		Args: usage(cobra.NoArgs),
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		startup := a.backend.Startup()
		out := initOutput{
			ConfigDir: a.settings.configDir,
			DataDir:   a.backend.DataDir(),
		}
		for _, res := range startup {
			out.Datasets = append(out.Datasets, res.Report)
		}
		out.GeneratedPassword = a.backend.TakeGeneratedPassword()

		w := cmd.OutOrStdout()
		if flags.jsonMode {
			return writeJSON(w, out)
		}
		fmt.Fprintln(w, "Shop initialized")
		fmt.Fprintln(w, "  config:", out.ConfigDir)
		fmt.Fprintln(w, "  data:  ", out.DataDir)
		printNotices(w, startup)
		if out.GeneratedPassword != "" {
			printGeneratedPassword(w, a.settings.store.Admin.Username, out.GeneratedPassword)
		}
		return nil
	})
}
