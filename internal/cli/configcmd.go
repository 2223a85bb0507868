package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ganttsync/internal/config"
)

// configCommand creates the config inspection command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration as TOML",
		Long: `Show prints the configuration after defaults, the user file, the project
file and GANTTSYNC_* environment variables have been applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(c.Config.Files) == 0 {
				fmt.Fprintln(out, "# no config files loaded; showing defaults")
			}
			for _, f := range c.Config.Files {
				fmt.Fprintf(out, "# loaded %s\n", f)
			}
			shown := *c.Config
			if shown.Redis.Password != "" {
				shown.Redis.Password = "********"
			}
			return toml.NewEncoder(out).Encode(shown)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print where the user config file is read from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.UserConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	return cmd
}
