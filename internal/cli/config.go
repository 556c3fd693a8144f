package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/config"
)

func newConfigCmd(e *env) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "View or create the configuration",
		Long: `View or create the configuration.

Without arguments, displays the effective configuration after defaults,
the config file and AIPOMODORO_* environment overrides are applied.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd, e)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd, e)
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default config file",
		Args:  cobra.NoArgs,
		// The file may not exist yet, so skip loading it.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := configPath(e)
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", path)
			return nil
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Show the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), configPath(e))
			return nil
		},
	}

	configCmd.AddCommand(showCmd, initCmd, pathCmd)
	return configCmd
}

func showConfig(cmd *cobra.Command, e *env) error {
	redacted := *e.cfg
	if redacted.Analysis.APIKey != "" {
		redacted.Analysis.APIKey = "********"
	}
	redacted.Storage.Secret = "********"
	out, err := config.Marshal(&redacted)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func configPath(e *env) string {
	if e.cfgFile != "" {
		return e.cfgFile
	}
	if used := e.v.ConfigFileUsed(); used != "" {
		return used
	}
	return config.ConfigFile()
}
