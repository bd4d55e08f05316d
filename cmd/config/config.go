// Package config provides the config parent command and subcommands.
package config

import (
	"github.com/spf13/cobra"

	"github.com/quillmem/quill/cmd/config/subcommands"
)

// ConfigCmd is the parent command for all config-related subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage quill configuration",
	Long: "Manage quill configuration.\n\n" +
		"The config command allows you to view, initialize, and validate the quill " +
		"configuration. Configuration is stored in a YAML file located at " +
		"~/.config/quill/config.yaml by default.",
}

func init() {
	// Register subcommands
	ConfigCmd.AddCommand(subcommands.ShowCmd)
	ConfigCmd.AddCommand(subcommands.InitCmd)
	ConfigCmd.AddCommand(subcommands.ValidateCmd)
}
