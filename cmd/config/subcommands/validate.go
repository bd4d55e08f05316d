package subcommands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillmem/quill/internal/config"
)

// ValidateCmd validates the current configuration.
var ValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the current configuration",
	Long: "Validate the current configuration.\n\n" +
		"Checks the configuration file for syntax errors and validates that all " +
		"settings have valid values. Returns exit code 0 if valid, 1 if invalid.",
	Example: `  # Validate the configuration
  quill config validate`,
	PreRunE: validateValidate,
	RunE:    runValidate,
}

func validateValidate(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := config.DefaultConfigPath()

	if !config.ConfigExists() {
		fmt.Fprintf(cmd.OutOrStdout(), "No configuration file found at %s\n", configPath)
		fmt.Fprintln(cmd.OutOrStdout(), "Using default configuration values.")
		return nil
	}

	if _, err := config.LoadFromPath(configPath); err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Configuration validation failed:")
		fmt.Fprintf(cmd.OutOrStdout(), "  %v\n", err)
		return fmt.Errorf("configuration is invalid")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid: %s\n", configPath)
	return nil
}
