package subcommands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/quillmem/quill/internal/cmdutil"
	"github.com/quillmem/quill/internal/config"
)

var (
	showRaw bool
)

// ShowCmd displays the current configuration.
var ShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the current configuration",
	Long: "Display the current configuration.\n\n" +
		"Shows the current quill configuration values. By default, shows " +
		"the effective configuration with defaults applied. Use --raw to show " +
		"only the values explicitly set in the config file.",
	Example: `  # Show effective configuration
  quill config show

  # Show only explicitly set values
  quill config show --raw`,
	PreRunE: validateShow,
	RunE:    runShow,
}

func init() {
	ShowCmd.Flags().BoolVar(&showRaw, "raw", false, "Show only explicitly configured values (no defaults)")
}

func validateShow(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	if showRaw {
		return showRawConfig(cmd)
	}
	return showEffectiveConfig(cmd)
}

func showRawConfig(cmd *cobra.Command) error {
	configPath := config.DefaultConfigPath()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(cmd.OutOrStdout(), "# No configuration file found")
			fmt.Fprintf(cmd.OutOrStdout(), "# Default location: %s\n", configPath)
			return nil
		}
		return fmt.Errorf("failed to read config file; %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "# Configuration file: %s\n", configPath)
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func showEffectiveConfig(cmd *cobra.Command) error {
	rt, err := cmdutil.RuntimeFrom(cmd)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(rt.Config)
	if err != nil {
		return fmt.Errorf("failed to format configuration; %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "# Effective configuration (with defaults)")
	fmt.Fprintf(cmd.OutOrStdout(), "# Config file: %s\n", config.DefaultConfigPath())
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
