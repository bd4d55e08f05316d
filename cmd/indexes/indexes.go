// Package indexes implements the indexes command for listing collections.
package indexes

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quillmem/quill/internal/cmdutil"
	"github.com/quillmem/quill/internal/service"
)

// IndexesCmd lists the indexes present in the vector store.
var IndexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "List stored indexes",
	Long: "List stored indexes.\n\n" +
		"Shows the names of all collections present in the configured vector " +
		"store. Each index holds the embedded chunks of the documents ingested " +
		"into it.",
	Example: `  # List all indexes
  quill indexes`,
	Args:    cobra.NoArgs,
	PreRunE: validateIndexes,
	RunE:    runIndexes,
}

func validateIndexes(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runIndexes(cmd *cobra.Command, args []string) error {
	rt, err := cmdutil.RuntimeFrom(cmd)
	if err != nil {
		return err
	}

	svc, err := service.New(rt.Config, rt.Logger)
	if err != nil {
		return err
	}

	names, err := svc.ListIndexes(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list indexes; %w", err)
	}

	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintln(out, "No indexes found.")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}
