package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	askcmd "github.com/quillmem/quill/cmd/ask"
	configcmd "github.com/quillmem/quill/cmd/config"
	indexescmd "github.com/quillmem/quill/cmd/indexes"
	ingestcmd "github.com/quillmem/quill/cmd/ingest"
	searchcmd "github.com/quillmem/quill/cmd/search"
	versioncmd "github.com/quillmem/quill/cmd/version"
	"github.com/quillmem/quill/internal/cmdutil"
	"github.com/quillmem/quill/internal/config"
	"github.com/quillmem/quill/internal/logging"
	"github.com/quillmem/quill/internal/pipeline"
)

// Process exit codes.
const (
	ExitOK        = 0
	ExitError     = 1
	ExitConfig    = 2
	ExitPipeline  = 3
	ExitCancelled = 130
)

// logManager is the global logging manager, created in init() and upgraded after config loads
var logManager *logging.Manager

var quillCmd = &cobra.Command{
	Use:   "quill",
	Short: "A Retrieval-Augmented Memory Store for AI Agents",
	Long: "Quill ingests documents into a searchable long-term memory.\n\n" +
		"Documents are extracted to text, partitioned into chunks, embedded, and " +
		"persisted to a vector store. Stored memories can then be searched by " +
		"similarity or used to answer natural-language questions with cited sources.",
	PersistentPreRunE: runInitialize,
}

func init() {
	// Create logging Manager in bootstrap mode (stderr text only)
	logManager = logging.NewManager()

	quillCmd.AddCommand(ingestcmd.IngestCmd)
	quillCmd.AddCommand(searchcmd.SearchCmd)
	quillCmd.AddCommand(askcmd.AskCmd)
	quillCmd.AddCommand(indexescmd.IndexesCmd)
	quillCmd.AddCommand(configcmd.ConfigCmd)
	quillCmd.AddCommand(versioncmd.VersionCmd)
}

func runInitialize(cmd *cobra.Command, args []string) error {
	logger := logManager.Logger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Upgrade logging after config is available
	level, ok := logging.ParseLevel(cfg.LogLevel)
	if !ok {
		level = logging.DefaultLevel
		if cfg.LogLevel != "" {
			logger.Warn("invalid log level configured, using default", "configured", cfg.LogLevel, "default", "info")
		}
	}

	if err := logManager.Upgrade(config.ExpandPath(cfg.LogFile), level); err != nil {
		logger.Warn("failed to enable file logging, continuing with stderr only", "error", err)
		// Don't return error - continue with bootstrap mode
	}

	cmd.SetContext(cmdutil.WithRuntime(cmd.Context(), &cmdutil.Runtime{
		Config: cfg,
		Logger: logManager.Logger(),
	}))

	return nil
}

func Execute() error {
	quillCmd.SilenceErrors = true
	quillCmd.SilenceUsage = true

	// Ensure logging is properly closed on exit
	defer func() { _ = logManager.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := quillCmd.ExecuteContext(ctx)

	if err != nil {
		cmd, _, _ := quillCmd.Find(os.Args[1:])
		if cmd == nil {
			cmd = quillCmd
		}

		fmt.Printf("Error: %v\n", err)
		if !cmd.SilenceUsage {
			fmt.Printf("\n")
			cmd.SetOut(os.Stdout)
			_ = cmd.Usage()
		}

		return err
	}

	return nil
}

// ExitCode maps an Execute error to a process exit code: 0 success,
// 2 configuration error, 3 pipeline failure, 130 cancellation.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitCancelled
	}

	var validationErrs config.ValidationErrors
	var validationErr config.ValidationError
	if errors.As(err, &validationErrs) || errors.As(err, &validationErr) {
		return ExitConfig
	}

	var stepErr *pipeline.StepFailedError
	if errors.As(err, &stepErr) {
		return ExitPipeline
	}

	return ExitError
}
