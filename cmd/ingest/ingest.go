// Package ingest implements the ingest command for storing documents.
package ingest

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quillmem/quill/internal/cmdutil"
	"github.com/quillmem/quill/internal/service"
)

// Flag variables for the ingest command.
var (
	ingestIndex       string
	ingestURL         string
	ingestTags        map[string]string
	ingestContentType string
)

// IngestCmd is the ingest command for storing documents as memories.
var IngestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Ingest a document into memory",
	Long: "Ingest a document into memory.\n\n" +
		"The document is extracted to text, partitioned into chunks, embedded, " +
		"and persisted to the configured vector store. Pass a file path, or use " +
		"--url to fetch a page through the extractor service and ingest the " +
		"converted markdown.",
	Example: `  # Ingest a local markdown file
  quill ingest ~/docs/runbook.md

  # Ingest into a named index with tags
  quill ingest notes.txt --index=ops --tag team=sre --tag kind=runbook

  # Ingest a web page (requires the extractor service)
  quill ingest --url=https://example.com/handbook`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: validateIngest,
	RunE:    runIngest,
}

func init() {
	IngestCmd.Flags().StringVar(&ingestIndex, "index", "", "Target index (defaults to the configured default index)")
	IngestCmd.Flags().StringVar(&ingestURL, "url", "", "Ingest a web page instead of a local file")
	IngestCmd.Flags().StringToStringVar(&ingestTags, "tag", nil, "Tag to attach to the document (repeatable, key=value)")
	IngestCmd.Flags().StringVar(&ingestContentType, "content-type", "", "Override the detected content type")
}

func validateIngest(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && ingestURL == "" {
		return fmt.Errorf("provide a file path or --url")
	}
	if len(args) > 0 && ingestURL != "" {
		return fmt.Errorf("provide a file path or --url, not both")
	}

	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	rt, err := cmdutil.RuntimeFrom(cmd)
	if err != nil {
		return err
	}

	svc, err := service.New(rt.Config, rt.Logger)
	if err != nil {
		return err
	}

	var result service.IngestResult
	if ingestURL != "" {
		result, err = svc.IngestURL(cmd.Context(), ingestIndex, ingestURL, ingestTags)
	} else {
		result, err = ingestFile(cmd, svc, args[0])
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Ingested document %s into index %q (%d partitions)\n",
		result.DocumentID, result.Index, result.Partitions)
	return nil
}

func ingestFile(cmd *cobra.Command, svc *service.Service, path string) (service.IngestResult, error) {
	resolved, err := cmdutil.ResolvePath(path)
	if err != nil {
		return service.IngestResult{}, fmt.Errorf("failed to resolve path %s; %w", path, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return service.IngestResult{}, fmt.Errorf("failed to read file; %w", err)
	}

	return svc.Ingest(cmd.Context(), service.IngestRequest{
		Index:       ingestIndex,
		FileName:    filepath.Base(resolved),
		ContentType: contentType(resolved),
		Bytes:       data,
		Tags:        ingestTags,
	})
}

// contentType resolves the document content type: the --content-type flag
// wins, then the file extension, then plain text.
func contentType(path string) string {
	if ingestContentType != "" {
		return ingestContentType
	}
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "text/plain"
}
