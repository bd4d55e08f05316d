// Package search implements the search command for querying memories.
package search

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillmem/quill/internal/cmdutil"
	"github.com/quillmem/quill/internal/search"
	"github.com/quillmem/quill/internal/service"
)

// Flag variables for the search command.
var (
	searchIndex        string
	searchLimit        int
	searchMinRelevance float32
	searchFilters      map[string]string
)

// SearchCmd is the search command for similarity search over stored memories.
var SearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search stored memories by similarity",
	Long: "Search stored memories by similarity.\n\n" +
		"The query is embedded and matched against stored chunks in the vector " +
		"store. Results are printed as citations with their source file and " +
		"relevance score. Filters restrict results by payload field equality; " +
		"unknown filter keys match document tags.",
	Example: `  # Search the default index
  quill search "how do deployments work"

  # Search a named index with a result cap
  quill search "oncall rotation" --index=ops --limit=5

  # Restrict results to one document's chunks
  quill search "rollback steps" --filter documentId=6f9619ff-8b86-d011-b42d-00c04fc964ff

  # Restrict results by tag
  quill search "rollback steps" --filter team=sre`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: validateSearch,
	RunE:    runSearch,
}

func init() {
	SearchCmd.Flags().StringVar(&searchIndex, "index", "", "Index to search (defaults to the configured default index)")
	SearchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum number of results (defaults to the configured limit)")
	SearchCmd.Flags().Float32Var(&searchMinRelevance, "min-relevance", 0, "Drop results scoring below this threshold")
	SearchCmd.Flags().StringToStringVar(&searchFilters, "filter", nil, "Filter results by field equality (repeatable, key=value)")
}

func validateSearch(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	rt, err := cmdutil.RuntimeFrom(cmd)
	if err != nil {
		return err
	}

	svc, err := service.New(rt.Config, rt.Logger)
	if err != nil {
		return err
	}

	req := search.SearchRequest{
		Index:        searchIndex,
		Query:        strings.Join(args, " "),
		Limit:        searchLimit,
		MinRelevance: searchMinRelevance,
	}
	if len(searchFilters) > 0 {
		req.Filters = make(map[string]any, len(searchFilters))
		for k, v := range searchFilters {
			req.Filters[k] = v
		}
	}

	results, err := svc.Search(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if results.Empty() {
		fmt.Fprintln(out, "No results.")
		return nil
	}

	for i, c := range results.Citations {
		fmt.Fprintf(out, "%d. %s (relevance %.3f)\n", i+1, c.Source, c.RelevanceScore)
		if c.Title != "" {
			fmt.Fprintf(out, "   %s\n", strings.Join(append(c.TitleHierarchy, c.Title), " > "))
		}
		fmt.Fprintf(out, "   %s\n\n", indentContent(c.Content))
	}
	return nil
}

// indentContent aligns multi-line chunk text under its citation line.
func indentContent(content string) string {
	return strings.ReplaceAll(strings.TrimSpace(content), "\n", "\n   ")
}
