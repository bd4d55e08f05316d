// Package ask implements the ask command for grounded question answering.
package ask

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillmem/quill/internal/cmdutil"
	"github.com/quillmem/quill/internal/search"
	"github.com/quillmem/quill/internal/service"
)

// Flag variables for the ask command.
var (
	askIndex        string
	askLimit        int
	askMinRelevance float32
	askFilters      map[string]string
	askNoSources    bool
)

// AskCmd is the ask command for answering questions from stored memories.
var AskCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from stored memories",
	Long: "Answer a question from stored memories.\n\n" +
		"Relevant chunks are retrieved from the vector store and passed to the " +
		"chat model as grounding facts. The answer streams to stdout as it is " +
		"generated, followed by the cited sources. If nothing relevant is " +
		"stored, the command reports that the information was not found.",
	Example: `  # Ask against the default index
  quill ask "when do deployments run"

  # Ask against a named index, restricted by tag
  quill ask "who is oncall" --index=ops --filter team=sre

  # Suppress the source listing
  quill ask "when do deployments run" --no-sources`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: validateAsk,
	RunE:    runAsk,
}

func init() {
	AskCmd.Flags().StringVar(&askIndex, "index", "", "Index to ask against (defaults to the configured default index)")
	AskCmd.Flags().IntVar(&askLimit, "limit", 0, "Maximum number of grounding facts (defaults to the configured limit)")
	AskCmd.Flags().Float32Var(&askMinRelevance, "min-relevance", 0, "Drop grounding facts scoring below this threshold")
	AskCmd.Flags().StringToStringVar(&askFilters, "filter", nil, "Filter grounding facts by field equality (repeatable, key=value)")
	AskCmd.Flags().BoolVar(&askNoSources, "no-sources", false, "Do not print the cited sources after the answer")
}

func validateAsk(cmd *cobra.Command, args []string) error {
	// All errors after this are runtime errors
	cmd.SilenceUsage = true
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	rt, err := cmdutil.RuntimeFrom(cmd)
	if err != nil {
		return err
	}

	svc, err := service.New(rt.Config, rt.Logger)
	if err != nil {
		return err
	}

	req := search.AskRequest{
		Index:        askIndex,
		Question:     strings.Join(args, " "),
		Limit:        askLimit,
		MinRelevance: askMinRelevance,
	}
	if len(askFilters) > 0 {
		req.Filters = make(map[string]any, len(askFilters))
		for k, v := range askFilters {
			req.Filters[k] = v
		}
	}

	answers, err := svc.AskStream(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var sources []search.Citation
	for answer := range answers {
		if len(answer.Sources) > 0 {
			sources = answer.Sources
		}
		fmt.Fprint(out, answer.Text)
		if answer.Usage != nil {
			rt.Logger.Debug("chat completion usage",
				"model", answer.Usage.Model,
				"input_tokens", answer.Usage.InputTokens,
				"output_tokens", answer.Usage.OutputTokens)
		}
	}
	fmt.Fprintln(out)

	if !askNoSources && len(sources) > 0 {
		fmt.Fprintln(out, "\nSources:")
		for _, c := range sources {
			fmt.Fprintf(out, "  - %s (relevance %.3f)\n", c.Source, c.RelevanceScore)
		}
	}

	return nil
}
