package main

import (
	"fmt"
	"strings"

	"github.com/4thel00z/medrag/internal"
	"github.com/spf13/cobra"
)

const snippetLen = 80

func NewSearchCmd(svc func() *internal.AnswerService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Show the chunks retrieved for a query",
		Long:  `Run retrieval only and print each chunk with its score and origin.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  makeSearchRunner(svc),
	}

	cmd.Flags().IntP("top-k", "k", 0, "Chunks to retrieve (overrides retrieval.k)")
	return cmd
}

func makeSearchRunner(svc func() *internal.AnswerService) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		scopeHint, _ := cmd.Flags().GetString("scope")
		asJSON, _ := cmd.Flags().GetBool("json")
		k, _ := cmd.Flags().GetInt("top-k")

		results, err := svc().Search(cmd.Context(), internal.SearchInput{
			Query: strings.Join(args, " "),
			Scope: scopeHint,
			K:     k,
		})
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}

		if asJSON {
			return outputSearchResultsJSON(cmd, results)
		}

		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No results.")
			return nil
		}
		for _, r := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "%.4f  %s  %s\n", r.Score, r.Chunk.Origin(), snippet(r.Chunk.Text))
		}
		return nil
	}
}

func snippet(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= snippetLen {
		return text
	}
	return string(runes[:snippetLen]) + "..."
}

func outputSearchResultsJSON(cmd *cobra.Command, results []internal.SearchResult) error {
	out := make([]map[string]any, 0, len(results))
	for _, r := range results {
		out = append(out, map[string]any{
			"id":      r.Chunk.ID,
			"source":  r.Chunk.Source,
			"page":    r.Chunk.Page,
			"section": r.Chunk.Section,
			"score":   r.Score,
			"text":    r.Chunk.Text,
		})
	}
	return writeJSON(cmd, out)
}
