package main

import (
	"fmt"
	"strings"

	"github.com/4thel00z/medrag/internal"
	"github.com/spf13/cobra"
)

func NewAskCmd(svc func() *internal.AnswerService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the indexed corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE:  makeAskRunner(svc),
	}

	cmd.Flags().IntP("top-k", "k", 0, "Chunks to retrieve (overrides retrieval.k)")
	cmd.Flags().StringP("provider", "p", "", "Generation provider (default from config)")
	return cmd
}

func makeAskRunner(svc func() *internal.AnswerService) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		scopeHint, _ := cmd.Flags().GetString("scope")
		asJSON, _ := cmd.Flags().GetBool("json")
		k, _ := cmd.Flags().GetInt("top-k")
		provider, _ := cmd.Flags().GetString("provider")

		question, err := internal.ValidateQuestion(strings.Join(args, " "))
		if err != nil {
			return err
		}

		answer, err := svc().Ask(cmd.Context(), internal.AskInput{
			Question: question,
			Scope:    scopeHint,
			Provider: provider,
			K:        k,
		})
		if err != nil {
			return fmt.Errorf("ask: %w", err)
		}

		if asJSON {
			return writeJSON(cmd, map[string]string{
				"question": question,
				"answer":   answer,
			})
		}

		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	}
}
