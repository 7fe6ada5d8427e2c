package main

import (
	"fmt"

	"github.com/4thel00z/medrag/internal"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func NewChatCmd(svc func() *internal.AnswerService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat in the terminal",
		Long:  `Open an interactive terminal chat answered from the indexed corpus.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scopeHint, _ := cmd.Flags().GetString("scope")
			provider, _ := cmd.Flags().GetString("provider")
			k, _ := cmd.Flags().GetInt("top-k")

			answerer := svc().Answerer(internal.AskInput{Scope: scopeHint, Provider: provider, K: k})
			model := internal.NewChatModel(cmd.Context(), answerer)

			p := tea.NewProgram(model,
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithAltScreen(),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run chat: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntP("top-k", "k", 0, "Chunks to retrieve (overrides retrieval.k)")
	cmd.Flags().StringP("provider", "p", "", "Generation provider (default from config)")
	return cmd
}
