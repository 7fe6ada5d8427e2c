package main

import (
	"fmt"

	"github.com/4thel00z/medrag/internal"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func NewRootCmd(version string, a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "medrag",
		Short:         "Retrieval-augmented medical question answering",
		Long:          `Index a medical document corpus and answer questions grounded in it.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)

	if a != nil {
		rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
			return applyLogLevel(cmd, a.logger)
		}
		addSubcommands(rootCmd, a)
	}

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("scope", "", "Target scope (global|project)")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug|info|warn|error)")
}

func applyLogLevel(cmd *cobra.Command, logger *log.Logger) error {
	name, _ := cmd.Flags().GetString("log-level")
	level, err := log.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", name, err)
	}
	logger.SetLevel(level)
	return nil
}

func addSubcommands(root *cobra.Command, a *app) {
	index := func() *internal.IndexService { return a.indexSvc }
	answer := func() *internal.AnswerService { return a.answerSvc }
	provider := func() *internal.ProviderService { return a.providerSvc }

	root.AddCommand(
		NewInitCmd(),
		NewIndexCmd(index),
		NewAskCmd(answer),
		NewSearchCmd(answer),
		NewChatCmd(answer),
		NewServeCmd(answer, a.sessions, a.logger),
		NewWatchCmd(index, a.logger),
		NewProviderCmd(provider),
		NewHookCmd(index),
	)
}
