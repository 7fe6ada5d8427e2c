package main

import (
	"fmt"
	"strings"

	"github.com/4thel00z/medrag/internal"
	"github.com/spf13/cobra"
)

func NewIndexCmd(svc func() *internal.IndexService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build or inspect the vector index",
		Long:  `Build the vector index from the data directory, or show the persisted one.`,
	}

	cmd.AddCommand(
		newIndexBuildCmd(svc),
		newIndexStatusCmd(svc),
	)

	return cmd
}

func newIndexBuildCmd(svc func() *internal.IndexService) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Rebuild the index from the data directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			scopeHint, _ := cmd.Flags().GetString("scope")
			asJSON, _ := cmd.Flags().GetBool("json")
			dataDir, _ := cmd.Flags().GetString("data")
			format, _ := cmd.Flags().GetString("format")

			stats, err := svc().Build(cmd.Context(), internal.BuildIndexInput{
				Scope:   scopeHint,
				DataDir: dataDir,
				Format:  format,
			})
			if err != nil {
				return fmt.Errorf("build index: %w", err)
			}

			if asJSON {
				return writeJSON(cmd, stats)
			}

			for _, name := range stats.Fetched {
				fmt.Fprintf(cmd.OutOrStdout(), "Fetched %s\n", name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d chunks from %d documents into %s (%s)\n",
				stats.Chunks, stats.Documents, stats.Path, stats.Format)
			return nil
		},
	}

	cmd.Flags().String("data", "", "Data directory (overrides data.path)")
	cmd.Flags().String("format", "", "Index format (gob|sqlite)")
	return cmd
}

func newIndexStatusCmd(svc func() *internal.IndexService) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the persisted index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			scopeHint, _ := cmd.Flags().GetString("scope")
			asJSON, _ := cmd.Flags().GetBool("json")

			stats, err := svc().Status(cmd.Context(), scopeHint)
			if err != nil {
				return fmt.Errorf("index status: %w", err)
			}

			if asJSON {
				return writeJSON(cmd, stats)
			}

			out := cmd.OutOrStdout()
			revision := stats.Revision
			if revision == "" {
				revision = "-"
			}
			fmt.Fprintf(out, "Path:       %s\n", stats.Path)
			fmt.Fprintf(out, "Format:     %s\n", stats.Format)
			fmt.Fprintf(out, "Model:      %s (%d dims)\n", stats.Model, stats.Dimension)
			fmt.Fprintf(out, "Documents:  %d\n", stats.Documents)
			fmt.Fprintf(out, "Chunks:     %d\n", stats.Chunks)
			fmt.Fprintf(out, "Revision:   %s\n", revision)
			fmt.Fprintf(out, "Built:      %s\n", stats.CreatedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "Sources:    %s\n", strings.Join(stats.Sources, ", "))
			return nil
		},
	}
}
