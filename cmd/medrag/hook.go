package main

import (
	"fmt"

	"github.com/4thel00z/medrag/internal"
	"github.com/spf13/cobra"
)

func NewHookCmd(svc func() *internal.IndexService) *cobra.Command {
	hookCmd := &cobra.Command{
		Use:   "hook",
		Short: "Rebuild the index on every corpus commit",
		Long:  `Install or remove a git post-commit hook in the repository holding the data directory.`,
	}

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install the post-commit hook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, _ := cmd.Flags().GetBool("force")
			gitDir, err := corpusGitDir(cmd, svc)
			if err != nil {
				return err
			}
			path, err := internal.InstallHook(gitDir, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Installed post-commit hook at %s\n", path)
			return nil
		},
	}
	installCmd.Flags().Bool("force", false, "Overwrite existing hook (backs up original)")

	uninstallCmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the post-commit hook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			gitDir, err := corpusGitDir(cmd, svc)
			if err != nil {
				return err
			}
			if err := internal.UninstallHook(gitDir); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Uninstalled post-commit hook")
			return nil
		},
	}

	runCmd := &cobra.Command{
		Use:    "run [hook-type]",
		Short:  "Execute a hook handler",
		Args:   cobra.ExactArgs(1),
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] != "post-commit" {
				return fmt.Errorf("unsupported hook type: %s", args[0])
			}
			scopeHint, _ := cmd.Flags().GetString("scope")

			// A failed rebuild must never fail the commit.
			stats, err := svc().Build(cmd.Context(), internal.BuildIndexInput{Scope: scopeHint})
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "medrag hook: %v\n", err)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "medrag: reindexed %d chunks\n", stats.Chunks)
			return nil
		},
	}

	hookCmd.AddCommand(installCmd, uninstallCmd, runCmd)
	return hookCmd
}

func corpusGitDir(cmd *cobra.Command, svc func() *internal.IndexService) (string, error) {
	scopeHint, _ := cmd.Flags().GetString("scope")
	dataDir, _, err := svc().Paths(scopeHint)
	if err != nil {
		return "", err
	}
	return internal.FindGitDir(dataDir)
}
