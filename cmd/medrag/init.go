package main

import (
	"fmt"
	"os"

	"github.com/4thel00z/medrag/internal"
	"github.com/spf13/cobra"
)

func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a medrag project",
		Long:  `Write a default .medrag/config.yaml in the current directory.`,
		RunE:  runInit,
	}

	cmd.Flags().Bool("global", false, "Initialize global scope (~/.medrag)")
	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	isGlobal, _ := cmd.Flags().GetBool("global")

	resolver := internal.NewScopeResolver()

	var scope internal.Scope
	if isGlobal {
		scope = resolver.Global()
	} else {
		var err error
		if scope, err = resolver.Here(); err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
	}

	if _, err := os.Stat(scope.ConfigPath()); err == nil {
		return fmt.Errorf("already initialized at %s", scope.StatePath)
	}

	cfg := internal.DefaultConfig()
	if err := internal.SaveConfig(scope, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	if err := os.MkdirAll(scope.Abs(cfg.Data.Path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized medrag at %s\n", scope.StatePath)
	return nil
}
