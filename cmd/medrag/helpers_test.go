package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/4thel00z/medrag/internal"
	"github.com/spf13/cobra"
)

// setupProject chdirs into a fresh project that embeds with the hash
// backend and holds a two-file corpus.
func setupProject(t *testing.T) internal.Scope {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", t.TempDir())

	origWd, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(root); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	scope := internal.Scope{
		Type:      internal.ScopeProject,
		Path:      root,
		StatePath: filepath.Join(root, internal.StateDirName),
	}

	cfg := internal.DefaultConfig()
	cfg.Embeddings = internal.EmbeddingsConfig{Backend: internal.BackendHash, Dimension: 64, BatchSize: 8}
	if err := internal.SaveConfig(scope, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}

	data := filepath.Join(root, "data")
	if err := os.MkdirAll(data, 0755); err != nil {
		t.Fatalf("mkdir data: %v", err)
	}
	files := map[string]string{
		"fever.txt":   "Fever is a symptom of infection.",
		"aspirin.txt": "Aspirin reduces fever and pain.",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(data, name), []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	return scope
}

func stubApp(answer string) *app {
	a := newApp(io.Discard)
	stub := func(ctx context.Context, cfg internal.GeneratorConfig) (internal.Generator, error) {
		return internal.GeneratorFunc(func(ctx context.Context, prompt string) (internal.RawOutput, error) {
			return internal.TextOutput(answer), nil
		}), nil
	}
	a.answerSvc = internal.NewAnswerService(a.resolver, stub, a.logger)
	a.providerSvc = internal.NewProviderService(a.resolver, stub)
	return a
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
