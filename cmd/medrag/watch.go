package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/4thel00z/medrag/internal"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func NewWatchCmd(svc func() *internal.IndexService, logger *log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the index when the corpus changes",
		Long:  `Watch the data directory and rebuild the index after each burst of changes.`,
		RunE:  makeWatchRunner(svc, logger),
	}

	cmd.Flags().Duration("debounce", 2*time.Second, "Debounce window for batching changes")
	return cmd
}

func makeWatchRunner(svc func() *internal.IndexService, logger *log.Logger) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		scopeHint, _ := cmd.Flags().GetString("scope")
		debounce, _ := cmd.Flags().GetDuration("debounce")

		dataDir, indexPath, err := svc().Paths(scopeHint)
		if err != nil {
			return err
		}
		if _, err := os.Stat(dataDir); os.IsNotExist(err) {
			return fmt.Errorf("data directory %s: %w", dataDir, internal.ErrNotFound)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer watcher.Close()

		if err := addWatchDirs(watcher, dataDir); err != nil {
			return fmt.Errorf("add watch dirs: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes...\n", dataDir)

		timer := time.NewTimer(0)
		if !timer.Stop() {
			<-timer.C
		}
		pending := false

		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if shouldIgnoreEvent(event, indexPath) {
					continue
				}
				if event.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = addWatchDirs(watcher, event.Name)
					}
				}
				if !pending {
					timer.Reset(debounce)
					pending = true
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Warn("watch error", "err", err)
			case <-timer.C:
				pending = false
				stats, buildErr := svc().Build(cmd.Context(), internal.BuildIndexInput{Scope: scopeHint})
				if buildErr != nil {
					logger.Error("rebuild failed", "err", buildErr)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] reindexed %d chunks\n",
					time.Now().Format("15:04:05"), stats.Chunks)
			}
		}
	}
}

func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		if info.IsDir() {
			base := filepath.Base(path)
			if strings.HasPrefix(base, ".") && path != root {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

// shouldIgnoreEvent drops events from the index itself, temp and hidden
// files, and pure metadata changes.
func shouldIgnoreEvent(event fsnotify.Event, indexPath string) bool {
	if indexPath != "" && (event.Name == indexPath || strings.HasPrefix(event.Name, indexPath+string(filepath.Separator))) {
		return true
	}

	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") && base != internal.IgnoreFilename {
		return true
	}
	if strings.HasSuffix(base, ".tmp") {
		return true
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return true
	}

	return false
}
