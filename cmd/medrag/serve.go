package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/4thel00z/medrag/internal"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func NewServeCmd(svc func() *internal.AnswerService, sessions *internal.SessionStore, logger *log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web chat",
		Long:  `Serve the browser chat UI. Answers come from the indexed corpus.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scopeHint, _ := cmd.Flags().GetString("scope")
			addr, _ := cmd.Flags().GetString("addr")
			provider, _ := cmd.Flags().GetString("provider")

			if addr == "" {
				cfg, err := svc().Config(scopeHint)
				if err != nil {
					return err
				}
				addr = cfg.Server.Addr
			}

			answerer := svc().Answerer(internal.AskInput{Scope: scopeHint, Provider: provider})
			srv := &http.Server{
				Addr:              addr,
				Handler:           internal.NewChatServer(answerer, sessions, logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Serving chat on %s\n", addr)
			return serveUntilDone(cmd.Context(), srv, logger)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default server.addr)")
	cmd.Flags().StringP("provider", "p", "", "Generation provider (default from config)")
	return cmd
}

func serveUntilDone(ctx context.Context, srv *http.Server, logger *log.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
