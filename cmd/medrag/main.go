package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/4thel00z/medrag/internal"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(os.Stderr)
	rootCmd := NewRootCmd(version, app)
	if err := fang.Execute(ctx, rootCmd); err != nil {
		stop()
		os.Exit(1)
	}
}

type app struct {
	logger      *log.Logger
	resolver    *internal.ScopeResolver
	indexSvc    *internal.IndexService
	answerSvc   *internal.AnswerService
	providerSvc *internal.ProviderService
	sessions    *internal.SessionStore
}

func newApp(logOut io.Writer) *app {
	logger := log.NewWithOptions(logOut, log.Options{
		ReportTimestamp: true,
		Prefix:          "medrag",
	})
	resolver := internal.NewScopeResolver()

	return &app{
		logger:      logger,
		resolver:    resolver,
		indexSvc:    internal.NewIndexService(resolver, logger),
		answerSvc:   internal.NewAnswerService(resolver, internal.DefaultGeneratorFactory, logger),
		providerSvc: internal.NewProviderService(resolver, internal.DefaultGeneratorFactory),
		sessions:    internal.NewSessionStore(),
	}
}
