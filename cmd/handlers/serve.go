package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aigency/internal/config"
	"aigency/internal/grammar"
	"aigency/internal/logger"
	"aigency/internal/persistence"
	"aigency/internal/server"

	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command for starting the HTTP server
func NewServeCmd() *cobra.Command {
	var (
		port int
		host string
		noDB bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the aigency HTTP API.

The server provides:
  • Topic, full article and per-field generation endpoints
  • Grammar checking
  • Saving and reading generated articles when a database is configured
  • Health check endpoint

Examples:
  # Start server on the configured port
  aigency serve

  # Start on custom port without a database
  aigency serve --port 3000 --no-db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port, host, !noDB)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (default from config: 8000)")
	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (default from config: 0.0.0.0)")
	cmd.Flags().BoolVar(&noDB, "no-db", false, "Run without a database; save routes answer 503")

	return cmd
}

func runServe(port int, host string, useDB bool) error {
	log := logger.Get()
	cfg := config.Get()

	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	gen, err := buildGenerator(false)
	if err != nil {
		return err
	}
	defer gen.Close()

	var checker server.GrammarChecker
	if cfg.Grammar.Enabled {
		checker = grammar.NewFromConfig(cfg.Grammar, logger.With("component", "grammar"))
	}

	var repo persistence.ArticleRepository
	if useDB {
		db, err := openDatabase()
		if err != nil {
			return fmt.Errorf("%w\n\nUse --no-db to start without saving support", err)
		}
		defer db.Close()
		repo = db.Articles()
		log.Info("Database connection successful")
	}

	srv := server.New(gen, checker, repo, serverCfg)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("Server listening on http://%s:%d", serverCfg.Host, serverCfg.Port))
		log.Info("Press Ctrl+C to stop")
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info("Server shutdown initiated", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			config.Duration(serverCfg.ShutdownTimeout, 30*time.Second))
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed, forcing close", "error", err)
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		log.Info("Server stopped successfully")
	}

	return nil
}
