package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/learnhub/backend/internal/config"
	"github.com/learnhub/backend/internal/db"
	"github.com/learnhub/backend/internal/handlers"
	"github.com/learnhub/backend/internal/httpserver"
	"github.com/learnhub/backend/internal/logging"
	"github.com/learnhub/backend/internal/metrics"
	"github.com/learnhub/backend/internal/middleware"
)

// Run bootstraps the LearnHub backend application.
func Run(ctx context.Context, args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "learnhub",
		Short:         "LearnHub backend: video catalogue, uploads, email and checkout",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSeedCmd())

	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	ctx = logging.WithLogger(ctx, logger)

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	m := metrics.New()
	c, err := buildDependencies(ctx, pool, cfg, m)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, c.deps)

	// Metrics sits directly on the mux so the matched pattern is visible to it.
	handler := middleware.Chain(mux,
		middleware.RequestLogger(logger),
		middleware.Identity(c.verifier),
		middleware.Metrics(m),
	)

	srv := httpserver.New(cfg.AppPort, handler)

	logger.Info("starting http server", "port", cfg.AppPort, "email_ready", c.deps.EmailReady)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down http server", "cause", context.Cause(ctx))
	case err := <-srvErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	return errors.Join(srv.Shutdown(shutdownCtx), c.cleanup(shutdownCtx))
}
