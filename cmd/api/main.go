package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-mail-verify/internal/config"
	"github.com/go-mail-verify/internal/infrastructure/awscfg"
	"github.com/go-mail-verify/internal/infrastructure/dynamo"
	transporthttp "github.com/go-mail-verify/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, reading from environment")
	}
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()

	root := &cobra.Command{
		Use:           "api",
		Short:         "Email verification and transactional mail API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger(cfg))
		},
	}

	var skipBootstrap bool
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg, !skipBootstrap)
		},
	}
	serveCmd.Flags().BoolVar(&skipBootstrap, "skip-bootstrap", false, "do not create missing DynamoDB tables on startup")
	serveCmd.Flags().StringVar(&cfg.AppPort, "port", cfg.AppPort, "listen port (env APP_PORT)")

	bootstrapCmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create DynamoDB tables and TTL settings, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			awsCfg, err := awscfg.Load(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			dynamo.Bootstrap(cmd.Context(), dynamo.NewClient(awsCfg, cfg.AWSEndpointURL), cfg.DynamoTables)
			return nil
		},
	}

	root.AddCommand(serveCmd, bootstrapCmd)
	return root
}

func serve(ctx context.Context, cfg *config.Config, bootstrap bool) error {
	a, err := build(ctx, cfg, bootstrap)
	if err != nil {
		slog.Error("startup failed", "err", err)
		return err
	}
	defer a.close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, a.deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv,
			"code_store", cfg.CodeStore, "mail_provider", cfg.MailProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		slog.Error("server error", "err", err)
		return err
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "err", err)
		return err
	}
	slog.Info("server stopped")
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
