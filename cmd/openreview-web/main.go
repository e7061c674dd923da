package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/openreview/openreview-web/frontend/internal/router"
	"github.com/openreview/openreview-web/frontend/internal/setup"
	"github.com/openreview/openreview-web/shared/config"
	"github.com/openreview/openreview-web/shared/logger"
)

const (
	readTimeout     = 10 * time.Second
	shutdownTimeout = 15 * time.Second
	// on top of the long-poll timeout
	writeTimeoutSlack = 10 * time.Second
)

var configFolder string

var rootCmd = &cobra.Command{
	Use:           "openreview-web",
	Short:         "OpenReview signup, profile claim and password reset pages",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Load and validate the configuration, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFolder)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "config ok: env=%s port=%s api=%s\n", cfg.Public.Env, cfg.Public.Port, cfg.Public.APIBaseURL)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFolder, "config", "config", "path to folder with public.yaml and private.yaml")
	rootCmd.AddCommand(serveCmd, checkConfigCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("exiting")
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load(configFolder)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Initialize(cfg.Public.LogLevel, strings.EqualFold(cfg.Public.LogFormat, "json"))

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up dependencies: %w", err)
	}
	defer deps.Close()

	server := &http.Server{
		Addr:         ":" + cfg.Public.Port,
		Handler:      router.New(deps),
		ReadTimeout:  readTimeout,
		WriteTimeout: cfg.Public.PollTimeout + writeTimeoutSlack,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info().Str("addr", server.Addr).Str("env", cfg.Public.Env).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
