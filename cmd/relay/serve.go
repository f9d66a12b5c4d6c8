package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"slskdrelay/internal/api/handlers"
	"slskdrelay/internal/config"
	"slskdrelay/internal/core"
	"slskdrelay/internal/external"
	"slskdrelay/internal/notifications/relay"
	"slskdrelay/internal/notifications/translate"
	"slskdrelay/internal/notifications/webhook"
)

// discordBreakerName names the outbound breaker and its health component.
const discordBreakerName = "discord"

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook relay server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

// runServe loads configuration, wires the relay and serves until SIGINT or
// SIGTERM. Configuration errors abort startup with a non-zero exit.
func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(nil)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	logger.Info("slskd relay starting",
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"addr", cfg.Server.Addr(),
		"path", cfg.Server.Path,
		"discord_webhook", cfg.Discord.WebhookURL.Hint(),
		"mention_enabled", cfg.Discord.MentionUserID != "",
	)

	srv, err := buildServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("building server: %w", err)
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.Addr(), err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serveHTTP(ctx, ln, srv.Handler(), cfg.Server, logger)
}

// buildServer wires client, sink, translator, dispatcher and handler onto
// the core chassis.
func buildServer(cfg *config.Config, logger *slog.Logger) (*core.Server, error) {
	client := external.NewBaseClient(&http.Client{}, discordBreakerName, cfg.Discord.UserAgent)

	sink, err := webhook.NewDiscordSink(cfg.Discord, client, logger)
	if err != nil {
		return nil, err
	}

	translator := translate.New(translate.Options{
		MentionUserID: cfg.Discord.MentionUserID,
		SourceBaseURL: cfg.Slskd.URL,
		Username:      cfg.Discord.Username,
		AvatarURL:     cfg.Discord.AvatarURL,
	})
	dispatcher := relay.NewDispatcher(translator, sink, logger)
	webhookHandler := handlers.NewWebhookHandler(dispatcher, cfg.Server.Path, cfg.Server.MaxBodyBytes, logger)

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return nil, err
	}
	srv.HealthProbes = []core.HealthProbe{external.NewBreakerProbe(client)}
	srv.RouteRegistrars = []func(chi.Router){webhookHandler.RegisterRoutes}
	srv.MountRoutes()

	return srv, nil
}

// serveHTTP serves handler on ln until ctx is cancelled or the server fails,
// then drains in-flight requests within cfg.ShutdownTimeout.
func serveHTTP(ctx context.Context, ln net.Listener, handler http.Handler, cfg config.ServerConfig, logger *slog.Logger) error {
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("initiating graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down HTTP server: %w", err)
		}
		logger.Info("server stopped cleanly")
		return nil
	})

	return g.Wait()
}
