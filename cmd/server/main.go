package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/duel-backend/internal/config"
	"github.com/DoyleJ11/duel-backend/internal/httpapi"
	"github.com/DoyleJ11/duel-backend/internal/hub"
	"github.com/DoyleJ11/duel-backend/internal/logging"
	"github.com/DoyleJ11/duel-backend/internal/ws"
)

// Version is set via ldflags.
var Version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "server",
	Short:         "Head-to-head speedcubing duel server",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve duels over websockets",
	Long: `Serve duels over websockets.

Configuration comes from DUEL_* environment variables, optionally loaded
from .env files first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		envFiles, _ := cmd.Flags().GetStringSlice("env-file")
		cfg, err := config.Load(envFiles...)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}

		log, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, log)
	},
}

func init() {
	serveCmd.Flags().StringSlice("env-file", nil, "env files to load before reading the environment")
	serveCmd.Flags().String("addr", ":8080", "listen address (overrides DUEL_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	reg := ws.NewRegistry(log)
	h := hub.NewHub(reg, log)
	sweeper := hub.NewSweeper(h, cfg.SweepInterval, cfg.UnmatchedTTL, log)

	// Build the router *with* the hub injected
	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: httpapi.SetupRoutes(h, reg, ws.Options{
			OutboxSize:     cfg.OutboxSize,
			WriteTimeout:   cfg.WriteTimeout,
			PingInterval:   cfg.PingInterval,
			OriginPatterns: cfg.OriginPatterns,
		}, log),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return h.Run(ctx) })
	g.Go(func() error { return sweeper.Run(ctx) })
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		var err error
		err = multierr.Append(err, srv.Shutdown(shutdownCtx))
		if err != nil {
			err = multierr.Append(err, srv.Close())
		}
		return err
	})

	err := g.Wait()
	log.Info("server stopped", zap.Error(err))
	return err
}
