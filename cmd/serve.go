package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/schematiq/schematiq/internal/assist"
	"github.com/schematiq/schematiq/internal/auth"
	"github.com/schematiq/schematiq/internal/config"
	"github.com/schematiq/schematiq/internal/seed"
	"github.com/schematiq/schematiq/internal/server"
)

const shutdownTimeout = 10 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the planning HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
		watchConfig()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context, cfg *config.AppConfig) error {
	if cfg.Auth.Secret == config.DevSecret {
		slog.Warn("using the development signing secret; set auth.secret in production")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rt, err := newBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	tokens, err := auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.TTL)
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DevTokens:      cfg.Server.DevTokens,
		DevUser:        seed.DefaultOwner,
	}, rt.engine, assist.NewService(rt.gateway), tokens)

	var wg sync.WaitGroup
	if cfg.Seed.Enabled {
		seeds, err := seedFile(cfg.Seed)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			seed.Apply(ctx, rt.engine, seeds)
		}()
	}

	errChan := make(chan error, 1)
	srv.Start(&wg, errChan)
	slog.Info("API server listening", "addr", srv.Addr(), "dev_tokens", cfg.Server.DevTokens)

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err = <-errChan:
		slog.Error("server stopped", "error", err)
	}

	// Stops any seeding still in flight.
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		slog.Warn("graceful shutdown failed", "error", serr)
	}
	wg.Wait()
	return err
}

func seedFile(cfg config.SeedConfig) (*seed.File, error) {
	if cfg.File == "" {
		return seed.Defaults(), nil
	}
	f, err := seed.NewOsLoader().Load(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("load seeds: %w", err)
	}
	return f, nil
}
