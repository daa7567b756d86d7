package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/schematiq/schematiq/internal/config"
	"github.com/schematiq/schematiq/internal/llm"
	"github.com/schematiq/schematiq/internal/planning"
	"github.com/schematiq/schematiq/internal/store"
	"github.com/schematiq/schematiq/internal/telemetry"
)

// planStore is what every storage driver offers the engine.
type planStore interface {
	planning.Store
	Close() error
}

type memoryStore struct{ *store.Memory }

func (memoryStore) Close() error { return nil }

func openStore(cfg config.StoreConfig) (planStore, error) {
	switch cfg.Driver {
	case "", "memory":
		return memoryStore{store.NewMemory()}, nil
	case "sqlite":
		s, err := store.NewSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func openTelemetry(cfg config.TelemetryConfig) telemetry.Client {
	if !cfg.Enabled {
		return telemetry.NewNoopClient()
	}
	c, err := telemetry.New(telemetry.ClientConfig{
		APIKey:   cfg.APIKey,
		Endpoint: cfg.Endpoint,
		Version:  version,
	})
	if err != nil {
		slog.Warn("telemetry disabled", "error", err)
		return telemetry.NewNoopClient()
	}
	return c
}

// backend holds the services shared by serve and the plan commands.
type backend struct {
	cfg     *config.AppConfig
	store   planStore
	gateway *llm.Gateway
	events  telemetry.Client
	engine  *planning.Engine
}

func newBackend(ctx context.Context, cfg *config.AppConfig) (*backend, error) {
	llmCfg, err := cfg.LLMClientConfig()
	if err != nil {
		return nil, err
	}
	gw, err := llm.New(ctx, llmCfg)
	if err != nil {
		return nil, fmt.Errorf("create model gateway: %w", err)
	}

	st, err := openStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	events := openTelemetry(cfg.Telemetry)

	slog.Debug("backend ready",
		"provider", llmCfg.Provider,
		"model", llmCfg.Model,
		"store", cfg.Store.Driver)

	return &backend{
		cfg:     cfg,
		store:   st,
		gateway: gw,
		events:  events,
		engine:  planning.NewEngine(st, gw, planning.WithTelemetry(events)),
	}, nil
}

func (r *backend) Close() {
	if err := r.events.Close(); err != nil {
		slog.Debug("close telemetry", "error", err)
	}
	if err := r.store.Close(); err != nil {
		slog.Warn("close store", "error", err)
	}
}
