package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	pollprogram "agora/contexts/governance/poll-program"
	"agora/contexts/governance/poll-program/adapters/memory"
	postgresadapter "agora/contexts/governance/poll-program/adapters/postgres"
	"agora/contexts/governance/poll-program/domain/address"
	"agora/internal/platform/config"
	"agora/internal/platform/db"
	"agora/internal/platform/httpserver"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type MigrateApp struct {
	postgres *db.Postgres
	repo     *postgresadapter.Repository
	logger   *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return BuildAPIFromConfig(cfg, os.Stderr)
}

// BuildAPIFromConfig wires the API process. Logs go to out.
func BuildAPIFromConfig(cfg config.Config, out io.Writer) (*APIApp, error) {
	logger := NewLogger(cfg, out).With("service", cfg.ServiceName, "process", "api")

	program, err := resolveProgram(cfg.ProgramID)
	if err != nil {
		return nil, err
	}

	app := &APIApp{logger: logger}
	var module pollprogram.Module
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pg, err := db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		app.postgres = pg
		module = pollprogram.NewModule(pollprogram.Dependencies{
			Ledger:  postgresadapter.NewRepository(pg.DB, logger),
			Clock:   postgresadapter.SystemClock{},
			Program: program,
			Logger:  logger,
		})
	default:
		store := memory.NewStore()
		module = pollprogram.NewModule(pollprogram.Dependencies{
			Ledger:  store,
			Clock:   store,
			Program: program,
			Logger:  logger,
		})
		module.Store = store
	}

	logger.Info("api app wired",
		"event", "bootstrap_api_wired",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"storage_driver", cfg.StorageDriver,
		"program_id", program.ID.String(),
	)
	app.server = httpserver.New(module, logger, httpserver.Options{
		Addr:          normalizeAddr(cfg.HTTPPort),
		EnableSwagger: cfg.EnableSwagger,
	})
	return app, nil
}

func BuildMigrate() (*MigrateApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := NewLogger(cfg, os.Stderr).With("service", cfg.ServiceName, "process", "migrate")
	if cfg.StorageDriver != config.StoragePostgres {
		return nil, fmt.Errorf("migrate requires STORAGE_DRIVER=%s", config.StoragePostgres)
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	return &MigrateApp{
		postgres: pg,
		repo:     postgresadapter.NewRepository(pg.DB, logger),
		logger:   logger,
	}, nil
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(cfg config.Config, out io.Writer) *slog.Logger {
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == config.LogFormatText {
		return slog.New(slog.NewTextHandler(out, opts))
	}
	return slog.New(slog.NewJSONHandler(out, opts))
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (m *MigrateApp) Run(ctx context.Context) error {
	if err := m.repo.Migrate(ctx); err != nil {
		return err
	}
	m.logger.Info("poll program schema migrated",
		"event", "bootstrap_migrate_completed",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return nil
}

func (m *MigrateApp) Close() error {
	if m.postgres != nil {
		return m.postgres.Close()
	}
	return nil
}

func resolveProgram(raw string) (address.Program, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return address.NewProgram(address.DefaultProgramID), nil
	}
	id, err := address.Parse(value)
	if err != nil {
		return address.Program{}, fmt.Errorf("invalid PROGRAM_ID: %w", err)
	}
	return address.NewProgram(id), nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
