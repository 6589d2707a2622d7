package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName   string
	HTTPPort      string
	StorageDriver string
	PostgresDSN   string
	ProgramID     string
	LogLevel      slog.Level
	LogFormat     string
	EnableSwagger bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "agora"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	driver := strings.TrimSpace(strings.ToLower(os.Getenv("STORAGE_DRIVER")))
	if driver == "" {
		driver = StorageMemory
	}
	switch driver {
	case StorageMemory, StoragePostgres:
	default:
		return Config{}, fmt.Errorf("unsupported STORAGE_DRIVER %q", driver)
	}

	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	if driver == StoragePostgres && dsn == "" {
		return Config{}, fmt.Errorf("POSTGRES_DSN is required when STORAGE_DRIVER=%s", StoragePostgres)
	}

	var level slog.Level
	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL %q: %w", raw, err)
		}
	}

	format := strings.TrimSpace(strings.ToLower(os.Getenv("LOG_FORMAT")))
	if format == "" {
		format = LogFormatJSON
	}
	switch format {
	case LogFormatJSON, LogFormatText:
	default:
		return Config{}, fmt.Errorf("unsupported LOG_FORMAT %q", format)
	}

	return Config{
		ServiceName:   service,
		HTTPPort:      port,
		StorageDriver: driver,
		PostgresDSN:   dsn,
		ProgramID:     strings.TrimSpace(os.Getenv("PROGRAM_ID")),
		LogLevel:      level,
		LogFormat:     format,
		EnableSwagger: envBool("ENABLE_SWAGGER", true),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
