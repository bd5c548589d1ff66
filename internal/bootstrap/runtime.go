// Package bootstrap wires the process-level runtime: database, Redis, tracing and
// optional preset data.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"sapp/internal/cache"
	"sapp/internal/config"
	"sapp/internal/database"
	"sapp/internal/middleware"
	"sapp/internal/observability"
	"sapp/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedPresets installs the built-in learning path presets when they are missing.
	SeedPresets bool
}

// InitRuntime connects to the database and Redis and optionally installs presets.
// Redis is optional: an unreachable server yields a nil client.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedPresets {
		created, err := seed.Presets(ctx, db)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to seed learning path presets: %w", err)
		}
		if created > 0 {
			middleware.Logger.InfoContext(ctx, "learning path presets installed", slog.Int("created", created))
		}
	}

	return db, r, nil
}

// InitTracing configures the OpenTelemetry tracer from cfg and returns its shutdown func.
func InitTracing(cfg *config.Config, serviceName, version string) (func(context.Context) error, error) {
	return observability.InitTracing(observability.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: version,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
}
