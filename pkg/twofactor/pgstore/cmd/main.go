package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically

	"github.com/immigration-ai/authkit/pkg/twofactor/pgstore"
)

// Applies the two-factor schema migrations against the database from
// PG_CONN_URL. Meant for deploy pipelines that migrate before rolling the
// service; the service itself can also call pgstore.Migrate on startup.
func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := context.Background()

	var cfg pgstore.Config
	if err := env.Parse(&cfg); err != nil {
		log.ErrorContext(ctx, "Failed to parse config", "error", err)
		os.Exit(1)
	}

	pool, err := pgstore.Connect(ctx, cfg)
	if err != nil {
		log.ErrorContext(ctx, "Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pgstore.Healthcheck(pool)(ctx); err != nil {
		log.ErrorContext(ctx, "Database healthcheck failed", "error", err)
		os.Exit(1)
	}

	if err := pgstore.Migrate(ctx, pool, cfg, log); err != nil {
		log.ErrorContext(ctx, "Failed to apply migrations", "error", err)
		os.Exit(1)
	}

	log.InfoContext(ctx, "Two-factor schema migrations applied")
}
