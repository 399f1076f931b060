package main

import (
	"context"
	"flag"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logging"
	"storefront/internal/migrate"
	"storefront/internal/seed"
)

func main() {
	withSeed := flag.Bool("seed", true, "insert the sample catalog when the products table is empty")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("storefront-migrate", "info")
		bootLogger.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New("storefront-migrate", cfg.LogLevel)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	version, err := migrate.Apply(ctx, pool)
	if err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}
	logger.Info().Uint("version", version).Msg("migrations applied")

	if !*withSeed {
		return
	}
	inserted, err := seed.Apply(ctx, pool)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed catalog")
	}
	logger.Info().Int("inserted", inserted).Msg("seed applied")
}
