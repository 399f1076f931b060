package main

import (
	"context"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logging"
	"storefront/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("storefront-seed", "info")
		bootLogger.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New("storefront-seed", cfg.LogLevel)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	inserted, err := seed.Apply(ctx, pool)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed apply")
	}
	if inserted == 0 {
		logger.Info().Msg("products table not empty, seed skipped")
		return
	}
	logger.Info().Int("inserted", inserted).Msg("seed applied")
}
