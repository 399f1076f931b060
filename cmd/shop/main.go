package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"storefront/internal/logging"
	"storefront/internal/storefront"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8080", "storefront API base URL")
	logLevel := flag.String("log-level", "warn", "log level for diagnostics on stderr")
	flag.Parse()

	logger := logging.NewWithWriter(zerolog.ConsoleWriter{Out: os.Stderr}, "storefront-shop", *logLevel)
	client := storefront.NewClient(*apiURL, storefront.WithLogger(logger))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sh := newShell(client, storefront.NewSession(), os.Stdout)
	if err := sh.run(ctx, os.Stdin); err != nil {
		logger.Error().Err(err).Msg("shell stopped")
		os.Exit(1)
	}
}
