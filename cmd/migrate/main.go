// Package main applies the snapshot schema migrations.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/statengine/internal/config"
	"github.com/cory-johannsen/statengine/internal/observability"
	"github.com/cory-johannsen/statengine/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of migrations to apply (0 = all)")
	dir := flag.String("migrations", "migrations", "path to the migrations directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	res, err := postgres.Migrate(cfg.Database.DSN(), *dir, postgres.Direction(*direction), *steps)
	if err != nil {
		logger.Fatal("migration failed",
			zap.String("direction", *direction),
			zap.Uint("version", res.From),
			zap.Error(err),
		)
	}
	logger.Info("migration finished",
		zap.String("direction", *direction),
		zap.Uint("from", res.From),
		zap.Uint("to", res.To),
		zap.Bool("dirty", res.Dirty),
		zap.Bool("changed", res.Changed),
		zap.Duration("elapsed", time.Since(start)),
	)
}
