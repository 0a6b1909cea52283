package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/statengine/internal/config"
	"github.com/cory-johannsen/statengine/internal/content"
	"github.com/cory-johannsen/statengine/internal/game/command"
	"github.com/cory-johannsen/statengine/internal/game/property"
	"github.com/cory-johannsen/statengine/internal/game/state"
	"github.com/cory-johannsen/statengine/internal/observability"
	"github.com/cory-johannsen/statengine/internal/scripting"
	"github.com/cory-johannsen/statengine/internal/server"
	"github.com/cory-johannsen/statengine/internal/storage"
	"github.com/cory-johannsen/statengine/internal/storage/postgres"
	redisstore "github.com/cory-johannsen/statengine/internal/storage/redis"
)

const healthInterval = 30 * time.Second

// RunOptions carries the per-invocation inputs of the run command.
type RunOptions struct {
	// Resume is the id of a stored game to continue; empty starts a new game.
	Resume string
	In     io.Reader
	Out    io.Writer
}

// Stores is the snapshot persistence stack. Postgres and Cache are nil when
// disabled in configuration.
type Stores struct {
	Chain    storage.Chain
	Postgres *postgres.SnapshotRepository
	Cache    *redisstore.SnapshotCache

	pool *postgres.Pool
}

// Persistent reports whether any store outlives the process.
func (s *Stores) Persistent() bool { return s.Postgres != nil || s.Cache != nil }

// App is the assembled engine ready to run.
type App struct {
	Logger    *zap.Logger
	Game      *state.GameState
	Lifecycle *server.Lifecycle
}

// Checker holds what the validate command inspects.
type Checker struct {
	Logger  *zap.Logger
	Content *content.Bundle
	Scripts *scripting.Manager
}

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func provideContent(cfg *config.Config, logger *zap.Logger) (*content.Bundle, error) {
	return content.Load(cfg.Content, logger)
}

func provideScripting(cfg *config.Config, logger *zap.Logger) (*scripting.Manager, func(), error) {
	mgr := scripting.NewManager(logger)
	if dir := cfg.Scripting.ConditionDir; dir != "" {
		if err := mgr.LoadGlobal(dir, cfg.Scripting.InstructionLimit); err != nil {
			mgr.Close()
			return nil, nil, fmt.Errorf("loading condition scripts: %w", err)
		}
	}
	return mgr, mgr.Close, nil
}

func provideEvaluator(mgr *scripting.Manager) property.Evaluator {
	return scripting.NewConditionEvaluator(mgr, scripting.GlobalScope)
}

// provideStores layers an in-process store over the configured Redis cache
// and PostgreSQL repository, fastest first.
func provideStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, func(), error) {
	s := &Stores{Chain: storage.Chain{storage.NewMemory()}}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Redis.Enabled {
		client, err := redisstore.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { _ = client.Close() })
		s.Cache = redisstore.NewSnapshotCache(client, cfg.Redis.KeyPrefix, cfg.Redis.TTL)
		s.Chain = append(s.Chain, s.Cache)
		logger.Info("redis snapshot cache enabled", zap.String("prefix", cfg.Redis.KeyPrefix))
	}

	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, pool.Close)
		s.pool = pool
		s.Postgres = pool.Snapshots()
		s.Chain = append(s.Chain, s.Postgres)
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
	}
	return s, cleanup, nil
}

// provideGame resumes the latest snapshot of opts.Resume, or starts a new
// game seeded with the loaded content.
func provideGame(ctx context.Context, cfg *config.Config, opts RunOptions, bundle *content.Bundle, stores *Stores) (*state.GameState, error) {
	if opts.Resume != "" {
		snap, err := stores.Chain.Latest(ctx, opts.Resume)
		if err != nil {
			return nil, fmt.Errorf("resuming game %s: %w", opts.Resume, err)
		}
		g, err := state.Decode(snap.Data)
		if err != nil {
			return nil, fmt.Errorf("decoding snapshot of %s at tick %d: %w", opts.Resume, snap.Tick, err)
		}
		return g, nil
	}
	g := state.New(
		state.WithVersion(cfg.Engine.Version),
		state.WithPlayerDimensions(cfg.Engine.PlayerDimensions),
	)
	bundle.Seed(g)
	return g, nil
}

func provideProcessor(g *state.GameState, bundle *content.Bundle, ev property.Evaluator) *command.Processor {
	opts := []command.Option{
		command.WithTemplates(bundle.Templates),
		command.WithEvaluator(ev),
	}
	if bundle.Items != nil {
		opts = append(opts, command.WithItems(bundle.Items))
	}
	return command.NewProcessor(g, opts...)
}

func provideLoop(cfg *config.Config, opts RunOptions, g *state.GameState, proc *command.Processor, stores *Stores, logger *zap.Logger) *server.Loop {
	var store storage.SnapshotStore
	if stores.Persistent() {
		store = stores.Chain
	}
	return server.NewLoop(g, proc, opts.In, opts.Out, store, server.LoopConfig{
		TickInterval:    cfg.Engine.TickInterval(),
		StatusEvery:     uint64(cfg.Engine.StatusEvery),
		PersistInterval: cfg.Engine.PersistInterval,
	}, observability.ForService(observability.ForGame(logger, g.ID), "game"))
}

func provideLifecycle(ctx context.Context, logger *zap.Logger, loop *server.Loop, stores *Stores) *server.Lifecycle {
	lc := server.NewLifecycle(logger)
	if stores.pool != nil {
		lc.Add("postgres", healthService(ctx, observability.ForService(logger, "postgres"), func(ctx context.Context) error {
			if err := stores.pool.Health(ctx, 5*time.Second); err != nil {
				return err
			}
			st := stores.pool.Stats()
			logger.Debug("postgres pool",
				zap.Int32("total", st.Total),
				zap.Int32("idle", st.Idle),
				zap.Int32("acquired", st.Acquired),
			)
			return nil
		}))
	}
	lc.Add("game", loop)
	return lc
}

// healthService periodically runs check until stopped.
func healthService(ctx context.Context, logger *zap.Logger, check func(context.Context) error) server.Service {
	done := make(chan struct{})
	return &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(healthInterval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return nil
				case <-ticker.C:
					if err := check(ctx); err != nil {
						logger.Warn("health check failed", zap.Error(err))
					}
				}
			}
		},
		StopFn: func() { close(done) },
	}
}

