package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/statengine/internal/game/command"
	"github.com/cory-johannsen/statengine/internal/game/state"
	"github.com/cory-johannsen/statengine/internal/storage"
)

const (
	lineBuffer   = 64
	finalTimeout = 5 * time.Second
)

// LoopConfig tunes the game loop.
type LoopConfig struct {
	// TickInterval is the fixed frame duration; each tick advances game time
	// by exactly this amount.
	TickInterval time.Duration
	// StatusEvery logs a status line every N ticks. Zero disables it.
	StatusEvery uint64
	// PersistInterval schedules periodic snapshots. Zero disables periodic
	// snapshots; a final snapshot is still written on shutdown.
	PersistInterval time.Duration
}

// Loop is a Service driving one GameState at a fixed tick rate.
//
// Lines read from the input are queued on a channel and drained at the start
// of every tick, in arrival order, before the state is updated. The tick
// goroutine is the only owner of the GameState.
type Loop struct {
	game   *state.GameState
	proc   *command.Processor
	in     io.Reader
	out    io.Writer
	store  storage.SnapshotStore
	cfg    LoopConfig
	logger *zap.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewLoop wires a Loop.
//
// Precondition: g, proc, in, out and logger must be non-nil; cfg.TickInterval
// must be positive. store may be nil to disable persistence.
func NewLoop(g *state.GameState, proc *command.Processor, in io.Reader, out io.Writer, store storage.SnapshotStore, cfg LoopConfig, logger *zap.Logger) *Loop {
	if cfg.TickInterval <= 0 {
		panic("server.NewLoop: tick interval must be positive")
	}
	return &Loop{
		game:   g,
		proc:   proc,
		in:     in,
		out:    out,
		store:  store,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start runs the loop until the game stops, the input is exhausted, or Stop
// is called.
//
// Postcondition: When a store is configured, the final state has been
// saved; the returned error reports a failed final save.
func (l *Loop) Start() error {
	lines := make(chan string, lineBuffer)
	// The reader cannot be interrupted while blocked on input; it exits on EOF
	// or on the next line after the loop is gone.
	go l.readLines(lines)

	fmt.Fprintln(l.out, "Game service started! Type 'help' for available commands.")
	l.logger.Info("game loop started",
		zap.String("game_id", l.game.ID),
		zap.Duration("tick_interval", l.cfg.TickInterval),
	)

	snaps := make(chan storage.Snapshot, 1)
	eg, ctx := errgroup.WithContext(context.Background())
	eg.Go(func() error {
		return l.persist(ctx, snaps)
	})
	eg.Go(func() error {
		defer close(snaps)
		return l.run(ctx, lines, snaps)
	})
	err := eg.Wait()
	l.Stop()

	if saveErr := l.saveFinal(); saveErr != nil && err == nil {
		err = saveErr
	}
	fmt.Fprintln(l.out, "Game backend service shut down.")
	l.logger.Info("game loop stopped",
		zap.String("game_id", l.game.ID),
		zap.Uint64("tick", l.game.Tick),
	)
	return err
}

// Stop ends the loop after the current tick.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *Loop) readLines(lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(l.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		select {
		case lines <- line:
		case <-l.stopCh:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		l.logger.Warn("reading commands", zap.Error(err))
	}
}

func (l *Loop) run(ctx context.Context, lines <-chan string, snaps chan<- storage.Snapshot) error {
	ticker := time.NewTicker(l.cfg.TickInterval)
	defer ticker.Stop()

	dt := float32(l.cfg.TickInterval.Seconds())
	var persistEvery uint64
	if l.cfg.PersistInterval > 0 {
		persistEvery = max(uint64(l.cfg.PersistInterval/l.cfg.TickInterval), 1)
	}

	for l.game.Running() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stopCh:
			return nil
		case <-ticker.C:
		}

		eof := l.drain(lines)
		l.tick(dt)

		if persistEvery > 0 && l.game.Tick%persistEvery == 0 {
			l.offer(snaps)
		}
		if eof && l.game.Running() {
			l.logger.Info("command input closed, stopping game")
			l.game.Stop()
		}
	}
	return nil
}

// drain processes every queued line and reports whether the input is closed.
func (l *Loop) drain(lines <-chan string) bool {
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return true
			}
			fmt.Fprintln(l.out, l.proc.Process(line))
		default:
			return false
		}
	}
}

func (l *Loop) tick(dt float32) {
	for _, name := range l.game.Update(dt) {
		l.logger.Info("buff expired",
			zap.String("buff", name),
			zap.Uint64("tick", l.game.Tick),
		)
	}
	if l.cfg.StatusEvery > 0 && l.game.Tick%l.cfg.StatusEvery == 0 {
		l.logger.Debug("status",
			zap.Uint64("tick", l.game.Tick),
			zap.Stringer("player", l.game.Player.Position),
			zap.Int("npcs", l.game.NPCs.Len()),
		)
	}
}

// offer hands a snapshot to the persister without blocking the tick.
func (l *Loop) offer(snaps chan<- storage.Snapshot) {
	if l.store == nil {
		return
	}
	snap, err := l.snapshot()
	if err != nil {
		l.logger.Error("encoding snapshot", zap.Error(err))
		return
	}
	select {
	case snaps <- snap:
	default:
		l.logger.Debug("persister busy, skipping snapshot", zap.Uint64("tick", snap.Tick))
	}
}

func (l *Loop) persist(ctx context.Context, snaps <-chan storage.Snapshot) error {
	for snap := range snaps {
		if l.store == nil {
			continue
		}
		if err := l.store.Save(ctx, snap); err != nil {
			l.logger.Warn("saving snapshot",
				zap.Uint64("tick", snap.Tick),
				zap.Error(err),
			)
			continue
		}
		l.logger.Debug("snapshot saved", zap.Uint64("tick", snap.Tick))
	}
	return nil
}

func (l *Loop) saveFinal() error {
	if l.store == nil {
		return nil
	}
	snap, err := l.snapshot()
	if err != nil {
		return fmt.Errorf("encoding final snapshot: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), finalTimeout)
	defer cancel()
	if err := l.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("saving final snapshot: %w", err)
	}
	l.logger.Info("final snapshot saved", zap.Uint64("tick", snap.Tick))
	return nil
}

func (l *Loop) snapshot() (storage.Snapshot, error) {
	data, err := json.Marshal(l.game)
	if err != nil {
		return storage.Snapshot{}, err
	}
	return storage.Snapshot{
		GameID:  l.game.ID,
		Tick:    l.game.Tick,
		Version: l.game.Version,
		Data:    data,
		SavedAt: l.game.LastUpdated,
	}, nil
}
