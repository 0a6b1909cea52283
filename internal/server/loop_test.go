package server_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/statengine/internal/game/command"
	"github.com/cory-johannsen/statengine/internal/game/state"
	"github.com/cory-johannsen/statengine/internal/server"
	"github.com/cory-johannsen/statengine/internal/storage"
)

func newLoop(t *testing.T, input io.Reader, out io.Writer, store storage.SnapshotStore, cfg server.LoopConfig) (*server.Loop, *state.GameState) {
	t.Helper()
	g := state.New()
	if cfg.TickInterval == 0 {
		cfg.TickInterval = time.Millisecond
	}
	return server.NewLoop(g, command.NewProcessor(g), input, out, store, cfg, zaptest.NewLogger(t)), g
}

func runLoop(t *testing.T, l *server.Loop) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- l.Start() }()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not finish in time")
		return nil
	}
}

func TestLoop_ProcessesCommandsUntilQuit(t *testing.T) {
	var out bytes.Buffer
	l, g := newLoop(t, strings.NewReader("move 1 2\n\n   \nstatus\nquit\n"), &out, nil, server.LoopConfig{})

	require.NoError(t, runLoop(t, l))

	assert.False(t, g.Running())
	assert.GreaterOrEqual(t, g.Tick, uint64(1))
	text := out.String()
	assert.Contains(t, text, "Player moved to (x:1, y:2)")
	assert.Contains(t, text, "Game status - Tick:")
	assert.Contains(t, text, "Shutting down...")
	assert.True(t, strings.HasSuffix(text, "Game backend service shut down.\n"))
	assert.Less(t, strings.Index(text, "Player moved"), strings.Index(text, "Shutting down..."))
}

func TestLoop_EOFStopsGame(t *testing.T) {
	var out bytes.Buffer
	l, g := newLoop(t, strings.NewReader("set motd hi\n"), &out, nil, server.LoopConfig{})

	require.NoError(t, runLoop(t, l))

	assert.False(t, g.Running())
	assert.Equal(t, "hi", g.Properties["motd"])
	assert.Contains(t, out.String(), "Property 'motd' set to 'hi'")
}

func TestLoop_StopEndsLoopWhileInputOpen(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })
	l, g := newLoop(t, pr, io.Discard, nil, server.LoopConfig{})

	done := make(chan error, 1)
	go func() { done <- l.Start() }()

	deadline := time.Now().Add(2 * time.Second)
	for g.Tick == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	l.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}
	assert.True(t, g.Running())
}

func TestLoop_SavesFinalSnapshot(t *testing.T) {
	store := storage.NewMemory()
	l, g := newLoop(t, strings.NewReader("move 3 4\nquit\n"), io.Discard, store, server.LoopConfig{
		PersistInterval: time.Millisecond,
	})

	require.NoError(t, runLoop(t, l))

	snap, err := store.Latest(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.Tick, snap.Tick)
	assert.Equal(t, g.Version, snap.Version)

	restored, err := state.Decode(snap.Data)
	require.NoError(t, err)
	assert.Equal(t, g.ID, restored.ID)
	x, _ := restored.Player.Position.Get(0)
	y, _ := restored.Player.Position.Get(1)
	assert.Equal(t, float32(3), x)
	assert.Equal(t, float32(4), y)
}

type failingStore struct{}

func (failingStore) Save(context.Context, storage.Snapshot) error { return errors.New("disk full") }

func (failingStore) Latest(context.Context, string) (storage.Snapshot, error) {
	return storage.Snapshot{}, storage.ErrSnapshotNotFound
}

func TestLoop_FinalSaveErrorIsReturned(t *testing.T) {
	l, _ := newLoop(t, strings.NewReader("quit\n"), io.Discard, failingStore{}, server.LoopConfig{})

	err := runLoop(t, l)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "saving final snapshot")
	assert.Contains(t, err.Error(), "disk full")
}

func TestLoop_LogsStatusLines(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	g := state.New()
	l := server.NewLoop(g, command.NewProcessor(g), strings.NewReader(""), io.Discard, nil,
		server.LoopConfig{TickInterval: time.Millisecond, StatusEvery: 1}, zap.New(core))

	require.NoError(t, runLoop(t, l))

	first := logs.FilterMessage("status").FilterField(zap.Uint64("tick", 1)).All()
	require.Len(t, first, 1)
	fields := first[0].ContextMap()
	assert.Equal(t, "(x:0, y:0)", fields["player"])
	assert.Equal(t, int64(0), fields["npcs"])
}

func TestNewLoop_PanicsOnZeroInterval(t *testing.T) {
	g := state.New()
	assert.Panics(t, func() {
		server.NewLoop(g, command.NewProcessor(g), strings.NewReader(""), io.Discard, nil,
			server.LoopConfig{TickInterval: -1}, zap.NewNop())
	})
}
