// Package storage defines the snapshot persistence contract shared by the
// PostgreSQL repository and the Redis cache.
package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// ErrSnapshotNotFound is returned when no snapshot exists for a game id.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is one persisted GameState JSON document.
type Snapshot struct {
	GameID  string
	Tick    uint64
	Version string
	Data    []byte
	SavedAt time.Time
}

// SnapshotStore persists snapshots keyed by game id.
type SnapshotStore interface {
	// Save records s.
	Save(ctx context.Context, s Snapshot) error
	// Latest returns the snapshot with the highest tick for gameID, or
	// ErrSnapshotNotFound.
	Latest(ctx context.Context, gameID string) (Snapshot, error)
}

// Chain is a SnapshotStore layering stores fastest first. Save writes to
// every store; Latest reads the first hit and backfills the faster stores
// that missed.
type Chain []SnapshotStore

// Save writes s to every store and joins their errors.
func (c Chain) Save(ctx context.Context, s Snapshot) error {
	var errs []error
	for _, st := range c {
		if err := st.Save(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Latest returns the first snapshot found, searching stores in order.
//
// Postcondition: on a hit at position i, stores before i are backfilled;
// backfill failures are ignored.
func (c Chain) Latest(ctx context.Context, gameID string) (Snapshot, error) {
	for i, st := range c {
		s, err := st.Latest(ctx, gameID)
		if errors.Is(err, ErrSnapshotNotFound) {
			continue
		}
		if err != nil {
			return Snapshot{}, fmt.Errorf("storage: layer %d: %w", i, err)
		}
		for _, faster := range c[:i] {
			_ = faster.Save(ctx, s)
		}
		return s, nil
	}
	return Snapshot{}, ErrSnapshotNotFound
}

// Memory is an in-process SnapshotStore keeping only the highest-tick
// snapshot per game, so a long-running loop holds one document per game.
//
// Memory is safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	games map[string]Snapshot
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{games: make(map[string]Snapshot)}
}

// Save records a copy of s unless a snapshot with a higher tick is already
// held for s.GameID; ties replace the held snapshot.
func (m *Memory) Save(_ context.Context, s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.games[s.GameID]; ok && cur.Tick > s.Tick {
		return nil
	}
	s.Data = slices.Clone(s.Data)
	m.games[s.GameID] = s
	return nil
}

// Latest returns the held snapshot for gameID.
func (m *Memory) Latest(_ context.Context, gameID string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.games[gameID]
	if !ok {
		return Snapshot{}, ErrSnapshotNotFound
	}
	s.Data = slices.Clone(s.Data)
	return s, nil
}

// Len returns the number of snapshots held across all games.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}
