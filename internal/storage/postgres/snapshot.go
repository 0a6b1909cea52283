package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/statengine/internal/storage"
)

// SnapshotRepository persists GameState snapshots in the game_snapshots table.
type SnapshotRepository struct {
	db *pgxpool.Pool
}

var _ storage.SnapshotStore = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates a SnapshotRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save inserts s. A zero SavedAt is stamped by the database.
//
// Precondition: s.GameID must be a UUID; s.Data must be a JSON document.
func (r *SnapshotRepository) Save(ctx context.Context, s storage.Snapshot) error {
	var err error
	if s.SavedAt.IsZero() {
		_, err = r.db.Exec(ctx,
			`INSERT INTO game_snapshots (game_id, tick, version, data)
			 VALUES ($1, $2, $3, $4)`,
			s.GameID, int64(s.Tick), s.Version, s.Data,
		)
	} else {
		_, err = r.db.Exec(ctx,
			`INSERT INTO game_snapshots (game_id, tick, version, data, saved_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			s.GameID, int64(s.Tick), s.Version, s.Data, s.SavedAt,
		)
	}
	if err != nil {
		return fmt.Errorf("inserting snapshot for game %s: %w", s.GameID, err)
	}
	return nil
}

// Latest returns the highest-tick snapshot for gameID; ties go to the most
// recently inserted.
//
// Postcondition: Returns storage.ErrSnapshotNotFound when the game has none.
func (r *SnapshotRepository) Latest(ctx context.Context, gameID string) (storage.Snapshot, error) {
	var (
		s    storage.Snapshot
		tick int64
	)
	err := r.db.QueryRow(ctx,
		`SELECT game_id::text, tick, version, data, saved_at
		 FROM game_snapshots
		 WHERE game_id = $1
		 ORDER BY tick DESC, id DESC
		 LIMIT 1`,
		gameID,
	).Scan(&s.GameID, &tick, &s.Version, &s.Data, &s.SavedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Snapshot{}, storage.ErrSnapshotNotFound
	}
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("querying latest snapshot for game %s: %w", gameID, err)
	}
	s.Tick = uint64(tick)
	return s, nil
}

// Ticks lists the ticks snapshotted for gameID in ascending order.
func (r *SnapshotRepository) Ticks(ctx context.Context, gameID string) ([]uint64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT tick FROM game_snapshots WHERE game_id = $1 ORDER BY tick, id`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots for game %s: %w", gameID, err)
	}
	ticks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (uint64, error) {
		var t int64
		err := row.Scan(&t)
		return uint64(t), err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning snapshot ticks: %w", err)
	}
	return ticks, nil
}

// Prune deletes all but the newest keep snapshots of gameID.
//
// Precondition: keep >= 1.
// Postcondition: Returns the number of rows deleted.
func (r *SnapshotRepository) Prune(ctx context.Context, gameID string, keep int) (int64, error) {
	if keep < 1 {
		return 0, fmt.Errorf("prune: keep must be >= 1, got %d", keep)
	}
	tag, err := r.db.Exec(ctx,
		`DELETE FROM game_snapshots
		 WHERE game_id = $1 AND id NOT IN (
		     SELECT id FROM game_snapshots
		     WHERE game_id = $1
		     ORDER BY tick DESC, id DESC
		     LIMIT $2
		 )`,
		gameID, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots for game %s: %w", gameID, err)
	}
	return tag.RowsAffected(), nil
}
