package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Direction selects which way Migrate moves the schema.
type Direction string

// Migration directions.
const (
	Up   Direction = "up"
	Down Direction = "down"
)

// MigrationResult reports the schema version before and after a run.
type MigrationResult struct {
	From    uint
	To      uint
	Dirty   bool
	Changed bool
}

// Migrate applies the migrations in dir to the database at dsn. steps limits
// the number of migrations applied; zero applies all of them.
//
// Precondition: d is Up or Down; steps >= 0.
// Postcondition: Changed is false when the schema was already at the target.
func Migrate(dsn, dir string, d Direction, steps int) (MigrationResult, error) {
	if steps < 0 {
		return MigrationResult{}, fmt.Errorf("steps must be >= 0, got %d", steps)
	}
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	var res MigrationResult
	if res.From, _, err = version(m); err != nil {
		return res, err
	}

	switch {
	case d == Up && steps == 0:
		err = m.Up()
	case d == Up:
		err = m.Steps(steps)
	case d == Down && steps == 0:
		err = m.Down()
	case d == Down:
		err = m.Steps(-steps)
	default:
		return res, fmt.Errorf("invalid direction %q: must be %q or %q", d, Up, Down)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return res, fmt.Errorf("migrating %s: %w", d, err)
	}
	res.Changed = err == nil

	if res.To, res.Dirty, err = version(m); err != nil {
		return res, err
	}
	return res, nil
}

func version(m *migrate.Migrate) (uint, bool, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("reading schema version: %w", err)
	}
	return v, dirty, nil
}
