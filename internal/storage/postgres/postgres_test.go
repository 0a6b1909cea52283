package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/statengine/internal/storage/postgres"
	"github.com/cory-johannsen/statengine/internal/testutil"
)

func TestPool_HealthRequiresSchema(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in -short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	ctx := context.Background()

	assert.ErrorIs(t, pc.Pool.Health(ctx, 5*time.Second), postgres.ErrSchemaMissing)

	pc.ApplyMigrations(t)
	require.NoError(t, pc.Pool.Health(ctx, 5*time.Second))

	st := pc.Pool.Stats()
	assert.GreaterOrEqual(t, st.Total, st.Idle)
	assert.NotNil(t, pc.Pool.Snapshots())
}

func TestMigrate_UpDownRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in -short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	ctx := context.Background()
	dir := pc.MigrationsDir(t)

	res, err := postgres.Migrate(pc.DSN(), dir, postgres.Up, 0)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, uint(0), res.From)
	assert.Equal(t, uint(1), res.To)
	assert.False(t, res.Dirty)

	res, err = postgres.Migrate(pc.DSN(), dir, postgres.Up, 0)
	require.NoError(t, err)
	assert.False(t, res.Changed)

	res, err = postgres.Migrate(pc.DSN(), dir, postgres.Down, 1)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, uint(0), res.To)
	assert.ErrorIs(t, pc.Pool.Health(ctx, 5*time.Second), postgres.ErrSchemaMissing)
}

func TestMigrate_RejectsBadInput(t *testing.T) {
	_, err := postgres.Migrate("postgres://localhost/none", "migrations", postgres.Up, -1)
	assert.ErrorContains(t, err, "steps must be >= 0")
}
