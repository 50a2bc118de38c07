package migrate

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadOrdersByVersion(t *testing.T) {
	migs, err := Load()
	require.NoError(t, err)
	require.Len(t, migs, 3)
	for i, m := range migs {
		assert.Equal(t, i+1, m.Version, m.Name)
	}
}

func TestRunAppliesAllMigrations(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	n, err := NewRunner(db).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, table := range []string{"suppliers", "animals", "carcasses", "schema_migrations"} {
		var name string
		err := db.QueryRow("SELECT table_name FROM information_schema.tables WHERE table_name = ?", table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	r := NewRunner(db)

	_, err := r.Run(ctx)
	require.NoError(t, err)
	n, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	cur, pending, err := r.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, cur)
	assert.Zero(t, pending)
}

func TestStatusBeforeRun(t *testing.T) {
	db := openTestDB(t)

	cur, pending, err := NewRunner(db).Status(context.Background())
	require.NoError(t, err)
	assert.Zero(t, cur)
	assert.Equal(t, 3, pending)
}
