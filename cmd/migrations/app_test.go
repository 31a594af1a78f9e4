package main

import (
	"bytes"
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newEmptyDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func run(t *testing.T, db *bun.DB, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	err := newApp(db, &out).RunContext(context.Background(), append([]string{"migrations"}, args...))
	require.NoError(t, err)
	return out.String()
}

func TestApp_MigrateAndRollback(t *testing.T) {
	t.Parallel()
	db := newEmptyDB(t)

	assert.Contains(t, run(t, db, "init"), "Migration tables are ready")

	out := run(t, db, "status")
	assert.Contains(t, out, "authors: missing")
	assert.Contains(t, out, "book_instances: missing")

	assert.Contains(t, run(t, db, "migrate"), "Migrated to group #1")
	assert.Contains(t, run(t, db, "migrate"), "There are no new migrations to run")

	_, err := db.ExecContext(context.Background(), "INSERT INTO authors (first_name, family_name) VALUES ('Ursula', 'Le Guin')")
	require.NoError(t, err)

	out = run(t, db, "status")
	assert.Contains(t, out, "authors: 1 rows")
	assert.Contains(t, out, "genres: 0 rows")

	assert.Contains(t, run(t, db, "rollback"), "Rolled back group #1")
	assert.Contains(t, run(t, db, "rollback"), "There are no groups to roll back")

	out = run(t, db, "status")
	assert.Contains(t, out, "authors: missing")
}

func TestApp_CreateRequiresName(t *testing.T) {
	t.Parallel()
	db := newEmptyDB(t)

	err := newApp(db, &bytes.Buffer{}).RunContext(context.Background(), []string{"migrations", "create"})
	assert.EqualError(t, err, "a migration name is required")
}
