package dbx

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

var notesSchema = fstest.MapFS{
	"00001_create_notes.sql": &fstest.MapFile{Data: []byte(`-- +goose Up
CREATE TABLE IF NOT EXISTS notes (id INTEGER PRIMARY KEY, body TEXT NOT NULL);

-- +goose Down
DROP TABLE IF EXISTS notes;
`)},
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestOpenSQLite_CreatesSchema(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "agenda.db"), notesSchema)
	require.NoError(t, err)
	defer db.Close()

	require.True(t, tableExists(t, db, "notes"))
	require.True(t, tableExists(t, db, "goose_db_version"))
}

func TestMigrate_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "agenda.db"), notesSchema)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(ctx, db, notesSchema))
	require.True(t, tableExists(t, db, "notes"))
}

func TestOpenSQLite_InMemory(t *testing.T) {
	db, err := OpenSQLite(context.Background(), ":memory:", notesSchema)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO notes(body) VALUES ('ok')`)
	require.NoError(t, err)
}

func TestOpenSQLite_BadMigration(t *testing.T) {
	broken := fstest.MapFS{
		"00001_broken.sql": &fstest.MapFile{Data: []byte("-- +goose Up\nCREATE TABLE (;\n")},
	}
	_, err := OpenSQLite(context.Background(), ":memory:", broken)
	require.Error(t, err)
}
