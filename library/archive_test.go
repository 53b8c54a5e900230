package library

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportArchive(t *testing.T) {
	eng, clock := tempEngine(t)
	seed(t, eng, 2, 2)

	_, err := eng.IssueLoan("B1", "M1")
	require.NoError(t, err)
	clock.advance(16)
	_, err = eng.ReturnLoan("B1")
	require.NoError(t, err)
	_, err = eng.IssueLoan("B2", "M2")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "archive.db")
	require.NoError(t, eng.Store().ExportArchive(path))

	db, err := sqlx.Connect("sqlite3", "file:"+path)
	require.NoError(t, err)
	defer db.Close()

	var books, members, loans, open int
	require.NoError(t, db.Get(&books, `SELECT COUNT(*) FROM books`))
	require.NoError(t, db.Get(&members, `SELECT COUNT(*) FROM members`))
	require.NoError(t, db.Get(&loans, `SELECT COUNT(*) FROM loans`))
	require.NoError(t, db.Get(&open, `SELECT COUNT(*) FROM loans WHERE returned_at IS NULL`))
	assert.Equal(t, 2, books)
	assert.Equal(t, 2, members)
	assert.Equal(t, 2, loans)
	assert.Equal(t, 1, open)

	var fine float64
	require.NoError(t, db.Get(&fine, `SELECT fine FROM loans WHERE id = '1'`))
	assert.InDelta(t, 4.0, fine, 1e-9)
}

func TestExportArchiveRewrites(t *testing.T) {
	eng, _ := tempEngine(t)
	seed(t, eng, 3, 1)

	path := filepath.Join(t.TempDir(), "archive.db")
	require.NoError(t, eng.Store().ExportArchive(path))

	// A second export replaces prior rows instead of accumulating them.
	require.NoError(t, eng.RemoveBook("B3"))
	require.NoError(t, eng.Store().ExportArchive(path))

	db, err := sqlx.Connect("sqlite3", "file:"+path)
	require.NoError(t, err)
	defer db.Close()

	var books int
	require.NoError(t, db.Get(&books, `SELECT COUNT(*) FROM books`))
	assert.Equal(t, 2, books)
}
