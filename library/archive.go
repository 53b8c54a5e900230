package library

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// archiveSchema mirrors the snapshot's four collections minus the active
// index, which is derivable from returned_at being NULL.
const archiveSchema = `
CREATE TABLE IF NOT EXISTS books (
    id        TEXT PRIMARY KEY,
    title     TEXT NOT NULL,
    author    TEXT NOT NULL,
    year      INTEGER NOT NULL,
    genre     TEXT NOT NULL,
    available BOOLEAN NOT NULL
);
CREATE TABLE IF NOT EXISTS members (
    id     TEXT PRIMARY KEY,
    name   TEXT NOT NULL,
    email  TEXT NOT NULL,
    phone  TEXT NOT NULL,
    active BOOLEAN NOT NULL
);
CREATE TABLE IF NOT EXISTS loans (
    id          TEXT PRIMARY KEY,
    book_id     TEXT NOT NULL,
    member_id   TEXT NOT NULL,
    loan_date   DATETIME NOT NULL,
    due_date    DATETIME NOT NULL,
    returned_at DATETIME,
    fine        REAL NOT NULL
);`

// ExportArchive writes the full library state to a SQLite database at path
// for offline inspection with ordinary SQL tooling. Like the snapshot file,
// each export is a full rewrite of prior content.
func (s *Store) ExportArchive(path string) error {
	db, err := sqlx.Connect("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", path))
	if err != nil {
		return fmt.Errorf("%w: open archive: %v", ErrStorage, err)
	}
	defer db.Close()

	if _, err := db.Exec(archiveSchema); err != nil {
		return fmt.Errorf("%w: apply archive schema: %v", ErrStorage, err)
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("%w: begin archive tx: %v", ErrStorage, err)
	}
	defer tx.Rollback()

	for _, table := range []string{"books", "members", "loans"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("%w: clear %s: %v", ErrStorage, table, err)
		}
	}

	for _, b := range s.Books() {
		if _, err := tx.NamedExec(`INSERT INTO books (id,title,author,year,genre,available)
            VALUES (:id,:title,:author,:year,:genre,:available)`, b); err != nil {
			return fmt.Errorf("%w: archive book %q: %v", ErrStorage, b.ID, err)
		}
	}
	for _, m := range s.Members() {
		if _, err := tx.NamedExec(`INSERT INTO members (id,name,email,phone,active)
            VALUES (:id,:name,:email,:phone,:active)`, m); err != nil {
			return fmt.Errorf("%w: archive member %q: %v", ErrStorage, m.ID, err)
		}
	}
	for _, l := range s.Loans() {
		if _, err := tx.NamedExec(`INSERT INTO loans (id,book_id,member_id,loan_date,due_date,returned_at,fine)
            VALUES (:id,:book_id,:member_id,:loan_date,:due_date,:returned_at,:fine)`, l); err != nil {
			return fmt.Errorf("%w: archive loan %q: %v", ErrStorage, l.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit archive: %v", ErrStorage, err)
	}
	return nil
}
