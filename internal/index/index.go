// Package index maintains a SQLite catalog over record batches: one row
// per record keyed by fingerprint, carrying the common lookup points
// (control number, title, author, standard numbers) plus the record's
// location in its source file.
//
// Build modes:
//   - Default (CGO_ENABLED=0): pure Go modernc.org/sqlite
//   - CGO mode (CGO_ENABLED=1 -tags cgo_sqlite): mattn/go-sqlite3
package index

import (
	"context"
	"database/sql"
	"io"
	"strings"

	"github.com/FocuswithJustin/JuniperMARC/core/errors"
	"github.com/FocuswithJustin/JuniperMARC/core/marc"
	"github.com/FocuswithJustin/JuniperMARC/internal/logging"
)

// DriverName returns the SQL driver name in use.
func DriverName() string {
	return driverName
}

// DriverType returns "cgo" for mattn/go-sqlite3, "purego" for
// modernc.org/sqlite.
func DriverType() string {
	return driverType
}

// IsCGO returns true if the CGO implementation is being used.
func IsCGO() bool {
	return driverType == "cgo"
}

// Info contains information about the SQLite driver configuration.
type Info struct {
	DriverName string `json:"driver_name"`
	DriverType string `json:"driver_type"`
	IsCGO      bool   `json:"is_cgo"`
	Package    string `json:"package"`
}

// GetInfo returns information about the current SQLite configuration.
func GetInfo() Info {
	return Info{
		DriverName: driverName,
		DriverType: driverType,
		IsCGO:      IsCGO(),
		Package:    driverPackage,
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id             INTEGER PRIMARY KEY,
	fingerprint    TEXT NOT NULL UNIQUE,
	control_number TEXT,
	title          TEXT,
	author         TEXT,
	isbn           TEXT,
	issn           TEXT,
	pub_year       TEXT,
	source_file    TEXT NOT NULL,
	position       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_control_number ON records(control_number);
CREATE INDEX IF NOT EXISTS idx_records_isbn ON records(isbn);
CREATE INDEX IF NOT EXISTS idx_records_title ON records(title);
`

// Index is a catalog database handle. It is safe for concurrent use.
type Index struct {
	db *sql.DB
}

// Open opens or creates the catalog at path. Use ":memory:" for an
// ephemeral catalog.
func Open(path string) (*Index, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, errors.Wrap(err, "opening catalog")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating catalog schema")
	}
	return &Index{db: db}, nil
}

// Close releases the database handle.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Entry is one indexed record row.
type Entry struct {
	Fingerprint   string `json:"fingerprint"`
	ControlNumber string `json:"control_number,omitempty"`
	Title         string `json:"title,omitempty"`
	Author        string `json:"author,omitempty"`
	ISBN          string `json:"isbn,omitempty"`
	ISSN          string `json:"issn,omitempty"`
	PubYear       string `json:"pub_year,omitempty"`
	SourceFile    string `json:"source_file"`
	Position      int    `json:"position"`
}

// Add indexes one record found at the given position of sourceFile. It
// reports whether a row was inserted; a record whose fingerprint is
// already indexed is left alone.
func (ix *Index) Add(ctx context.Context, r *marc.Record, sourceFile string, position int) (bool, error) {
	fingerprint, err := r.Fingerprint()
	if err != nil {
		return false, errors.Wrap(err, "fingerprinting record")
	}

	res, err := ix.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO records
		(fingerprint, control_number, title, author, isbn, issn, pub_year, source_file, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		fingerprint, r.ControlNumber(), r.Title(), r.Author(),
		r.ISBN(), r.ISSN(), r.PubYear(), sourceFile, position,
	)
	if err != nil {
		return false, errors.Wrap(err, "inserting record")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AddBatch reads records from reader and indexes each one under sourceFile.
// Malformed records are counted and skipped rather than aborting the batch;
// duplicates count as skipped.
func (ix *Index) AddBatch(ctx context.Context, reader *marc.Reader, sourceFile string) (added, skipped int, err error) {
	for position := 0; ; position++ {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			if errors.Is(err, errors.ErrFormat) {
				logging.RecordError(sourceFile, position, err)
				skipped++
				continue
			}
			return added, skipped, errors.Wrapf(err, "record %d", position)
		}

		inserted, err := ix.Add(ctx, record, sourceFile, position)
		if err != nil {
			return added, skipped, errors.Wrapf(err, "record %d", position)
		}
		if inserted {
			added++
		} else {
			skipped++
		}
	}
	logging.BatchProgress(sourceFile, added, skipped)
	return added, skipped, nil
}

// Query selects catalog entries. Text fields match as case-insensitive
// substrings; number fields match exactly. Zero values are not constrained.
type Query struct {
	ControlNumber string
	Title         string
	Author        string
	ISBN          string
	ISSN          string
	PubYear       string
	Limit         int
}

// Search returns the entries matching q in insertion order.
func (ix *Index) Search(ctx context.Context, q Query) ([]Entry, error) {
	var where []string
	var args []any

	like := func(column, value string) {
		where = append(where, column+" LIKE ? COLLATE NOCASE")
		args = append(args, "%"+value+"%")
	}
	exact := func(column, value string) {
		where = append(where, column+" = ?")
		args = append(args, value)
	}

	if q.Title != "" {
		like("title", q.Title)
	}
	if q.Author != "" {
		like("author", q.Author)
	}
	if q.ControlNumber != "" {
		exact("control_number", q.ControlNumber)
	}
	if q.ISBN != "" {
		exact("isbn", q.ISBN)
	}
	if q.ISSN != "" {
		exact("issn", q.ISSN)
	}
	if q.PubYear != "" {
		exact("pub_year", q.PubYear)
	}

	query := `SELECT fingerprint, control_number, title, author, isbn, issn, pub_year, source_file, position FROM records`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "searching catalog")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Fingerprint, &e.ControlNumber, &e.Title, &e.Author,
			&e.ISBN, &e.ISSN, &e.PubYear, &e.SourceFile, &e.Position); err != nil {
			return nil, errors.Wrap(err, "scanning entry")
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of indexed records.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var n int
	err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "counting records")
	}
	return n, nil
}
