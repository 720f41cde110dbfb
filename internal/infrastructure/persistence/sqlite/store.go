// Package sqlite reads tutoring records from a local SQLite database file.
// The file is opened read-only; the store never writes.
package sqlite

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/coderva/tutoring-reports/internal/domain/shared"
	"github.com/coderva/tutoring-reports/internal/domain/tutoring"
	"github.com/coderva/tutoring-reports/internal/infrastructure/persistence/sqlq"
)

const domain = "sqlite"

// URL prefixes that select this store.
var urlPrefixes = []string{"sqlite://", "sqlite:", "file:"}

// IsURL reports whether raw names a SQLite database.
func IsURL(raw string) bool {
	_, ok := PathFromURL(raw)
	return ok
}

// PathFromURL extracts the file path from sqlite:<path>, sqlite://<path> or
// file:<path>. Query parameters are dropped.
func PathFromURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	for _, p := range urlPrefixes {
		if strings.HasPrefix(raw, p) {
			path, _, _ := strings.Cut(strings.TrimPrefix(raw, p), "?")
			return path, path != ""
		}
	}
	return "", false
}

// Store is the SQLite-backed record store.
type Store struct {
	db           *sql.DB
	qb           sqlq.Builder
	queryTimeout time.Duration
}

var _ tutoring.Reader = (*Store)(nil)

// Open opens the database at path in read-only mode and verifies it can be
// read. A missing or unreadable file is reported as shared.ErrUnavailable.
func Open(ctx context.Context, path string, queryTimeout time.Duration) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, unavailable("Open", "database file not accessible", err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, unavailable("Open", "opening database", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, unavailable("Open", "connecting to database", err)
	}

	return &Store{db: db, qb: sqlq.SQLite(), queryTimeout: queryTimeout}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the three collections inside one transaction.
func (s *Store) Load(ctx context.Context) (*tutoring.Dataset, error) {
	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, queryFailed("Load", "beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	teachers, err := selectAll(ctx, tx, "LoadTeachers", s.qb.Teachers, sqlq.ScanTeachers)
	if err != nil {
		return nil, err
	}
	students, err := selectAll(ctx, tx, "LoadStudents", s.qb.Students, sqlq.ScanStudents)
	if err != nil {
		return nil, err
	}
	sessions, err := selectAll(ctx, tx, "LoadSessions", s.qb.Sessions, sqlq.ScanSessions)
	if err != nil {
		return nil, err
	}

	return tutoring.NewDataset(teachers, students, sessions), nil
}

func selectAll[T any](
	ctx context.Context,
	tx *sql.Tx,
	op string,
	build func() (sqlq.Statement, error),
	scan func(sqlq.Rows) ([]T, error),
) ([]T, error) {
	stmt, err := build()
	if err != nil {
		return nil, queryFailed(op, "building query", err)
	}

	rows, err := tx.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, queryFailed(op, "running query", err)
	}
	defer rows.Close()

	out, err := scan(rows)
	if err != nil {
		return nil, queryFailed(op, "reading rows", err)
	}
	return out, nil
}

func unavailable(op, msg string, err error) error {
	return errors.WithStack(shared.WrapError(domain, op, shared.ErrUnavailable, msg, err))
}

func queryFailed(op, msg string, err error) error {
	return errors.WithStack(shared.WrapError(domain, op, shared.ErrQuery, msg, err))
}
