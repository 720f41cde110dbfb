package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/coderva/tutoring-reports/internal/domain/tutoring"
	"github.com/coderva/tutoring-reports/internal/infrastructure/persistence/sqlq"
)

// ══════════════════════════════════════════════════════════════════════════════
// DATASET REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// DatasetRepository implements tutoring.Reader for PostgreSQL.
type DatasetRepository struct {
	conn *Connection
	qb   sqlq.Builder
}

var _ tutoring.Reader = (*DatasetRepository)(nil)

// NewDatasetRepository creates a new DatasetRepository.
func NewDatasetRepository(conn *Connection) *DatasetRepository {
	return &DatasetRepository{conn: conn, qb: sqlq.Postgres()}
}

// Load reads teachers, students and tutoring requests inside one
// REPEATABLE READ, READ ONLY transaction so the three collections come from
// the same snapshot.
func (r *DatasetRepository) Load(ctx context.Context) (*tutoring.Dataset, error) {
	if timeout := r.conn.config.QueryTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var (
		teachers []tutoring.Teacher
		students []tutoring.Student
		sessions []tutoring.Session
	)
	err := r.conn.WithTx(ctx, SnapshotTxOptions(), func(tx pgx.Tx) error {
		var err error
		if teachers, err = selectAll(ctx, tx, "LoadTeachers", r.qb.Teachers, sqlq.ScanTeachers); err != nil {
			return err
		}
		if students, err = selectAll(ctx, tx, "LoadStudents", r.qb.Students, sqlq.ScanStudents); err != nil {
			return err
		}
		sessions, err = selectAll(ctx, tx, "LoadSessions", r.qb.Sessions, sqlq.ScanSessions)
		return err
	})
	if err != nil {
		return nil, err
	}

	return tutoring.NewDataset(teachers, students, sessions), nil
}

func selectAll[T any](
	ctx context.Context,
	q Querier,
	op string,
	build func() (sqlq.Statement, error),
	scan func(sqlq.Rows) ([]T, error),
) ([]T, error) {
	stmt, err := build()
	if err != nil {
		return nil, queryFailed(op, "failed to build query", err)
	}

	rows, err := q.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, classify(op, "query failed", err)
	}
	defer rows.Close()

	out, err := scan(rows)
	if err != nil {
		return nil, classify(op, "failed to read rows", err)
	}
	return out, nil
}
