// Package sqlq builds the SELECT statements shared by the SQL record stores
// and scans their rows into tutoring entities.
package sqlq

import (
	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/coderva/tutoring-reports/internal/domain/tutoring"
	"github.com/coderva/tutoring-reports/pkg/timeutil"
)

// Table names. The schema is owned by the scheduling application and uses
// quoted mixed-case identifiers.
const (
	TableTeachers = `"Teachers"`
	TableStudents = `"Students"`
	TableSessions = `"TutoringRequests"`
)

var (
	teacherColumns = []string{"id", "first_name", "last_name", "email", "subject"}
	studentColumns = []string{"id", "first_name", "last_name", `"R1Id"`, `"R2Id"`, `"RRId"`, `"R4Id"`, `"R5Id"`}
	sessionColumns = []string{"id", `"StudentId"`, `"TeacherId"`, "date", `"lunchA"`, `"lunchB"`, `"lunchC"`, `"lunchD"`, "status"}
)

// Rows is the cursor surface shared by pgx.Rows and *sql.Rows.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// Statement is a built query with its arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Builder produces the three snapshot queries for one placeholder dialect.
type Builder struct {
	sb squirrel.StatementBuilderType
}

// Postgres returns a Builder using $n placeholders.
func Postgres() Builder {
	return Builder{sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
}

// SQLite returns a Builder using ? placeholders.
func SQLite() Builder {
	return Builder{sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)}
}

func (b Builder) selectAll(table string, columns []string) (Statement, error) {
	sql, args, err := b.sb.Select(columns...).From(table).OrderBy("id ASC").ToSql()
	if err != nil {
		return Statement{}, errors.Wrapf(err, "build select from %s", table)
	}
	return Statement{SQL: sql, Args: args}, nil
}

// Teachers selects every teacher.
func (b Builder) Teachers() (Statement, error) {
	return b.selectAll(TableTeachers, teacherColumns)
}

// Students selects every student.
func (b Builder) Students() (Statement, error) {
	return b.selectAll(TableStudents, studentColumns)
}

// Sessions selects every tutoring request.
func (b Builder) Sessions() (Statement, error) {
	return b.selectAll(TableSessions, sessionColumns)
}

// ══════════════════════════════════════════════════════════════════════════════
// SCANNING
// ══════════════════════════════════════════════════════════════════════════════

// ScanTeachers drains rows produced by Builder.Teachers.
func ScanTeachers(rows Rows) ([]tutoring.Teacher, error) {
	var out []tutoring.Teacher
	for rows.Next() {
		var (
			t                           tutoring.Teacher
			first, last, email, subject *string
		)
		if err := rows.Scan(&t.ID, &first, &last, &email, &subject); err != nil {
			return nil, errors.Wrap(err, "scan teacher")
		}
		t.FirstName, t.LastName = deref(first), deref(last)
		t.Email, t.Subject = deref(email), deref(subject)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate teachers")
	}
	return out, nil
}

// ScanStudents drains rows produced by Builder.Students.
func ScanStudents(rows Rows) ([]tutoring.Student, error) {
	var out []tutoring.Student
	for rows.Next() {
		var (
			s           tutoring.Student
			first, last *string
		)
		if err := rows.Scan(&s.ID, &first, &last, &s.R1ID, &s.R2ID, &s.RRID, &s.R4ID, &s.R5ID); err != nil {
			return nil, errors.Wrap(err, "scan student")
		}
		s.FirstName, s.LastName = deref(first), deref(last)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate students")
	}
	return out, nil
}

// ScanSessions drains rows produced by Builder.Sessions. A NULL status
// loads as tutoring.DefaultStatus and NULL lunch flags load as false.
func ScanSessions(rows Rows) ([]tutoring.Session, error) {
	var out []tutoring.Session
	for rows.Next() {
		var (
			s          tutoring.Session
			date       timeutil.Date
			a, b, c, d *bool
			status     *string
		)
		if err := rows.Scan(&s.ID, &s.StudentID, &s.TeacherID, &date, &a, &b, &c, &d, &status); err != nil {
			return nil, errors.Wrap(err, "scan tutoring request")
		}
		s.Date = date
		s.LunchA, s.LunchB, s.LunchC, s.LunchD = flag(a), flag(b), flag(c), flag(d)
		s.Status = tutoring.DefaultStatus
		if status != nil {
			s.Status = *status
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate tutoring requests")
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func flag(b *bool) bool {
	return b != nil && *b
}
