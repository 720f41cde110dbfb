// Package analytics computes the aggregate views of the tutoring report.
//
// An Engine wraps one immutable tutoring.Dataset. Every operation is a pure
// grouping or reduction over that snapshot, so all views computed during a
// run agree with each other.
package analytics

import (
	"cmp"
	"maps"
	"slices"

	"github.com/coderva/tutoring-reports/internal/domain/tutoring"
	"github.com/coderva/tutoring-reports/pkg/timeutil"
)

// Engine answers aggregate queries over a dataset snapshot.
type Engine struct {
	ds *tutoring.Dataset
}

// New creates an Engine. A nil dataset behaves like an empty one.
func New(ds *tutoring.Dataset) *Engine {
	if ds == nil {
		ds = tutoring.NewDataset(nil, nil, nil)
	}
	return &Engine{ds: ds}
}

// Dataset returns the snapshot the engine reads from.
func (e *Engine) Dataset() *tutoring.Dataset {
	return e.ds
}

// ─────────────────────────────────────────────────────────────────────────────
// Join keys
// ─────────────────────────────────────────────────────────────────────────────

func (e *Engine) subjectOf(s tutoring.Session) (string, bool) {
	t, ok := e.ds.Teacher(s.TeacherID)
	return t.Subject, ok
}

func (e *Engine) teacherNameOf(s tutoring.Session) (string, bool) {
	t, ok := e.ds.Teacher(s.TeacherID)
	return t.FullName(), ok
}

func (e *Engine) studentIDOf(s tutoring.Session) (int, bool) {
	_, ok := e.ds.Student(s.StudentID)
	return s.StudentID, ok
}

func inRange(start, end timeutil.Date) func(tutoring.Session) bool {
	return func(s tutoring.Session) bool {
		return s.Date.Between(start, end)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Departments
// ─────────────────────────────────────────────────────────────────────────────

// SessionCountByDepartment counts sessions per teacher subject.
func (e *Engine) SessionCountByDepartment() map[string]int64 {
	return CountBy(e.ds.Sessions, e.subjectOf)
}

// SessionTrendsByDepartment counts sessions per (department, date) within the
// inclusive range, ordered by date ascending then department.
func (e *Engine) SessionTrendsByDepartment(start, end timeutil.Date) []DepartmentTrend {
	type key struct {
		department string
		date       timeutil.Date
	}
	counts := CountBy(Filter(e.ds.Sessions, inRange(start, end)), func(s tutoring.Session) (key, bool) {
		subject, ok := e.subjectOf(s)
		return key{department: subject, date: s.Date}, ok
	})

	out := make([]DepartmentTrend, 0, len(counts))
	for k, c := range counts {
		out = append(out, DepartmentTrend{Department: k.department, Date: k.date, SessionCount: c})
	}
	slices.SortFunc(out, func(a, b DepartmentTrend) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Department, b.Department)
	})
	return out
}

// MostRequestedSubjects ranks subjects by session count, descending.
func (e *Engine) MostRequestedSubjects(limit int) []SubjectCount {
	if limit <= 0 {
		limit = DefaultLimit
	}
	ranked := ByCountDesc(e.SessionCountByDepartment())
	out := make([]SubjectCount, 0, len(ranked))
	for _, kc := range truncate(ranked, limit) {
		out = append(out, SubjectCount{Subject: kc.Key, Count: kc.Count})
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Teachers
// ─────────────────────────────────────────────────────────────────────────────

// SessionCountByTeacher counts sessions per teacher, keyed by "First Last".
// Teachers without sessions are absent; teachers sharing a name share a key.
func (e *Engine) SessionCountByTeacher() map[string]int64 {
	return CountBy(e.ds.Sessions, e.teacherNameOf)
}

// TeacherPercentiles returns each teacher's percentile rank: the index of
// their count in the ascending list of all counts (first occurrence for
// ties), scaled to 0..99. This is a percentile rank, not an interpolated
// percentile.
func (e *Engine) TeacherPercentiles() map[string]int {
	counts := e.SessionCountByTeacher()
	sorted := slices.Sorted(maps.Values(counts))

	out := make(map[string]int, len(counts))
	n := len(sorted)
	if n == 0 {
		return out
	}
	for name, c := range counts {
		rank := slices.Index(sorted, c)
		out[name] = rank * 100 / n
	}
	return out
}

// TeachersWithSessions lists teachers that have at least one session,
// ordered by name then ID.
func (e *Engine) TeachersWithSessions() []tutoring.Teacher {
	ids := CountBy(e.ds.Sessions, func(s tutoring.Session) (int, bool) {
		_, ok := e.ds.Teacher(s.TeacherID)
		return s.TeacherID, ok
	})
	out := make([]tutoring.Teacher, 0, len(ids))
	for id := range ids {
		t, _ := e.ds.Teacher(id)
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b tutoring.Teacher) int {
		if c := cmp.Compare(a.FullName(), b.FullName()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Students
// ─────────────────────────────────────────────────────────────────────────────

func (e *Engine) rankStudents(sessions []tutoring.Session) []StudentSessionCount {
	counts := CountBy(sessions, e.studentIDOf)
	out := make([]StudentSessionCount, 0, len(counts))
	for id, c := range counts {
		st, _ := e.ds.Student(id)
		out = append(out, StudentSessionCount{StudentID: id, StudentName: st.FullName(), SessionCount: c})
	}
	slices.SortFunc(out, func(a, b StudentSessionCount) int {
		if c := cmp.Compare(b.SessionCount, a.SessionCount); c != 0 {
			return c
		}
		return cmp.Compare(a.StudentID, b.StudentID)
	})
	return out
}

// TopStudentsByTeacher ranks the students of one teacher by session count.
func (e *Engine) TopStudentsByTeacher(teacherID, limit int) []StudentSessionCount {
	if limit <= 0 {
		limit = DefaultLimit
	}
	sessions := Filter(e.ds.Sessions, func(s tutoring.Session) bool {
		return s.TeacherID == teacherID
	})
	return truncate(e.rankStudents(sessions), limit)
}

// StudentSessionCounts ranks every student with sessions, most sessions first.
func (e *Engine) StudentSessionCounts() []StudentSessionCount {
	return e.rankStudents(e.ds.Sessions)
}

// StudentsWithoutSessions returns students no session refers to, in snapshot order.
func (e *Engine) StudentsWithoutSessions() []tutoring.Student {
	booked := CountBy(e.ds.Sessions, func(s tutoring.Session) (int, bool) {
		return s.StudentID, true
	})
	return Filter(e.ds.Students, func(st tutoring.Student) bool {
		_, ok := booked[st.ID]
		return !ok
	})
}

// SessionsByGradeLevel sums sessions per grade label derived for the given
// school year.
func (e *Engine) SessionsByGradeLevel(currentSchoolYear int) map[string]int64 {
	perStudent := CountBy(e.ds.Sessions, func(s tutoring.Session) (int, bool) {
		return s.StudentID, true
	})
	return SumBy(e.ds.Students,
		func(st tutoring.Student) (string, bool) {
			return st.GradeLevel(currentSchoolYear), perStudent[st.ID] > 0
		},
		func(st tutoring.Student) int64 { return perStudent[st.ID] },
	)
}

// ─────────────────────────────────────────────────────────────────────────────
// Calendar
// ─────────────────────────────────────────────────────────────────────────────

// SessionsByDate counts sessions per date within the inclusive range.
func (e *Engine) SessionsByDate(start, end timeutil.Date) map[timeutil.Date]int64 {
	return CountBy(Filter(e.ds.Sessions, inRange(start, end)), func(s tutoring.Session) (timeutil.Date, bool) {
		return s.Date, true
	})
}

// SessionsByDayOfWeek counts sessions per weekday name ("Monday", ...).
func (e *Engine) SessionsByDayOfWeek() map[string]int64 {
	return CountBy(e.ds.Sessions, func(s tutoring.Session) (string, bool) {
		return s.Date.Weekday().String(), true
	})
}

// DateRange returns the earliest and latest session dates.
func (e *Engine) DateRange() DateBounds {
	if len(e.ds.Sessions) == 0 {
		return DateBounds{}
	}
	lo, hi := e.ds.Sessions[0].Date, e.ds.Sessions[0].Date
	for _, s := range e.ds.Sessions[1:] {
		if s.Date.Before(lo) {
			lo = s.Date
		}
		if s.Date.After(hi) {
			hi = s.Date
		}
	}
	return DateBounds{Start: &lo, End: &hi}
}

// ─────────────────────────────────────────────────────────────────────────────
// Totals
// ─────────────────────────────────────────────────────────────────────────────

// SessionsByLunchPeriod counts sessions flagged for each lunch period. Every
// period is present, zero included; a session with several flags counts once
// per flag.
func (e *Engine) SessionsByLunchPeriod() map[string]int64 {
	out := make(map[string]int64, len(tutoring.LunchPeriods))
	for _, period := range tutoring.LunchPeriods {
		out[period] = Count(e.ds.Sessions, func(s tutoring.Session) bool {
			return s.InLunch(period)
		})
	}
	return out
}

// TotalSessionCount returns the number of sessions.
func (e *Engine) TotalSessionCount() int64 {
	return int64(len(e.ds.Sessions))
}

// SessionsByStatus counts sessions per status value.
func (e *Engine) SessionsByStatus() map[string]int64 {
	return CountBy(e.ds.Sessions, func(s tutoring.Session) (string, bool) {
		return s.Status, true
	})
}
