package analytics

import (
	"github.com/coderva/tutoring-reports/pkg/timeutil"
)

// DefaultLimit is used when a ranking is requested with a non-positive limit.
const DefaultLimit = 10

// DepartmentTrend is the session count of one department on one date.
type DepartmentTrend struct {
	Department   string
	Date         timeutil.Date
	SessionCount int64
}

// StudentSessionCount is the number of sessions booked by one student.
type StudentSessionCount struct {
	StudentID    int
	StudentName  string
	SessionCount int64
}

// SubjectCount is the number of sessions requested for one subject.
type SubjectCount struct {
	Subject string
	Count   int64
}

// DateBounds holds the earliest and latest session dates.
// Both are nil when there are no sessions.
type DateBounds struct {
	Start *timeutil.Date
	End   *timeutil.Date
}

// IsEmpty reports whether no bounds are known.
func (b DateBounds) IsEmpty() bool {
	return b.Start == nil || b.End == nil
}
