package tutoring

import (
	"strconv"
	"strings"

	"github.com/coderva/tutoring-reports/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEACHER
// ══════════════════════════════════════════════════════════════════════════════

// Teacher is a staff member who receives tutoring requests.
type Teacher struct {
	ID        int
	FirstName string
	LastName  string
	Email     string

	// Subject is the teacher's department label.
	Subject string
}

// FullName returns "First Last".
func (t Teacher) FullName() string {
	return joinName(t.FirstName, t.LastName)
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Grade level labels.
const (
	GradeNinth    = "9th Grade"
	GradeTenth    = "10th Grade"
	GradeEleventh = "11th Grade"
	GradeTwelfth  = "12th Grade"
	GradeOther    = "Other"
)

// GradeLabels lists every label GradeLevel can return, youngest first.
var GradeLabels = []string{GradeNinth, GradeTenth, GradeEleventh, GradeTwelfth, GradeOther}

var gradeByYearsInSchool = map[int]string{
	0: GradeNinth,
	1: GradeTenth,
	2: GradeEleventh,
	3: GradeTwelfth,
}

// Student is an enrolled student. The leading two digits of ID encode the
// entry cohort year.
type Student struct {
	ID        int
	FirstName string
	LastName  string

	// External roster identifiers, nil when unset.
	R1ID *int
	R2ID *int
	RRID *int
	R4ID *int
	R5ID *int
}

// FullName returns "First Last".
func (s Student) FullName() string {
	return joinName(s.FirstName, s.LastName)
}

// CohortYear returns the two-digit entry year taken from the first two
// characters of the ID. ok is false when those characters are not a number.
func (s Student) CohortYear() (year int, ok bool) {
	digits := strconv.Itoa(s.ID)
	if len(digits) > 2 {
		digits = digits[:2]
	}
	year, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return year, true
}

// YearsInSchool returns currentSchoolYear minus the cohort year.
func (s Student) YearsInSchool(currentSchoolYear int) (int, bool) {
	cohort, ok := s.CohortYear()
	if !ok {
		return 0, false
	}
	return currentSchoolYear - cohort, true
}

// GradeLevel maps years in school to a grade label. Out-of-range values,
// negative ones included, collapse to GradeOther.
func (s Student) GradeLevel(currentSchoolYear int) string {
	years, ok := s.YearsInSchool(currentSchoolYear)
	if !ok {
		return GradeOther
	}
	if label, found := gradeByYearsInSchool[years]; found {
		return label
	}
	return GradeOther
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION
// ══════════════════════════════════════════════════════════════════════════════

// DefaultStatus is the status a session carries when none was recorded.
const DefaultStatus = "active"

// Lunch period labels, in display order.
const (
	LunchA = "Lunch A"
	LunchB = "Lunch B"
	LunchC = "Lunch C"
	LunchD = "Lunch D"
)

// LunchPeriods lists the lunch period labels in display order.
var LunchPeriods = []string{LunchA, LunchB, LunchC, LunchD}

// Session is one tutoring request: a student booked with a teacher on a date.
// The lunch flags are independent; a session may cover several periods or none.
type Session struct {
	ID        int
	StudentID int
	TeacherID int
	Date      timeutil.Date
	LunchA    bool
	LunchB    bool
	LunchC    bool
	LunchD    bool
	Status    string
}

// InLunch reports whether the session is flagged for the given lunch label.
func (s Session) InLunch(period string) bool {
	switch period {
	case LunchA:
		return s.LunchA
	case LunchB:
		return s.LunchB
	case LunchC:
		return s.LunchC
	case LunchD:
		return s.LunchD
	default:
		return false
	}
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
