// Package report arranges aggregate views into an ordered list of named,
// display-ready sections. It holds no business logic beyond formatting and
// ordering; styling belongs to the renderers.
package report

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/coderva/tutoring-reports/internal/application/analytics"
	"github.com/coderva/tutoring-reports/internal/domain/tutoring"
	"github.com/coderva/tutoring-reports/pkg/timeutil"
)

// Report and section titles.
const (
	ReportTitle = "RR Tutoring Overview"

	TitleOverview       = "Overview"
	TitleTeacherSummary = "Teacher Summary"
	TitleStudentSummary = "Student Summary"
	TitleDailyBreakdown = "Daily Breakdown"

	TitleDepartments             = "Departments"
	TitleDepartmentTrends        = "Department Trends"
	TitleDailyTotals             = "Daily Totals"
	TitleSubjects                = "Subjects"
	TitleGradeLevels             = "Grade Levels"
	TitleTopStudentsByTeacher    = "Top Students by Teacher"
	TitleStudentsWithoutSessions = "Students Without Sessions"

	headingStatus = "Sessions by Status"
	headingLunch  = "Sessions by Lunch Period"

	notAvailable = "N/A"
)

// DefaultSchoolYear is the two-digit school year used for grade levels when
// none is configured.
const DefaultSchoolYear = 25

// Options controls what the assembler emits.
type Options struct {
	// SchoolYear is the two-digit year grade levels are derived against.
	SchoolYear int

	// Extended appends the department, calendar, subject, grade and
	// per-teacher sections after the four core ones.
	Extended bool

	// TopStudents and TopSubjects cap the ranked extended sections.
	TopStudents int
	TopSubjects int

	// Location is used for the "Date Generated" value (UTC when nil).
	Location *time.Location
}

// DefaultOptions returns the options used by the command line tool.
func DefaultOptions() Options {
	return Options{
		SchoolYear:  DefaultSchoolYear,
		TopStudents: analytics.DefaultLimit,
		TopSubjects: analytics.DefaultLimit,
	}
}

// Assembler packages engine output into report sections.
type Assembler struct {
	engine *analytics.Engine
	opts   Options
}

// NewAssembler creates an Assembler.
func NewAssembler(engine *analytics.Engine, opts Options) *Assembler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Assembler{engine: engine, opts: opts}
}

// Assemble builds the full report. Sections come in a fixed order:
// Overview, Teacher Summary, Student Summary, Daily Breakdown, then the
// extended sections when enabled.
func (a *Assembler) Assemble(generatedAt time.Time) *Report {
	local := generatedAt.In(a.opts.Location)
	rep := &Report{
		Title:       ReportTitle,
		GeneratedAt: local,
		GeneratedOn: timeutil.DateOf(local),
		Sections: []Section{
			a.overview(timeutil.DateOf(local)),
			a.teacherSummary(),
			a.studentSummary(),
			a.dailyBreakdown(),
		},
	}
	if a.opts.Extended {
		rep.Sections = append(rep.Sections, a.extended()...)
	}
	return rep
}

// ══════════════════════════════════════════════════════════════════════════════
// CORE SECTIONS
// ══════════════════════════════════════════════════════════════════════════════

func (a *Assembler) overview(generatedOn timeutil.Date) Section {
	summary := Block{
		Rows: []Row{
			{Text("Report Date Range"), Text(formatBounds(a.engine.DateRange()))},
			{Text("Date Generated"), Text(generatedOn.String())},
			{Text("Total Sessions"), Number(a.engine.TotalSessionCount())},
		},
	}

	byStatus := a.engine.SessionsByStatus()
	total := analytics.Total(byStatus)
	status := Block{Heading: headingStatus}
	for _, kc := range analytics.ByCountDesc(byStatus) {
		status.Rows = append(status.Rows, Row{
			Text(capitalize(kc.Key)),
			Number(kc.Count),
			Text(Percent(kc.Count, total)),
		})
	}

	lunch := Block{Heading: headingLunch}
	byLunch := a.engine.SessionsByLunchPeriod()
	for _, period := range tutoring.LunchPeriods {
		lunch.Rows = append(lunch.Rows, Row{Text(period), Number(byLunch[period])})
	}

	return Section{Title: TitleOverview, Blocks: []Block{summary, status, lunch}}
}

func (a *Assembler) teacherSummary() Section {
	percentiles := a.engine.TeacherPercentiles()
	block := Block{Columns: []string{"Teacher Name", "Sessions", "Percentile"}}
	for _, kc := range analytics.ByCountDesc(a.engine.SessionCountByTeacher()) {
		block.Rows = append(block.Rows, Row{
			Text(kc.Key),
			Number(kc.Count),
			Text(strconv.Itoa(percentiles[kc.Key]) + "%"),
		})
	}
	return Section{Title: TitleTeacherSummary, Blocks: []Block{block}}
}

func (a *Assembler) studentSummary() Section {
	block := Block{Columns: []string{"Student ID", "Student Name", "Sessions"}}
	for _, s := range a.engine.StudentSessionCounts() {
		block.Rows = append(block.Rows, Row{
			Number(int64(s.StudentID)),
			Text(s.StudentName),
			Number(s.SessionCount),
		})
	}
	return Section{Title: TitleStudentSummary, Blocks: []Block{block}}
}

// dailyBreakdown lists Monday..Friday only; weekend sessions are left out
// of this section.
func (a *Assembler) dailyBreakdown() Section {
	byDay := a.engine.SessionsByDayOfWeek()
	block := Block{Columns: []string{"Day of Week", "Sessions"}}
	for _, day := range timeutil.Workdays {
		block.Rows = append(block.Rows, Row{Text(day.String()), Number(byDay[day.String()])})
	}
	return Section{Title: TitleDailyBreakdown, Blocks: []Block{block}}
}

// ══════════════════════════════════════════════════════════════════════════════
// EXTENDED SECTIONS
// ══════════════════════════════════════════════════════════════════════════════

func (a *Assembler) extended() []Section {
	return []Section{
		a.departments(),
		a.departmentTrends(),
		a.dailyTotals(),
		a.subjects(),
		a.gradeLevels(),
		a.topStudentsByTeacher(),
		a.studentsWithoutSessions(),
	}
}

func (a *Assembler) departments() Section {
	block := Block{Columns: []string{"Department", "Sessions"}}
	for _, kc := range analytics.ByCountDesc(a.engine.SessionCountByDepartment()) {
		block.Rows = append(block.Rows, Row{Text(kc.Key), Number(kc.Count)})
	}
	return Section{Title: TitleDepartments, Blocks: []Block{block}}
}

func (a *Assembler) departmentTrends() Section {
	block := Block{Columns: []string{"Department", "Date", "Sessions"}}
	if bounds := a.engine.DateRange(); !bounds.IsEmpty() {
		for _, t := range a.engine.SessionTrendsByDepartment(*bounds.Start, *bounds.End) {
			block.Rows = append(block.Rows, Row{Text(t.Department), Text(t.Date.String()), Number(t.SessionCount)})
		}
	}
	return Section{Title: TitleDepartmentTrends, Blocks: []Block{block}}
}

func (a *Assembler) dailyTotals() Section {
	block := Block{Columns: []string{"Date", "Day of Week", "Sessions"}}
	if bounds := a.engine.DateRange(); !bounds.IsEmpty() {
		byDate := a.engine.SessionsByDate(*bounds.Start, *bounds.End)
		days := slices.SortedFunc(maps.Keys(byDate), timeutil.Date.Compare)
		for _, d := range days {
			block.Rows = append(block.Rows, Row{Text(d.String()), Text(d.Weekday().String()), Number(byDate[d])})
		}
	}
	return Section{Title: TitleDailyTotals, Blocks: []Block{block}}
}

func (a *Assembler) subjects() Section {
	block := Block{Columns: []string{"Subject", "Sessions"}}
	for _, s := range a.engine.MostRequestedSubjects(a.opts.TopSubjects) {
		block.Rows = append(block.Rows, Row{Text(s.Subject), Number(s.Count)})
	}
	return Section{Title: TitleSubjects, Blocks: []Block{block}}
}

func (a *Assembler) gradeLevels() Section {
	byGrade := a.engine.SessionsByGradeLevel(a.opts.SchoolYear)
	block := Block{
		Heading: fmt.Sprintf("School year %02d", a.opts.SchoolYear),
		Columns: []string{"Grade Level", "Sessions"},
	}
	for _, label := range tutoring.GradeLabels {
		block.Rows = append(block.Rows, Row{Text(label), Number(byGrade[label])})
	}
	return Section{Title: TitleGradeLevels, Blocks: []Block{block}}
}

func (a *Assembler) topStudentsByTeacher() Section {
	sec := Section{Title: TitleTopStudentsByTeacher}
	for _, t := range a.engine.TeachersWithSessions() {
		block := Block{
			Heading: t.FullName(),
			Columns: []string{"Rank", "Student ID", "Student Name", "Sessions"},
		}
		for i, s := range a.engine.TopStudentsByTeacher(t.ID, a.opts.TopStudents) {
			block.Rows = append(block.Rows, Row{
				Number(int64(i + 1)),
				Number(int64(s.StudentID)),
				Text(s.StudentName),
				Number(s.SessionCount),
			})
		}
		sec.Blocks = append(sec.Blocks, block)
	}
	return sec
}

func (a *Assembler) studentsWithoutSessions() Section {
	block := Block{Columns: []string{"Student ID", "Student Name", "Grade Level"}}
	for _, s := range a.engine.StudentsWithoutSessions() {
		block.Rows = append(block.Rows, Row{
			Number(int64(s.ID)),
			Text(s.FullName()),
			Text(s.GradeLevel(a.opts.SchoolYear)),
		})
	}
	return Section{Title: TitleStudentsWithoutSessions, Blocks: []Block{block}}
}

// ══════════════════════════════════════════════════════════════════════════════
// FORMATTING
// ══════════════════════════════════════════════════════════════════════════════

// Percent formats part/total with one decimal and a trailing "%".
// A zero total yields "0.0%".
func Percent(part, total int64) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(total)*100)
}

func formatBounds(b analytics.DateBounds) string {
	start, end := notAvailable, notAvailable
	if b.Start != nil {
		start = b.Start.String()
	}
	if b.End != nil {
		end = b.End.String()
	}
	return start + " to " + end
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
