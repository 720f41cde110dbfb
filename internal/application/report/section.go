package report

import (
	"strconv"
	"time"

	"github.com/coderva/tutoring-reports/pkg/timeutil"
)

// Value is one display-ready cell: either text or an integer count.
type Value struct {
	text    string
	number  int64
	numeric bool
}

// Text creates a text value.
func Text(s string) Value { return Value{text: s} }

// Number creates a numeric value.
func Number(n int64) Value { return Value{number: n, numeric: true} }

// IsNumber reports whether v holds a count.
func (v Value) IsNumber() bool { return v.numeric }

// Int returns the numeric value (0 for text).
func (v Value) Int() int64 { return v.number }

// String returns the display form of v.
func (v Value) String() string {
	if v.numeric {
		return strconv.FormatInt(v.number, 10)
	}
	return v.text
}

// MarshalYAML emits numbers as numbers and text as strings.
func (v Value) MarshalYAML() (any, error) {
	if v.numeric {
		return v.number, nil
	}
	return v.text, nil
}

// Row is an ordered tuple of values.
type Row []Value

// Strings returns the display form of every value.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, v := range r {
		out[i] = v.String()
	}
	return out
}

// Block is a headed table inside a section. Heading and Columns are optional.
type Block struct {
	Heading string
	Columns []string
	Rows    []Row
}

// Section is one named unit of the report (one sheet in a workbook).
type Section struct {
	Title  string
	Blocks []Block
}

// Rows returns every row of every block, in order.
func (s Section) Rows() []Row {
	var out []Row
	for _, b := range s.Blocks {
		out = append(out, b.Rows...)
	}
	return out
}

// Report is the assembled, renderable result of one run. GeneratedAt is
// already in the report's location and GeneratedOn is its calendar date;
// renderers print GeneratedOn so every format shows the same day.
type Report struct {
	Title       string
	GeneratedAt time.Time
	GeneratedOn timeutil.Date
	Sections    []Section
}

// Section returns the section with the given title.
func (r *Report) Section(title string) (Section, bool) {
	for _, s := range r.Sections {
		if s.Title == title {
			return s, true
		}
	}
	return Section{}, false
}
