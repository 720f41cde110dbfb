package tutoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coderva/tutoring-reports/pkg/timeutil"
)

func TestStudent_GradeLevel(t *testing.T) {
	tests := []struct {
		name       string
		id         int
		schoolYear int
		want       string
	}{
		{name: "first year", id: 2501, schoolYear: 25, want: GradeNinth},
		{name: "second year", id: 2401, schoolYear: 25, want: GradeTenth},
		{name: "third year", id: 2301, schoolYear: 25, want: GradeEleventh},
		{name: "fourth year", id: 2201, schoolYear: 25, want: GradeTwelfth},
		{name: "graduated cohort", id: 2101, schoolYear: 25, want: GradeOther},
		{name: "future cohort", id: 2601, schoolYear: 25, want: GradeOther},
		{name: "single digit id", id: 7, schoolYear: 25, want: GradeOther},
		{name: "single digit id in range", id: 7, schoolYear: 9, want: GradeEleventh},
		{name: "negative id", id: -12, schoolYear: 25, want: GradeOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Student{ID: tt.id}
			assert.Equal(t, tt.want, s.GradeLevel(tt.schoolYear))
		})
	}
}

func TestStudent_CohortYear(t *testing.T) {
	year, ok := Student{ID: 230145}.CohortYear()
	assert.True(t, ok)
	assert.Equal(t, 23, year)

	years, ok := Student{ID: 2301}.YearsInSchool(25)
	assert.True(t, ok)
	assert.Equal(t, 2, years)
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", Teacher{FirstName: "Ada", LastName: "Lovelace"}.FullName())
	assert.Equal(t, "Grace", Student{FirstName: "Grace"}.FullName())
}

func TestSession_InLunch(t *testing.T) {
	s := Session{LunchA: true, LunchC: true}

	assert.True(t, s.InLunch(LunchA))
	assert.False(t, s.InLunch(LunchB))
	assert.True(t, s.InLunch(LunchC))
	assert.False(t, s.InLunch(LunchD))
	assert.False(t, s.InLunch("Lunch E"))
}

func TestDataset_Lookups(t *testing.T) {
	ds := NewDataset(
		[]Teacher{{ID: 1, FirstName: "Ada", LastName: "Lovelace", Subject: "Math"}},
		[]Student{{ID: 2301, FirstName: "Sam", LastName: "Lee"}},
		[]Session{
			{ID: 1, TeacherID: 1, StudentID: 2301, Date: timeutil.MustParseDate("2025-03-03")},
			{ID: 2, TeacherID: 9, StudentID: 2301, Date: timeutil.MustParseDate("2025-03-04")},
		},
	)

	teacher, ok := ds.Teacher(1)
	assert.True(t, ok)
	assert.Equal(t, "Math", teacher.Subject)

	_, ok = ds.Student(42)
	assert.False(t, ok)

	assert.Equal(t, 1, ds.Orphans())
}
