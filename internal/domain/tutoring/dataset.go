package tutoring

import (
	"context"
)

// Reader is the data-access contract of the report pipeline.
// Implementations live in infrastructure/persistence.
type Reader interface {
	// Load returns all teachers, students and sessions read from one
	// consistent snapshot of the record store.
	Load(ctx context.Context) (*Dataset, error)
}

// Dataset is an immutable snapshot of the three record collections.
// Callers must not modify the slices after construction.
type Dataset struct {
	Teachers []Teacher
	Students []Student
	Sessions []Session

	teachers map[int]Teacher
	students map[int]Student
}

// NewDataset builds a Dataset and its lookup indexes.
func NewDataset(teachers []Teacher, students []Student, sessions []Session) *Dataset {
	ds := &Dataset{
		Teachers: teachers,
		Students: students,
		Sessions: sessions,
		teachers: make(map[int]Teacher, len(teachers)),
		students: make(map[int]Student, len(students)),
	}
	for _, t := range teachers {
		ds.teachers[t.ID] = t
	}
	for _, s := range students {
		ds.students[s.ID] = s
	}
	return ds
}

// Teacher looks up a teacher by ID.
func (d *Dataset) Teacher(id int) (Teacher, bool) {
	t, ok := d.teachers[id]
	return t, ok
}

// Student looks up a student by ID.
func (d *Dataset) Student(id int) (Student, bool) {
	s, ok := d.students[id]
	return s, ok
}

// Orphans counts sessions whose teacher or student is missing from the
// snapshot. Such sessions are left out of per-teacher and per-student
// groupings.
func (d *Dataset) Orphans() int {
	n := 0
	for _, s := range d.Sessions {
		_, okT := d.teachers[s.TeacherID]
		_, okS := d.students[s.StudentID]
		if !okT || !okS {
			n++
		}
	}
	return n
}
