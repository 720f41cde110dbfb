// Package tutoring contains the read-only domain model of the tutoring
// program: teachers, students and the sessions that link them.
//
// Records are owned by an external system of record. This package only
// describes their shape, the derived attributes computed from them
// (a student's grade level), and the Reader contract the report pipeline
// uses to obtain a consistent snapshot of all three collections.
//
// # Grade levels
//
// A student ID starts with the two-digit year the student entered ninth
// grade. Given the report's school year:
//
//	s := Student{ID: 2301}
//	s.GradeLevel(25) // "11th Grade"
//
// Anything that does not land on 0..3 years in school falls into "Other".
package tutoring
