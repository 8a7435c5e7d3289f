// Package roster holds out-of-band class data: the admin-maintained roster
// size per class, and a longitudinal record of student names seen in
// attendance traffic.
//
// The student-name sink exists for later absentee-name reconstruction in
// reports. It is strictly best-effort: callers must never let a sink failure
// block an attendance update.
package roster

import "context"

// Store is the roster accessor contract.
type Store interface {
	// TotalStudents returns the admin-defined roster size for the class, or
	// sentinel.ErrNotFound when no roster exists.
	TotalStudents(ctx context.Context, className string) (int, error)
	// SetTotalStudents upserts the roster size for the class.
	SetTotalStudents(ctx context.Context, className string, total int) error
	// RecordStudent remembers that a student name was seen for a class.
	// Recording an already-known (class, name) pair is a no-op.
	RecordStudent(ctx context.Context, className, studentName string) error
	// ListStudents returns all names ever seen for a class, sorted.
	ListStudents(ctx context.Context, className string) ([]string, error)
}
