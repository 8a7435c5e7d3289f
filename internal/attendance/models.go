package attendance

import (
	"time"

	"davomat/pkg/localdate"
)

// Record is the aggregate for one class on one calendar date.
//
// Invariants:
//   - At most one Record exists per (ClassName, Date); the store upserts by
//     that key and every write supersedes the previous state (no history).
//   - PresentNames never contains the same name twice. The reconciliation
//     functions enforce this; the type does not.
//   - PresentNames order is arrival order: submission order first, then
//     late arrivals appended.
//   - TotalCount is only set by submissions (or a roster override), never by
//     late updates.
//
// PresentCount is tracked separately from len(PresentNames): a submission may
// declare a headcount without naming every attendee, and the two legitimately
// diverge in that case.
type Record struct {
	ClassName    string
	Date         localdate.Date
	TotalCount   int
	PresentCount int
	PresentNames []string
	UpdatedAt    time.Time
}

// Submission is a parsed full-attendance message for one class.
type Submission struct {
	ClassName    string
	TotalCount   int
	PresentCount int
	StudentNames []string
}

// Action distinguishes the two late-update kinds.
type Action string

const (
	// ActionArrived maps to the "keldi" keyword.
	ActionArrived Action = "arrived"
	// ActionDeparted maps to the "ketdi" keyword.
	ActionDeparted Action = "departed"
)

// LateUpdate is a parsed single-student delta. It is ephemeral: if no Record
// exists for the class on the target date it is dropped, never persisted.
type LateUpdate struct {
	ClassName   string
	StudentName string
	Action      Action
}
