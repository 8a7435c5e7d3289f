package attendance

import (
	"time"

	"davomat/pkg/localdate"
	pstrings "davomat/pkg/platform/strings"
)

// Reconciliation is the pure state-transition core: given the stored record
// (or nil) and an incoming event, produce the next record. Persistence and
// side effects live in the service layer.

// ApplySubmission produces the record state after a full submission.
//
// A resubmission is authoritative: the prior present-names list is replaced,
// never merged. rosterTotal overrides the submitted total when positive, so an
// admin-maintained roster wins over whatever the teacher typed. The existing
// record only contributes identity; class and date always come from the
// submission key.
func ApplySubmission(existing *Record, date localdate.Date, sub Submission, rosterTotal int, now time.Time) Record {
	total := sub.TotalCount
	if rosterTotal > 0 {
		total = rosterTotal
	}

	rec := Record{
		ClassName:    sub.ClassName,
		Date:         date,
		TotalCount:   total,
		PresentCount: sub.PresentCount,
		PresentNames: pstrings.DedupeAndTrim(sub.StudentNames),
		UpdatedAt:    now,
	}
	if existing != nil {
		rec.ClassName = existing.ClassName
		rec.Date = existing.Date
	}
	return rec
}

// ApplyLateUpdate produces the record state after an arrival or departure.
//
// Returns applied=false when existing is nil: a late update with no base
// submission is meaningless and must be dropped without creating a record.
//
// Arrivals are idempotent — a name already present is not appended and the
// count does not move. Departures of unknown names are no-ops, and the count
// never goes below zero. TotalCount is never touched.
func ApplyLateUpdate(existing *Record, ev LateUpdate, now time.Time) (Record, bool) {
	if existing == nil {
		return Record{}, false
	}

	rec := *existing
	rec.UpdatedAt = now
	rec.PresentNames = append([]string(nil), existing.PresentNames...)

	switch ev.Action {
	case ActionArrived:
		if !containsName(rec.PresentNames, ev.StudentName) {
			rec.PresentNames = append(rec.PresentNames, ev.StudentName)
			rec.PresentCount++
		}
	case ActionDeparted:
		if i := indexOfName(rec.PresentNames, ev.StudentName); i >= 0 {
			rec.PresentNames = append(rec.PresentNames[:i], rec.PresentNames[i+1:]...)
			if rec.PresentCount > 0 {
				rec.PresentCount--
			}
		}
	}

	return rec, true
}

func containsName(names []string, name string) bool {
	return indexOfName(names, name) >= 0
}

func indexOfName(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
