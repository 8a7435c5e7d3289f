package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"davomat/pkg/localdate"
	"davomat/pkg/testutil"
)

var (
	testDate = localdate.Date{Year: 2026, Month: time.September, Day: 1}
	testNow  = time.Date(2026, time.September, 1, 8, 30, 0, 0, time.UTC)
)

func TestApplySubmissionCreatesRecord(t *testing.T) {
	sub := Submission{
		ClassName:    "9A",
		TotalCount:   30,
		PresentCount: 27,
		StudentNames: []string{"Ali", "Olimov", "Bobur"},
	}

	rec := ApplySubmission(nil, testDate, sub, 0, testNow)

	assert.Equal(t, "9A", rec.ClassName)
	assert.Equal(t, testDate, rec.Date)
	assert.Equal(t, 30, rec.TotalCount)
	assert.Equal(t, 27, rec.PresentCount)
	assert.Equal(t, []string{"Ali", "Olimov", "Bobur"}, rec.PresentNames)
	assert.Equal(t, testNow, rec.UpdatedAt)
}

func TestApplySubmissionRosterOverridesTotal(t *testing.T) {
	sub := Submission{ClassName: "9A", TotalCount: 30, PresentCount: 27}

	rec := ApplySubmission(nil, testDate, sub, 32, testNow)
	assert.Equal(t, 32, rec.TotalCount)

	// Zero or negative roster totals do not override.
	rec = ApplySubmission(nil, testDate, sub, 0, testNow)
	assert.Equal(t, 30, rec.TotalCount)
	rec = ApplySubmission(nil, testDate, sub, -1, testNow)
	assert.Equal(t, 30, rec.TotalCount)
}

func TestApplySubmissionReplacesEntirely(t *testing.T) {
	existing := &Record{
		ClassName:    "9A",
		Date:         testDate,
		TotalCount:   30,
		PresentCount: 2,
		PresentNames: []string{"Ali", "Vali"},
	}
	sub := Submission{
		ClassName:    "9A",
		TotalCount:   30,
		PresentCount: 1,
		StudentNames: []string{"Bobur"},
	}

	rec := ApplySubmission(existing, testDate, sub, 0, testNow)

	// A resubmission is authoritative: old names vanish, no merge.
	assert.Equal(t, []string{"Bobur"}, rec.PresentNames)
	assert.Equal(t, 1, rec.PresentCount)
	assert.NotContains(t, rec.PresentNames, "Ali")
	assert.NotContains(t, rec.PresentNames, "Vali")
}

func TestApplySubmissionDedupesNames(t *testing.T) {
	sub := Submission{
		ClassName:    "9A",
		TotalCount:   30,
		PresentCount: 2,
		StudentNames: []string{"Ali", " Ali ", "Bobur"},
	}

	rec := ApplySubmission(nil, testDate, sub, 0, testNow)
	assert.Equal(t, []string{"Ali", "Bobur"}, rec.PresentNames)
}

func TestApplyLateUpdateArrival(t *testing.T) {
	existing := &Record{
		ClassName:    "9A",
		Date:         testDate,
		TotalCount:   30,
		PresentCount: 1,
		PresentNames: []string{"Ali"},
	}
	ev := LateUpdate{ClassName: "9A", StudentName: "Bobur", Action: ActionArrived}

	rec, applied := ApplyLateUpdate(existing, ev, testNow)
	require.True(t, applied)
	assert.Equal(t, []string{"Ali", "Bobur"}, rec.PresentNames)
	assert.Equal(t, 2, rec.PresentCount)
	assert.Equal(t, 30, rec.TotalCount)

	// Idempotent: applying the same arrival again changes nothing.
	again, applied := ApplyLateUpdate(&rec, ev, testNow)
	require.True(t, applied)
	assert.Equal(t, []string{"Ali", "Bobur"}, again.PresentNames)
	assert.Equal(t, 2, again.PresentCount)
}

func TestApplyLateUpdateDeparture(t *testing.T) {
	existing := &Record{
		ClassName:    "9A",
		Date:         testDate,
		TotalCount:   30,
		PresentCount: 1,
		PresentNames: []string{"Ali"},
	}
	ev := LateUpdate{ClassName: "9A", StudentName: "Ali", Action: ActionDeparted}

	rec, applied := ApplyLateUpdate(existing, ev, testNow)
	require.True(t, applied)
	assert.Empty(t, rec.PresentNames)
	assert.Equal(t, 0, rec.PresentCount)

	// Departing again stays at zero, never negative.
	again, applied := ApplyLateUpdate(&rec, ev, testNow)
	require.True(t, applied)
	assert.Equal(t, 0, again.PresentCount)
}

func TestApplyLateUpdateDepartureOfCountOnlyRecord(t *testing.T) {
	// Records created from aggregate submissions carry a count but no names.
	// Departing an unnamed student is a no-op; the count must not move.
	existing := &Record{ClassName: "9A", Date: testDate, TotalCount: 30, PresentCount: 27}
	ev := LateUpdate{ClassName: "9A", StudentName: "Ali", Action: ActionDeparted}

	rec, applied := ApplyLateUpdate(existing, ev, testNow)
	require.True(t, applied)
	assert.Equal(t, 27, rec.PresentCount)
}

func TestApplyLateUpdateWithoutBaseRecord(t *testing.T) {
	ev := LateUpdate{ClassName: "9A", StudentName: "Bobur", Action: ActionArrived}

	_, applied := ApplyLateUpdate(nil, ev, testNow)
	assert.False(t, applied)
}

func TestMorningSubmissionThenLateArrival(t *testing.T) {
	var rec Record

	testutil.Given(t, "a class submitted 30/27 in the morning", func(t *testing.T) {
		sub := Submission{
			ClassName:    "9A",
			TotalCount:   30,
			PresentCount: 27,
			StudentNames: []string{"Ali"},
		}
		rec = ApplySubmission(nil, testDate, sub, 0, testNow)
		require.Equal(t, 27, rec.PresentCount)
	})

	testutil.When(t, "a student arrives after the summary", func(t *testing.T) {
		ev := LateUpdate{ClassName: "9A", StudentName: "Bobur", Action: ActionArrived}
		var applied bool
		rec, applied = ApplyLateUpdate(&rec, ev, testNow)
		require.True(t, applied)
	})

	testutil.Then(t, "the present count and name list both grow", func(t *testing.T) {
		assert.Equal(t, 28, rec.PresentCount)
		assert.Equal(t, 30, rec.TotalCount)
		assert.Equal(t, []string{"Ali", "Bobur"}, rec.PresentNames)
	})
}

func TestApplyLateUpdateDoesNotMutateInput(t *testing.T) {
	existing := &Record{
		ClassName:    "9A",
		Date:         testDate,
		TotalCount:   30,
		PresentCount: 1,
		PresentNames: []string{"Ali"},
	}
	ev := LateUpdate{ClassName: "9A", StudentName: "Ali", Action: ActionDeparted}

	_, applied := ApplyLateUpdate(existing, ev, testNow)
	require.True(t, applied)
	assert.Equal(t, []string{"Ali"}, existing.PresentNames)
	assert.Equal(t, 1, existing.PresentCount)
}
