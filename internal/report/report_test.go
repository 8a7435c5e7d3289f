package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"davomat/internal/attendance"
	"davomat/pkg/localdate"
)

var testClasses = attendance.ClassList{"6A", "9A", "9B", "10A"}

func date(y int, m time.Month, d int) localdate.Date {
	return localdate.Date{Year: y, Month: m, Day: d}
}

func rec(class string, day localdate.Date, total, present int) attendance.Record {
	return attendance.Record{ClassName: class, Date: day, TotalCount: total, PresentCount: present}
}

func TestDailyEmptyStore(t *testing.T) {
	got := Daily(date(2026, time.March, 2), nil, testClasses)

	for _, class := range testClasses {
		assert.Contains(t, got, class+": "+NotSubmittedMarker)
	}
	assert.Contains(t, got, "Jami: 0/0")
	assert.NotContains(t, got, "Kelmaganlar")
}

func TestDailyRendersClassesInEnumerationOrder(t *testing.T) {
	day := date(2026, time.March, 2)
	records := []attendance.Record{
		rec("10A", day, 28, 25),
		rec("9A", day, 30, 27),
	}

	got := Daily(day, records, testClasses)

	lines := strings.Split(got, "\n")
	require.GreaterOrEqual(t, len(lines), 6)
	assert.Equal(t, "📊 Kunlik hisobot (2026-03-02)", lines[0])
	assert.Equal(t, "6A: "+NotSubmittedMarker, lines[2])
	assert.Equal(t, "9A: 30/27", lines[3])
	assert.Equal(t, "9B: "+NotSubmittedMarker, lines[4])
	assert.Equal(t, "10A: 28/25", lines[5])
	assert.Contains(t, got, "Jami: 58/52")
	assert.Contains(t, got, "Kelmaganlar: 6")
}

func TestDailyUnknownClassAppendedAfterKnown(t *testing.T) {
	day := date(2026, time.March, 2)
	records := []attendance.Record{
		rec("ZZ1", day, 10, 10),
		rec("AA1", day, 12, 12),
		rec("9A", day, 30, 30),
	}

	got := Daily(day, records, testClasses)

	// Unknown classes come after every enumerated class, alphabetically.
	idx9A := strings.Index(got, "9A: 30/30")
	idxAA := strings.Index(got, "AA1: 12/12")
	idxZZ := strings.Index(got, "ZZ1: 10/10")
	require.True(t, idx9A >= 0 && idxAA >= 0 && idxZZ >= 0)
	assert.Less(t, idx9A, idxAA)
	assert.Less(t, idxAA, idxZZ)
	// Grand total sums unknown classes too.
	assert.Contains(t, got, "Jami: 52/52")
}

func TestWeeklyConstantWeekHasExactMeans(t *testing.T) {
	start := date(2026, time.March, 2)
	var records []attendance.Record
	for i := 0; i < 7; i++ {
		records = append(records, rec("9A", start.AddDays(i), 30, 25))
	}

	got := Weekly(start, start.AddDays(6), records)

	assert.Contains(t, got, "📊 Haftalik hisobot (2026-03-02 - 2026-03-08)")
	assert.Contains(t, got, "2026-03-02: 30/25 (Kelmaganlar: 5)")
	assert.Contains(t, got, "O'rtacha: 30/25")
	assert.Contains(t, got, "Jami: 210/175")
	assert.Contains(t, got, "Kelmaganlar: 35")
}

func TestWeeklyMeanRoundsHalfUp(t *testing.T) {
	start := date(2026, time.March, 2)
	records := []attendance.Record{
		rec("9A", start, 30, 24),
		rec("9A", start.AddDays(1), 31, 25),
	}

	got := Weekly(start, start.AddDays(6), records)

	// 61/2 rounds to 31, 49/2 rounds to 25.
	assert.Contains(t, got, "O'rtacha: 31/25")
}

func TestWeeklyGroupsMultipleClassesPerDay(t *testing.T) {
	start := date(2026, time.March, 2)
	records := []attendance.Record{
		rec("9A", start, 30, 27),
		rec("6A", start, 21, 18),
	}

	got := Weekly(start, start.AddDays(6), records)

	assert.Contains(t, got, "2026-03-02: 51/45 (Kelmaganlar: 6)")
}

func TestWeeklyEmptyRangeHasNoFooter(t *testing.T) {
	start := date(2026, time.March, 2)
	got := Weekly(start, start.AddDays(6), nil)

	assert.NotContains(t, got, "O'rtacha")
	assert.NotContains(t, got, "Jami")
}

func TestMonthlyUsesTrueCalendarLength(t *testing.T) {
	got := Monthly(2028, time.February, nil)
	assert.Contains(t, got, "📊 Oylik hisobot (2028-02-01 - 2028-02-29)")

	got = Monthly(2026, time.April, nil)
	assert.Contains(t, got, "📊 Oylik hisobot (2026-04-01 - 2026-04-30)")
}

func TestGroupSummary(t *testing.T) {
	day := date(2026, time.March, 2)
	records := []attendance.Record{
		rec("9A", day, 30, 27),
		rec("6A", day, 21, 21),
	}

	got := GroupSummary(records)

	assert.Contains(t, got, "Jami: 51 ta o'quvchidan 48 tasi keldi")
	assert.Contains(t, got, "Qolgan: 3 ta o'quvchi")
	assert.Contains(t, got, "❌ Kelmaganlar ro'yxati:")
	assert.Contains(t, got, "9A: 3 ta o'quvchi kelmadi")
	assert.NotContains(t, got, "6A: 0")
}

func TestGroupSummaryAllPresentOmitsAbsentList(t *testing.T) {
	day := date(2026, time.March, 2)
	got := GroupSummary([]attendance.Record{rec("9A", day, 30, 30)})
	assert.NotContains(t, got, "Kelmaganlar ro'yxati")
}

func TestRecipientSummary(t *testing.T) {
	day := date(2026, time.March, 2)
	records := []attendance.Record{rec("9A", day, 30, 27)}

	got := RecipientSummary(records, testClasses)

	assert.Contains(t, got, "9A 30/27")
	assert.Contains(t, got, "6A "+NotSubmittedMarker)
	assert.Contains(t, got, "9B "+NotSubmittedMarker)
	assert.Contains(t, got, "Topshirilgan ma'lumotlarga ko'ra Jami 30/27")
}

func TestReminder(t *testing.T) {
	assert.Empty(t, Reminder(nil))

	got := Reminder([]string{"6A", "9B"})
	assert.Equal(t, "⏰ Eslatma: Quyidagi sinflar hali davomat yubormadi:\n6A, 9B", got)
}
