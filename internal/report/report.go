// Package report renders attendance summaries as plain chat text.
//
// Every generator is a pure function of the records passed in, so a report is
// always reproducible from store contents. All counts render in the canonical
// <total>/<present> order.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"davomat/internal/attendance"
	"davomat/pkg/localdate"
)

// NotSubmittedMarker is rendered for a known class with no record.
const NotSubmittedMarker = "Topshirmadi"

// Daily renders the per-class report for one date. Known classes appear in
// enumeration order with a marker when missing; records for classes outside
// the enumeration are appended after, alphabetically. Grand totals sum every
// record, listed or not.
func Daily(date localdate.Date, records []attendance.Record, classes attendance.ClassList) string {
	byClass := make(map[string]attendance.Record, len(records))
	for _, rec := range records {
		byClass[strings.ToUpper(rec.ClassName)] = rec
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Kunlik hisobot (%s)\n\n", date)

	for _, className := range classes {
		if rec, ok := byClass[strings.ToUpper(className)]; ok {
			fmt.Fprintf(&b, "%s: %d/%d\n", className, rec.TotalCount, rec.PresentCount)
			delete(byClass, strings.ToUpper(className))
		} else {
			fmt.Fprintf(&b, "%s: %s\n", className, NotSubmittedMarker)
		}
	}

	var extra []attendance.Record
	for _, rec := range byClass {
		extra = append(extra, rec)
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i].ClassName < extra[j].ClassName })
	for _, rec := range extra {
		fmt.Fprintf(&b, "%s: %d/%d\n", rec.ClassName, rec.TotalCount, rec.PresentCount)
	}

	total, present := sum(records)
	fmt.Fprintf(&b, "\nJami: %d/%d", total, present)
	if absent := total - present; absent > 0 {
		fmt.Fprintf(&b, "\nKelmaganlar: %d", absent)
	}
	return b.String()
}

// Weekly renders the per-day report over an inclusive date range.
func Weekly(start, end localdate.Date, records []attendance.Record) string {
	return rangeReport("📊 Haftalik hisobot", start, end, records)
}

// Monthly is the range report over a true calendar month.
func Monthly(year int, month time.Month, records []attendance.Record) string {
	start, end := localdate.MonthRange(year, month)
	return rangeReport("📊 Oylik hisobot", start, end, records)
}

func rangeReport(title string, start, end localdate.Date, records []attendance.Record) string {
	type dayTotals struct {
		date    localdate.Date
		total   int
		present int
	}

	byDate := make(map[localdate.Date]*dayTotals)
	for _, rec := range records {
		day := byDate[rec.Date]
		if day == nil {
			day = &dayTotals{date: rec.Date}
			byDate[rec.Date] = day
		}
		day.total += rec.TotalCount
		day.present += rec.PresentCount
	}

	days := make([]*dayTotals, 0, len(byDate))
	for _, day := range byDate {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].date.Before(days[j].date) })

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s - %s)\n\n", title, start, end)

	var total, present int
	for _, day := range days {
		fmt.Fprintf(&b, "%s: %d/%d", day.date, day.total, day.present)
		if absent := day.total - day.present; absent > 0 {
			fmt.Fprintf(&b, " (Kelmaganlar: %d)", absent)
		}
		b.WriteString("\n")
		total += day.total
		present += day.present
	}

	if len(days) > 0 {
		if start != end {
			fmt.Fprintf(&b, "\nO'rtacha: %d/%d", roundMean(total, len(days)), roundMean(present, len(days)))
		}
		fmt.Fprintf(&b, "\nJami: %d/%d", total, present)
		if absent := total - present; absent > 0 {
			fmt.Fprintf(&b, "\nKelmaganlar: %d", absent)
		}
	}
	return b.String()
}

// GroupSummary is the scheduled digest pushed to the group chat.
func GroupSummary(records []attendance.Record) string {
	total, present := sum(records)

	var b strings.Builder
	b.WriteString("📊 Bugungi davomad natijalari\n\n")
	fmt.Fprintf(&b, "Jami: %d ta o'quvchidan %d tasi keldi\n", total, present)
	fmt.Fprintf(&b, "Qolgan: %d ta o'quvchi\n", total-present)

	var absentLines []string
	for _, rec := range sortedByClass(records) {
		if absent := rec.TotalCount - rec.PresentCount; absent > 0 {
			absentLines = append(absentLines, fmt.Sprintf("%s: %d ta o'quvchi kelmadi", rec.ClassName, absent))
		}
	}
	if len(absentLines) > 0 {
		b.WriteString("\n❌ Kelmaganlar ro'yxati:\n")
		b.WriteString(strings.Join(absentLines, "\n"))
	}
	return b.String()
}

// RecipientSummary is the per-recipient digest sent to each authorized user,
// listing submitted classes followed by the ones still missing.
func RecipientSummary(records []attendance.Record, classes attendance.ClassList) string {
	var b strings.Builder
	for _, rec := range sortedByClass(records) {
		fmt.Fprintf(&b, "%s %d/%d\n", rec.ClassName, rec.TotalCount, rec.PresentCount)
	}

	submitted := make(map[string]bool, len(records))
	for _, rec := range records {
		submitted[strings.ToUpper(rec.ClassName)] = true
	}
	for _, className := range classes.Missing(submitted) {
		fmt.Fprintf(&b, "%s %s\n", className, NotSubmittedMarker)
	}

	total, present := sum(records)
	fmt.Fprintf(&b, "\nTopshirilgan ma'lumotlarga ko'ra Jami %d/%d", total, present)
	return b.String()
}

// Reminder names the classes that have not submitted yet. Returns empty when
// none are missing; callers skip sending in that case.
func Reminder(missing []string) string {
	if len(missing) == 0 {
		return ""
	}
	return "⏰ Eslatma: Quyidagi sinflar hali davomat yubormadi:\n" + strings.Join(missing, ", ")
}

func sum(records []attendance.Record) (total, present int) {
	for _, rec := range records {
		total += rec.TotalCount
		present += rec.PresentCount
	}
	return total, present
}

func sortedByClass(records []attendance.Record) []attendance.Record {
	out := make([]attendance.Record, len(records))
	copy(out, records)
	sort.Slice(out, func(i, j int) bool { return out[i].ClassName < out[j].ClassName })
	return out
}

// Half-up rounding, matching how the per-day means were always reported.
func roundMean(sum, days int) int {
	return int(math.Round(float64(sum) / float64(days)))
}
