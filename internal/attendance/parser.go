package attendance

import (
	"regexp"
	"strconv"
	"strings"

	pstrings "davomat/pkg/platform/strings"
)

// The two message grammars teachers actually type.
//
// Submission, single line or multi-line:
//
//	9A 30/27 Ali Olimov Bobur
//
//	6A 21/18
//	Abubakr Valijanov
//	Alisher Oripov
//
// The first line carries the class token and <total>/<present>. Trailing
// tokens on that line are one name per token; every further non-empty line is
// one full name (this is the only way to submit multi-word names).
//
// Late update, single line:
//
//	9A Bobur keldi
//	9A Bilolxon Oripov ketdi
//
// Everything between the class token and the trailing keyword is the student
// name, casing preserved.
var (
	submissionLineRe = regexp.MustCompile(`(?i)^([A-Z0-9]+)\s+(\d+)/(\d+)(?:\s+(.+))?$`)
	lateUpdateRe     = regexp.MustCompile(`(?i)^([A-Z0-9]+)\s+(.+)\s+(keldi|ketdi)$`)
)

// ParseSubmission parses the submission grammar. Returns false when the first
// non-empty line does not match the class/number pattern.
func ParseSubmission(text string) (Submission, bool) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return Submission{}, false
	}

	m := submissionLineRe.FindStringSubmatch(lines[0])
	if m == nil {
		return Submission{}, false
	}

	// Canonical ordering contract: the two integers are <total>/<present>.
	total, err := strconv.Atoi(m[2])
	if err != nil {
		return Submission{}, false
	}
	present, err := strconv.Atoi(m[3])
	if err != nil {
		return Submission{}, false
	}

	sub := Submission{
		ClassName:    strings.ToUpper(m[1]),
		TotalCount:   total,
		PresentCount: present,
	}

	// First-line names: whitespace-separated, one name per token.
	if m[4] != "" {
		sub.StudentNames = append(sub.StudentNames, strings.Fields(m[4])...)
	}
	// Continuation lines: one full name per line, verbatim.
	sub.StudentNames = append(sub.StudentNames, lines[1:]...)

	return sub, true
}

// ParseLateUpdate parses the late-update grammar.
func ParseLateUpdate(text string) (LateUpdate, bool) {
	normalized := pstrings.CollapseSpaces(text)
	m := lateUpdateRe.FindStringSubmatch(normalized)
	if m == nil {
		return LateUpdate{}, false
	}

	action := ActionArrived
	if strings.EqualFold(m[3], "ketdi") {
		action = ActionDeparted
	}

	return LateUpdate{
		ClassName:   strings.ToUpper(m[1]),
		StudentName: strings.TrimSpace(m[2]),
		Action:      action,
	}, true
}

// Parsed is the outcome of classifying a raw message.
type Parsed struct {
	Submission *Submission
	LateUpdate *LateUpdate
}

// Parse tries the submission grammar first, then the late-update grammar.
// The order matters: a line that happens to satisfy both must resolve as a
// submission. Returns false when neither grammar matches.
func Parse(text string) (Parsed, bool) {
	if sub, ok := ParseSubmission(text); ok {
		return Parsed{Submission: &sub}, true
	}
	if ev, ok := ParseLateUpdate(text); ok {
		return Parsed{LateUpdate: &ev}, true
	}
	return Parsed{}, false
}
