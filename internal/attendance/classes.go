package attendance

import (
	"sort"
	"strings"
)

// ClassList is the school's fixed, ordered class enumeration.
//
// Order is positional, not alphabetical: "10A" sorts after "9B" because that
// is how the school lists its classes, and every report follows it.
type ClassList []string

// Contains reports whether name (already uppercased by the parser) is a known
// class.
func (l ClassList) Contains(name string) bool {
	return l.indexOf(name) >= 0
}

func (l ClassList) indexOf(name string) int {
	for i, c := range l {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// SortKey orders class names by enumeration position. Names outside the
// enumeration sort after every known class, alphabetically among themselves,
// so records for retired or mistyped classes still render deterministically.
func (l ClassList) SortKey(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		a, b := l.indexOf(names[i]), l.indexOf(names[j])
		switch {
		case a >= 0 && b >= 0:
			return a < b
		case a >= 0:
			return true
		case b >= 0:
			return false
		default:
			return names[i] < names[j]
		}
	})
}

// Missing returns the known classes absent from submitted, in enumeration
// order.
func (l ClassList) Missing(submitted map[string]bool) []string {
	var missing []string
	for _, c := range l {
		if !submitted[c] {
			missing = append(missing, c)
		}
	}
	return missing
}
