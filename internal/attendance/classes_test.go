package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testClasses = ClassList{"1A", "2A", "9A", "9B", "10A", "11A"}

func TestClassListContains(t *testing.T) {
	assert.True(t, testClasses.Contains("9A"))
	assert.True(t, testClasses.Contains("9a"))
	assert.False(t, testClasses.Contains("12A"))
}

func TestClassListSortKey(t *testing.T) {
	names := []string{"10A", "9A", "ZZ", "1A", "AA"}
	testClasses.SortKey(names)
	// Enumeration order first, then unknown classes alphabetically.
	assert.Equal(t, []string{"1A", "9A", "10A", "AA", "ZZ"}, names)
}

func TestClassListMissing(t *testing.T) {
	missing := testClasses.Missing(map[string]bool{"9A": true, "1A": true})
	assert.Equal(t, []string{"2A", "9B", "10A", "11A"}, missing)
}
