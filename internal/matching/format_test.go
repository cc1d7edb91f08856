// internal/matching/format_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatList(t *testing.T) {
	tests := []struct {
		name     string
		items    []string
		limit    int
		expected string
	}{
		{name: "empty", items: nil, limit: 3, expected: ""},
		{name: "single", items: []string{"mission"}, limit: 3, expected: "Mission"},
		{name: "underscores", items: []string{"bayview_hunters_point"}, limit: 3, expected: "Bayview Hunters Point"},
		{name: "within limit", items: []string{"mission", "excelsior"}, limit: 3, expected: "Mission, Excelsior"},
		{name: "truncated", items: []string{"a", "b", "c", "d", "e"}, limit: 3, expected: "A, B, C +2 more"},
		{name: "default limit", items: []string{"a", "b", "c", "d"}, limit: 0, expected: "A, B, C +1 more"},
		{name: "custom limit", items: []string{"spanish", "cantonese"}, limit: 1, expected: "Spanish +1 more"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatList(tt.items, tt.limit))
		})
	}
}

func TestFormatDollars(t *testing.T) {
	assert.Equal(t, "$0", formatDollars(0))
	assert.Equal(t, "$0", formatDollars(99))
	assert.Equal(t, "$500", formatDollars(50000))
	assert.Equal(t, "$1,234,567", formatDollars(123456700))
	assert.Equal(t, "-$1,000", formatDollars(-100000))
}

func TestSet(t *testing.T) {
	a := NewSet("Mission", " mission ", "Excelsior", "")
	b := NewSet("excelsior", "bayview")

	assert.Equal(t, 2, a.Len())
	assert.True(t, a.Has("MISSION"))
	assert.Equal(t, []string{"excelsior"}, a.Intersect(b).Sorted())
	assert.Equal(t, []string{"mission"}, a.Difference(b).Sorted())
	assert.Equal(t, []string{"bayview", "excelsior", "mission"}, a.Union(b).Sorted())
	assert.NotNil(t, Set{}.Sorted())
}
