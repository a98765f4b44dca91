// internal/orchestrator/schedule_test.go
package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextOccurrence(t *testing.T) {
	t.Run("before the anchor fires today", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 4, 30, 0, 0, time.UTC)
		next := NextOccurrence(now, 6)
		assert.Equal(t, time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC), next)
	})

	t.Run("past the anchor fires tomorrow", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)
		next := NextOccurrence(now, 6)
		assert.Equal(t, time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC), next)
	})

	t.Run("exactly at the anchor fires tomorrow", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)
		next := NextOccurrence(now, 6)
		assert.Equal(t, time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC), next)
	})

	t.Run("local clocks are normalized to UTC", func(t *testing.T) {
		loc := time.FixedZone("UTC+2", 2*3600)
		now := time.Date(2025, 6, 1, 7, 0, 0, 0, loc) // 05:00 UTC
		next := NextOccurrence(now, 6)
		assert.Equal(t, time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC), next)
	})
}

func TestDefaultWindows(t *testing.T) {
	specs := DefaultWindows([]int{0, 6, 12, 18})
	require.Len(t, specs, 4)

	assert.Equal(t, "utc-0000", specs[0].Name)
	assert.True(t, specs[0].BaselineRefresh)
	for _, spec := range specs[1:] {
		assert.False(t, spec.BaselineRefresh)
	}
	assert.Equal(t, 18, specs[3].AnchorHour)
}
