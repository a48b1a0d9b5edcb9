package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryWindowIsBounded(t *testing.T) {
	h := NewHistory(20)
	now := time.Now()

	for i := 0; i < 30; i++ {
		h.Add(Track{ID: fmt.Sprintf("t%d", i)}, now.Add(time.Duration(i)*time.Second))
	}

	window := h.LastPlayed()
	require.Len(t, window, 20)
	assert.Equal(t, "t29", window[0].Track.ID, "most recent first")
	assert.Equal(t, "t10", window[19].Track.ID)
}

func TestHistoryCountsAreBounded(t *testing.T) {
	h := NewHistory(20)
	now := time.Now()

	h.Add(Track{ID: "aaa"}, now)
	h.Add(Track{ID: "aaa"}, now)
	for i := 1; i <= maxTrackedCounts+1; i++ {
		h.Add(Track{ID: fmt.Sprintf("t%04d", i)}, now)
	}

	assert.Len(t, h.counts, maxTrackedCounts)
	assert.Len(t, h.tracks, maxTrackedCounts)

	// the coldest entries go first, warm ones survive
	assert.Equal(t, 2, h.PlayCount("aaa"))
	assert.Equal(t, 0, h.PlayCount("t0001"))
	assert.Equal(t, 1, h.PlayCount(fmt.Sprintf("t%04d", maxTrackedCounts+1)))
}

func TestHistoryMostPlayed(t *testing.T) {
	h := NewHistory(20)
	now := time.Now()

	for i := 0; i < 3; i++ {
		h.Add(Track{ID: "a", Title: "A"}, now)
	}
	h.Add(Track{ID: "b", Title: "B"}, now)
	h.Add(Track{ID: "b", Title: "B"}, now)
	h.Add(Track{ID: "c", Title: "C"}, now)

	top := h.MostPlayed(2)
	require.Len(t, top, 2)
	assert.Equal(t, "a", top[0].ID)
	assert.Equal(t, "b", top[1].ID)

	assert.Equal(t, 3, h.PlayCount("a"))
	assert.Equal(t, 0, h.PlayCount("missing"))
}
