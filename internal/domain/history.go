package domain

import (
	"sort"
	"time"
)

// DefaultHistoryLimit keeps the rolling window of recently played tracks
// bounded.
const DefaultHistoryLimit = 20

// maxTrackedCounts caps the number of distinct tracks with a play count.
const maxTrackedCounts = 500

type PlayedTrack struct {
	Track    Track     `json:"track"`
	PlayedAt time.Time `json:"played_at"`
}

// History records recently played tracks and per-track play counts. Both
// structures are bounded: the window is capped at limit entries, and at
// most maxTrackedCounts distinct tracks keep a count, evicting the coldest
// entry on overflow.
type History struct {
	window []PlayedTrack
	counts map[string]int
	tracks map[string]Track
	limit  int
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	return &History{
		counts: make(map[string]int),
		tracks: make(map[string]Track),
		limit:  limit,
	}
}

// Add prepends a play record and bumps the play count.
func (h *History) Add(track Track, playedAt time.Time) {
	h.window = append([]PlayedTrack{{Track: track, PlayedAt: playedAt}}, h.window...)
	if len(h.window) > h.limit {
		h.window = h.window[:h.limit]
	}

	h.counts[track.ID]++
	h.tracks[track.ID] = track

	if len(h.counts) > maxTrackedCounts {
		h.evictColdest(track.ID)
	}
}

// evictColdest drops the lowest-count entry, ties broken by smallest ID,
// never the track that was just recorded.
func (h *History) evictColdest(keep string) {
	victim := ""
	for id, n := range h.counts {
		if id == keep {
			continue
		}
		if victim == "" || n < h.counts[victim] || (n == h.counts[victim] && id < victim) {
			victim = id
		}
	}
	if victim == "" {
		return
	}

	delete(h.counts, victim)
	delete(h.tracks, victim)
}

// LastPlayed returns the rolling window, most recent first.
func (h *History) LastPlayed() []PlayedTrack {
	return h.window
}

func (h *History) PlayCount(trackID string) int {
	return h.counts[trackID]
}

// MostPlayed returns up to n tracks ordered by play count, highest first.
func (h *History) MostPlayed(n int) []Track {
	ids := make([]string, 0, len(h.counts))
	for id := range h.counts {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool {
		if h.counts[ids[i]] != h.counts[ids[j]] {
			return h.counts[ids[i]] > h.counts[ids[j]]
		}
		return ids[i] < ids[j]
	})

	if n > len(ids) {
		n = len(ids)
	}

	top := make([]Track, 0, n)
	for _, id := range ids[:n] {
		top = append(top, h.tracks[id])
	}

	return top
}
