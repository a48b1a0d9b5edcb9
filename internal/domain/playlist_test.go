package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTracks(n int) []Track {
	tracks := make([]Track, 0, n)
	for i := 1; i <= n; i++ {
		tracks = append(tracks, Track{
			ID:       fmt.Sprintf("t%d", i),
			Title:    fmt.Sprintf("Track %d", i),
			AudioURL: fmt.Sprintf("https://cdn.example.com/t%d.mp3", i),
		})
	}

	return tracks
}

func TestSetTracksSelectsStartIndex(t *testing.T) {
	p := NewPlaylist()

	err := p.SetTracks(testTracks(3), 1)
	require.NoError(t, err)

	current, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "t2", current.ID)
	assert.Equal(t, 1, p.CurrentIndex())
	assert.False(t, p.Shuffled())
}

func TestSetTracksRejectsBadInput(t *testing.T) {
	p := NewPlaylist()
	require.NoError(t, p.SetTracks(testTracks(3), 0))

	err := p.SetTracks(nil, 0)
	assert.ErrorIs(t, err, ErrEmptyTracklist)

	err = p.SetTracks(testTracks(3), 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	// state unchanged after both rejections
	assert.Equal(t, 0, p.CurrentIndex())
	assert.Equal(t, 3, p.Length())
}

func TestAdvanceAtLastIndex(t *testing.T) {
	p := NewPlaylist()
	require.NoError(t, p.SetTracks(testTracks(3), 2))

	// repeat off: no-op at the boundary
	require.NoError(t, p.Advance(RepeatOff))
	assert.Equal(t, 2, p.CurrentIndex())

	// repeat all: wraps to the first track
	require.NoError(t, p.Advance(RepeatAll))
	assert.Equal(t, 0, p.CurrentIndex())
	current, _ := p.Current()
	assert.Equal(t, "t1", current.ID)
}

func TestAdvanceRefusesTrackWithoutAudio(t *testing.T) {
	tracks := testTracks(3)
	tracks[1].AudioURL = ""

	p := NewPlaylist()
	require.NoError(t, p.SetTracks(tracks, 0))

	err := p.Advance(RepeatOff)
	assert.ErrorIs(t, err, ErrNoAudioSource)
	assert.Equal(t, 0, p.CurrentIndex())
}

func TestRetreatAtZero(t *testing.T) {
	p := NewPlaylist()
	require.NoError(t, p.SetTracks(testTracks(3), 0))

	p.Retreat()
	assert.Equal(t, 0, p.CurrentIndex())

	require.NoError(t, p.Advance(RepeatOff))
	p.Retreat()
	assert.Equal(t, 0, p.CurrentIndex())
}

func TestToggleShuffleKeepsCurrentTrack(t *testing.T) {
	tracks := testTracks(10)
	p := NewPlaylist()
	require.NoError(t, p.SetTracks(tracks, 4))

	before, _ := p.Current()

	p.ToggleShuffle()
	assert.True(t, p.Shuffled())
	assert.Equal(t, 0, p.CurrentIndex(), "current track must be pinned first")
	pinned, _ := p.Current()
	assert.Equal(t, before.ID, pinned.ID)
	assert.Equal(t, len(tracks), p.Length())

	p.ToggleShuffle()
	assert.False(t, p.Shuffled())
	restored, _ := p.Current()
	assert.Equal(t, before.ID, restored.ID)

	// element-equal restore: same ids, same order
	for i, track := range p.Tracks() {
		assert.Equal(t, tracks[i].ID, track.ID)
	}
}

func TestToggleShuffleKeepsMultiset(t *testing.T) {
	tracks := testTracks(8)
	p := NewPlaylist()
	require.NoError(t, p.SetTracks(tracks, 3))

	p.ToggleShuffle()

	seen := make(map[string]int)
	for _, track := range p.Tracks() {
		seen[track.ID]++
	}
	for _, track := range tracks {
		assert.Equal(t, 1, seen[track.ID], "track %s lost or duplicated", track.ID)
	}
}

func TestSpliceNext(t *testing.T) {
	p := NewPlaylist()
	require.NoError(t, p.SetTracks(testTracks(2), 0))

	queued := Track{ID: "q1", Title: "Queued", AudioURL: "https://cdn.example.com/q1.mp3"}
	p.SpliceNext(queued)

	assert.Equal(t, 1, p.CurrentIndex())
	current, _ := p.Current()
	assert.Equal(t, "q1", current.ID)
	assert.Equal(t, []string{"t1", "q1", "t2"}, trackIDs(p.Tracks()))
}

func TestCurrentIndexInvariant(t *testing.T) {
	p := NewPlaylist()
	require.NoError(t, p.SetTracks(testTracks(4), 0))

	ops := []func(){
		func() { p.Advance(RepeatAll) },
		func() { p.ToggleShuffle() },
		func() { p.Advance(RepeatOff) },
		func() { p.Retreat() },
		func() { p.ToggleShuffle() },
		func() { p.Advance(RepeatAll) },
		func() { p.SpliceNext(Track{ID: "x", AudioURL: "https://cdn.example.com/x.mp3"}) },
		func() { p.Retreat() },
	}

	for i, op := range ops {
		op()
		if _, ok := p.Current(); ok {
			require.GreaterOrEqual(t, p.CurrentIndex(), 0, "op %d", i)
			require.Less(t, p.CurrentIndex(), p.Length(), "op %d", i)
		}
	}
}

func trackIDs(tracks []Track) []string {
	ids := make([]string, 0, len(tracks))
	for _, track := range tracks {
		ids = append(ids, track.ID)
	}

	return ids
}
