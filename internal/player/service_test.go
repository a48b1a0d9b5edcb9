package player

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamwave/player/internal/audio"
	"github.com/jamwave/player/internal/domain"
)

func testTracks(n int) []domain.Track {
	tracks := make([]domain.Track, 0, n)
	for i := 1; i <= n; i++ {
		tracks = append(tracks, domain.Track{
			ID:       fmt.Sprintf("t%d", i),
			Title:    fmt.Sprintf("Track %d", i),
			Duration: 100,
			AudioURL: fmt.Sprintf("https://cdn.example.com/t%d.mp3", i),
		})
	}

	return tracks
}

func newTestService(t *testing.T) (*Service, *audio.Fake) {
	t.Helper()
	out := audio.NewFake()
	s := NewService(out, nil, nil, slog.Default())

	return s, out
}

// pump feeds pending output events into the service, the way Run does.
func pump(s *Service, out *audio.Fake) {
	for {
		select {
		case ev := <-out.Events():
			s.handleEvent(ev)
		default:
			return
		}
	}
}

func TestSetPlaylistAndPlayStartsAtIndex(t *testing.T) {
	s, out := newTestService(t)

	require.NoError(t, s.SetPlaylistAndPlay(testTracks(3), 1))
	pump(s, out)

	snap := s.Snapshot()
	require.NotNil(t, snap.CurrentTrack)
	assert.Equal(t, "t2", snap.CurrentTrack.ID)
	assert.Equal(t, 1, snap.CurrentIndex)
	assert.True(t, snap.IsPlaying)
	assert.Equal(t, audio.StatePlaying, out.State())
}

func TestSetPlaylistAndPlayRejectsEmpty(t *testing.T) {
	s, _ := newTestService(t)

	err := s.SetPlaylistAndPlay(nil, 0)
	assert.ErrorIs(t, err, domain.ErrEmptyTracklist)

	snap := s.Snapshot()
	assert.False(t, snap.IsPlaying)
	assert.Nil(t, snap.CurrentTrack)
}

func TestTogglePlayWithoutTrack(t *testing.T) {
	s, _ := newTestService(t)

	err := s.TogglePlay()
	assert.ErrorIs(t, err, ErrNothingToPlay)
	assert.False(t, s.Snapshot().IsPlaying)
}

func TestTogglePlayRollsBackOnRejection(t *testing.T) {
	s, out := newTestService(t)
	require.NoError(t, s.SetPlaylistAndPlay(testTracks(1), 0))
	pump(s, out)

	require.NoError(t, s.TogglePlay())
	assert.False(t, s.Snapshot().IsPlaying)

	out.RejectNextPlay()
	err := s.TogglePlay()
	require.Error(t, err)

	snap := s.Snapshot()
	assert.False(t, snap.IsPlaying, "must never report playing after a rejected play")
	assert.NotEmpty(t, snap.Error)
}

func TestPlayNextWrapsUnderRepeatAll(t *testing.T) {
	s, out := newTestService(t)
	require.NoError(t, s.SetPlaylistAndPlay(testTracks(3), 2))
	pump(s, out)

	// repeat off: boundary no-op, play state untouched
	require.NoError(t, s.PlayNext())
	snap := s.Snapshot()
	assert.Equal(t, 2, snap.CurrentIndex)
	assert.True(t, snap.IsPlaying)

	s.ToggleRepeatMode() // ALL
	require.NoError(t, s.PlayNext())
	snap = s.Snapshot()
	assert.Equal(t, 0, snap.CurrentIndex)
	assert.Equal(t, "t1", snap.CurrentTrack.ID)
}

func TestQueuePreemptsPlayNext(t *testing.T) {
	s, out := newTestService(t)
	require.NoError(t, s.SetPlaylistAndPlay(testTracks(2), 0))
	pump(s, out)

	queued := domain.Track{ID: "q1", Title: "Queued", Duration: 90, AudioURL: "https://cdn.example.com/q1.mp3"}
	s.AddToQueue(queued)

	require.NoError(t, s.PlayNext())

	snap := s.Snapshot()
	assert.Equal(t, "q1", snap.CurrentTrack.ID)
	assert.Equal(t, 1, snap.CurrentIndex)
	assert.Equal(t, []string{"t1", "q1", "t2"}, trackIDs(snap.Playlist))
	assert.Empty(t, snap.Queue)
}

func TestPlayNextFromQueueSplices(t *testing.T) {
	s, out := newTestService(t)
	require.NoError(t, s.SetPlaylistAndPlay(testTracks(2), 0))
	pump(s, out)

	queued := domain.Track{ID: "q1", Duration: 90, AudioURL: "https://cdn.example.com/q1.mp3"}
	s.AddToQueue(queued)

	require.NoError(t, s.PlayNextFromQueue())

	snap := s.Snapshot()
	assert.Equal(t, []string{"t1", "q1", "t2"}, trackIDs(snap.Playlist))
	assert.Equal(t, 1, snap.CurrentIndex)
	assert.Empty(t, snap.Queue)

	err := s.PlayNextFromQueue()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestSnapshotIsDetachedFromLiveState(t *testing.T) {
	s, out := newTestService(t)
	require.NoError(t, s.SetPlaylistAndPlay(testTracks(2), 0))
	pump(s, out)

	q1 := domain.Track{ID: "q1", Duration: 90, AudioURL: "https://cdn.example.com/q1.mp3"}
	q2 := domain.Track{ID: "q2", Duration: 90, AudioURL: "https://cdn.example.com/q2.mp3"}
	s.AddToQueue(q1)
	s.AddToQueue(q2)

	before := s.Snapshot()
	require.Equal(t, []string{"q1", "q2"}, trackIDs(before.Queue))

	// in-place removal must not reach into a snapshot already handed out
	require.NoError(t, s.RemoveFromQueue(0))
	assert.Equal(t, []string{"q1", "q2"}, trackIDs(before.Queue))
	assert.Equal(t, []string{"t1", "t2"}, trackIDs(before.Playlist))

	// splicing the queued track into the playlist must not either
	before = s.Snapshot()
	require.NoError(t, s.PlayNextFromQueue())
	assert.Equal(t, []string{"t1", "t2"}, trackIDs(before.Playlist))
	assert.Equal(t, []string{"q2"}, trackIDs(before.Queue))
}

func TestEndedAdvancesToNextTrack(t *testing.T) {
	s, out := newTestService(t)
	for _, track := range testTracks(2) {
		out.SetTrackDuration(track.AudioURL, 10)
	}
	require.NoError(t, s.SetPlaylistAndPlay(testTracks(2), 0))
	pump(s, out)

	out.Advance(10)
	pump(s, out)

	snap := s.Snapshot()
	assert.Equal(t, "t2", snap.CurrentTrack.ID)
	assert.True(t, snap.IsPlaying)
	assert.Equal(t, "https://cdn.example.com/t2.mp3", out.Source())
}

func TestEndedStopsAtPlaylistEnd(t *testing.T) {
	s, out := newTestService(t)
	out.SetTrackDuration("https://cdn.example.com/t2.mp3", 10)
	require.NoError(t, s.SetPlaylistAndPlay(testTracks(2), 1))
	pump(s, out)

	out.Advance(10)
	pump(s, out)

	snap := s.Snapshot()
	assert.False(t, snap.IsPlaying)
	assert.Equal(t, 1, snap.CurrentIndex)
}

func TestEndedRepeatOneReplays(t *testing.T) {
	s, out := newTestService(t)
	out.SetTrackDuration("https://cdn.example.com/t1.mp3", 10)
	require.NoError(t, s.SetPlaylistAndPlay(testTracks(1), 0))
	pump(s, out)

	s.ToggleRepeatMode() // ALL
	s.ToggleRepeatMode() // ONE

	out.Advance(10)
	pump(s, out)

	snap := s.Snapshot()
	assert.True(t, snap.IsPlaying)
	assert.Equal(t, "t1", snap.CurrentTrack.ID)
	assert.Equal(t, 0.0, snap.CurrentTime)
	assert.Equal(t, audio.StatePlaying, out.State())
}

func TestTrackChangeSkipsRedundantReload(t *testing.T) {
	s, out := newTestService(t)
	tracks := testTracks(2)
	require.NoError(t, s.SetPlaylistAndPlay(tracks, 0))
	pump(s, out)

	playsBefore := out.PlayCalls()

	// same list, same start track: source must not be reloaded
	require.NoError(t, s.SetPlaylistAndPlay(tracks, 0))
	pump(s, out)

	assert.Equal(t, "https://cdn.example.com/t1.mp3", out.Source())
	assert.Equal(t, playsBefore, out.PlayCalls())
}

func TestSeekIgnoredWithoutDuration(t *testing.T) {
	s, _ := newTestService(t)

	s.Seek(42)
	assert.Equal(t, 0.0, s.Snapshot().CurrentTime)
}

func TestSeekIsOptimistic(t *testing.T) {
	s, out := newTestService(t)
	out.SetTrackDuration("https://cdn.example.com/t1.mp3", 100)
	require.NoError(t, s.SetPlaylistAndPlay(testTracks(1), 0))
	pump(s, out)

	s.Seek(42)
	assert.Equal(t, 42.0, s.Snapshot().CurrentTime)
	assert.Equal(t, 42.0, out.Position())
}

func TestMuteIsIndependentOfVolume(t *testing.T) {
	s, out := newTestService(t)

	s.SetVolume(0.7)
	s.ToggleMute()

	snap := s.Snapshot()
	assert.True(t, snap.IsMuted)
	assert.Equal(t, 0.7, snap.Volume)
	assert.True(t, out.Muted())
	assert.Equal(t, 0.7, out.Volume())

	s.ToggleMute()
	assert.False(t, s.Snapshot().IsMuted)
}

func TestErrorEventForcesPaused(t *testing.T) {
	s, out := newTestService(t)
	require.NoError(t, s.SetPlaylistAndPlay(testTracks(1), 0))
	pump(s, out)

	s.handleEvent(audio.Event{Type: audio.EventError, Code: audio.ErrCodeNetwork})

	snap := s.Snapshot()
	assert.False(t, snap.IsPlaying)
	assert.Equal(t, "network error while loading track", snap.Error)
}

func TestHistoryRecordsPlayedTracks(t *testing.T) {
	s, out := newTestService(t)
	tracks := testTracks(3)
	for _, track := range tracks {
		out.SetTrackDuration(track.AudioURL, 10)
	}
	require.NoError(t, s.SetPlaylistAndPlay(tracks, 0))
	pump(s, out)

	out.Advance(10)
	pump(s, out)

	recent := s.RecentlyPlayed()
	require.Len(t, recent, 2)
	assert.Equal(t, "t2", recent[0].Track.ID)
	assert.Equal(t, "t1", recent[1].Track.ID)
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	s, _ := newTestService(t)
	ch, cancel := s.Subscribe()
	defer cancel()

	s.SetVolume(0.5)

	select {
	case snap := <-ch:
		assert.Equal(t, 0.5, snap.Volume)
	default:
		t.Fatal("expected a snapshot after a state transition")
	}
}

func trackIDs(tracks []domain.Track) []string {
	ids := make([]string, 0, len(tracks))
	for _, track := range tracks {
		ids = append(ids, track.ID)
	}

	return ids
}
