package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/jamwave/player/internal/audio"
	"github.com/jamwave/player/internal/domain"
)

var (
	ErrNothingToPlay = errors.New("no playable track loaded")
	ErrQueueEmpty    = errors.New("queue is empty")
)

type Config struct {
	// CrossfadeWindow in seconds; used only when a secondary output is
	// provided.
	CrossfadeWindow float64
	HistoryLimit    int
}

// Snapshot is the observable playback state consumed by the control surface
// and the jam-sync handler.
type Snapshot struct {
	IsPlaying    bool              `json:"is_playing"`
	CurrentTime  float64           `json:"current_time"`
	Duration     float64           `json:"duration"`
	Volume       float64           `json:"volume"`
	IsMuted      bool              `json:"is_muted"`
	RepeatMode   domain.RepeatMode `json:"repeat_mode"`
	Shuffled     bool              `json:"shuffled"`
	IsFullscreen bool              `json:"is_fullscreen"`
	Error        string            `json:"error,omitempty"`
	CurrentTrack *domain.Track     `json:"current_track,omitempty"`
	CurrentIndex int               `json:"current_index"`
	Playlist     []domain.Track    `json:"playlist"`
	Queue        []domain.Track    `json:"queue"`
}

// Service is the single owner of playback flags, playlist position, and the
// play queue. All mutation goes through its commands; the audio output's
// event stream feeds back in through Run.
type Service struct {
	mu     sync.Mutex
	logger *slog.Logger
	out    audio.Output
	fader  *crossfader

	playlist *domain.Playlist
	queue    *domain.Queue
	history  *domain.History

	isPlaying    bool
	isFullscreen bool
	isMuted      bool
	volume       float64
	repeat       domain.RepeatMode
	currentTime  float64
	duration     float64
	lastError    string

	subs      map[int]chan Snapshot
	nextSubID int
	now       func() time.Time
}

// NewService wires the playback core to its primary output. A non-nil next
// output enables crossfade on that channel.
func NewService(out audio.Output, next audio.Output, cfg *Config, logger *slog.Logger) *Service {
	if cfg == nil {
		cfg = &Config{}
	}

	s := &Service{
		logger:   logger,
		out:      out,
		playlist: domain.NewPlaylist(),
		queue:    domain.NewQueue(),
		history:  domain.NewHistory(cfg.HistoryLimit),
		volume:   1,
		repeat:   domain.RepeatOff,
		subs:     make(map[int]chan Snapshot),
		now:      time.Now,
	}
	if next != nil {
		s.fader = newCrossfader(next, cfg.CrossfadeWindow)
	}

	return s
}

// Run consumes the audio event stream until the context is done.
func (s *Service) Run(ctx context.Context) {
	var faderEvents <-chan audio.Event
	if s.fader != nil {
		faderEvents = s.fader.next.Events()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.out.Events():
			s.handleEvent(ev)
		case <-faderEvents:
			// the secondary channel's lifecycle is driven entirely by the
			// crossfader; its events carry nothing to act on
		}
	}
}

// LoadPlaylist replaces the playlist without selecting a track.
func (s *Service) LoadPlaylist(tracks []domain.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.playlist.Load(tracks); err != nil {
		s.logger.Warn("rejected playlist load", "error", err)
		return err
	}

	s.notifyLocked()
	return nil
}

// SetPlaylistAndPlay replaces the playlist, selects the track at startIndex
// and signals playback to start.
func (s *Service) SetPlaylistAndPlay(tracks []domain.Track, startIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.playlist.SetTracks(tracks, startIndex); err != nil {
		s.logger.Warn("rejected tracklist", "error", err, "tracks", len(tracks), "start_index", startIndex)
		return err
	}

	s.isPlaying = true
	s.loadCurrentLocked()
	s.notifyLocked()

	return nil
}

// TogglePlay flips between paused and playing. When the engine refuses to
// play, the state rolls back to paused and the error is recorded.
func (s *Service) TogglePlay() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	track, ok := s.playlist.Current()
	if !ok || !track.HasAudio() {
		s.logger.Warn("toggle play with no playable track")
		return ErrNothingToPlay
	}

	if s.isPlaying {
		s.out.Pause()
		s.isPlaying = false
		s.notifyLocked()
		return nil
	}

	if s.out.Source() != track.AudioURL {
		// playback starts once metadata is ready
		s.isPlaying = true
		s.loadCurrentLocked()
		s.notifyLocked()
		return nil
	}

	if err := s.playLocked(); err != nil {
		s.notifyLocked()
		return err
	}

	s.notifyLocked()
	return nil
}

// PlayNext advances playback. A non-empty queue always pre-empts playlist
// advancement.
func (s *Service) PlayNext() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.advanceLocked()
	s.notifyLocked()
	return err
}

func (s *Service) PlayPrevious() {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.playlist.CurrentIndex()
	s.playlist.Retreat()
	if s.playlist.CurrentIndex() != before {
		s.loadCurrentLocked()
	}
	s.notifyLocked()
}

// PlayNextFromQueue dequeues the head track, splices it in right after the
// current position and plays it.
func (s *Service) PlayNextFromQueue() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.playQueuedLocked(); err != nil {
		return err
	}

	s.notifyLocked()
	return nil
}

func (s *Service) AddToQueue(track domain.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue.Add(track)
	s.notifyLocked()
}

func (s *Service) RemoveFromQueue(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.queue.RemoveAt(index); err != nil {
		return err
	}

	s.notifyLocked()
	return nil
}

func (s *Service) ClearQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue.Clear()
	s.notifyLocked()
}

func (s *Service) ToggleShuffle() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.playlist.ToggleShuffle()
	s.notifyLocked()
}

func (s *Service) ToggleRepeatMode() domain.RepeatMode {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.repeat = s.repeat.Cycle()
	s.notifyLocked()
	return s.repeat
}

// Seek sets the playback position, updating the observable time immediately
// rather than waiting for the next tick. A no-op while the duration is
// unknown.
func (s *Service) Seek(position float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.duration == 0 || math.IsNaN(s.duration) {
		return
	}

	s.out.Seek(position)
	s.currentTime = position
	s.notifyLocked()
}

// SetVolume expects a value in [0,1] by contract.
func (s *Service) SetVolume(volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.volume = volume
	s.out.SetVolume(volume)
	s.notifyLocked()
}

// ToggleMute silences the output without touching the volume value.
func (s *Service) ToggleMute() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.isMuted = !s.isMuted
	s.out.SetMuted(s.isMuted)
	s.notifyLocked()
}

func (s *Service) SetFullscreen(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.isFullscreen = enabled
	s.notifyLocked()
}

func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Service) RecentlyPlayed() []domain.PlayedTrack {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.LastPlayed()
}

func (s *Service) MostPlayed(n int) []domain.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.MostPlayed(n)
}

// Subscribe returns a channel receiving state snapshots after every
// transition. Slow consumers miss intermediate snapshots instead of blocking
// the player.
func (s *Service) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan Snapshot, 16)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Service) handleEvent(ev audio.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case audio.EventTimeUpdate:
		s.currentTime = ev.Position
		if ev.Duration > 0 {
			s.duration = ev.Duration
		}
		s.tickCrossfadeLocked()
	case audio.EventMetadataLoaded:
		s.duration = ev.Duration
		s.lastError = ""
		if s.isPlaying {
			s.playLocked()
		}
	case audio.EventEnded:
		s.onEndedLocked()
	case audio.EventError:
		s.lastError = ev.Code.Message()
		s.isPlaying = false
		s.logger.Error("playback error", "error", s.lastError)
	}

	s.notifyLocked()
}

func (s *Service) onEndedLocked() {
	if s.repeat == domain.RepeatOne {
		s.out.Seek(0)
		s.currentTime = 0
		s.playLocked()
		return
	}

	before := s.playlist.CurrentIndex()
	if err := s.advanceLocked(); err != nil {
		s.isPlaying = false
		return
	}
	if s.playlist.CurrentIndex() == before && s.queue.Length() == 0 {
		// end of playlist with repeat off
		s.isPlaying = false
	}
}

func (s *Service) advanceLocked() error {
	if s.queue.Length() > 0 {
		return s.playQueuedLocked()
	}

	before := s.playlist.CurrentIndex()
	if err := s.playlist.Advance(s.repeat); err != nil {
		if errors.Is(err, domain.ErrNoAudioSource) {
			s.lastError = err.Error()
		}
		return err
	}
	if s.playlist.CurrentIndex() != before {
		s.loadCurrentLocked()
	}

	return nil
}

func (s *Service) playQueuedLocked() error {
	track, ok := s.queue.Pop()
	if !ok {
		return ErrQueueEmpty
	}

	s.playlist.SpliceNext(track)
	s.loadCurrentLocked()

	return nil
}

func (s *Service) playLocked() error {
	err := s.out.Play()
	if err != nil {
		s.isPlaying = false
		s.lastError = err.Error()
		s.logger.Error("failed to start playback", "error", err)
		return fmt.Errorf("failed to start playback: %w", err)
	}

	s.isPlaying = true
	return nil
}

// loadCurrentLocked points the output at the current track. The source is
// reassigned only when it differs from what is already loaded.
func (s *Service) loadCurrentLocked() {
	track, ok := s.playlist.Current()
	if !ok {
		return
	}

	if s.out.Source() == track.AudioURL {
		if s.isPlaying && s.out.State() != audio.StatePlaying {
			s.playLocked()
		}
		return
	}

	s.currentTime = 0
	s.duration = track.Duration
	s.out.Load(track.AudioURL)
	s.history.Add(track, s.now())
	if s.fader != nil {
		s.fader.handoff(s.volume, s.out)
	}
}

func (s *Service) tickCrossfadeLocked() {
	if s.fader == nil || s.duration == 0 {
		return
	}

	timeLeft := s.duration - s.currentTime
	if timeLeft > s.fader.window {
		s.fader.idle(s.volume, s.out)
		return
	}

	if upcoming, ok := s.upcomingLocked(); ok {
		s.fader.prime(upcoming.AudioURL)
	}
	s.fader.tick(timeLeft, s.volume, s.out)
}

// upcomingLocked is the track the ended handler would pick next: queue head
// first, then the playlist neighbour. Nothing upcoming under repeat ONE.
func (s *Service) upcomingLocked() (domain.Track, bool) {
	if s.repeat == domain.RepeatOne {
		return domain.Track{}, false
	}
	if head := s.queue.Tracks(); len(head) > 0 {
		return head[0], true
	}

	return s.playlist.Peek(s.repeat)
}

func (s *Service) snapshotLocked() Snapshot {
	snap := Snapshot{
		IsPlaying:    s.isPlaying,
		CurrentTime:  s.currentTime,
		Duration:     s.duration,
		Volume:       s.volume,
		IsMuted:      s.isMuted,
		RepeatMode:   s.repeat,
		Shuffled:     s.playlist.Shuffled(),
		IsFullscreen: s.isFullscreen,
		Error:        s.lastError,
		CurrentIndex: s.playlist.CurrentIndex(),
		// cloned: snapshots outlive the lock, the live slices do not
		Playlist: slices.Clone(s.playlist.Tracks()),
		Queue:    slices.Clone(s.queue.Tracks()),
	}
	if track, ok := s.playlist.Current(); ok {
		snap.CurrentTrack = &track
	}

	return snap
}

func (s *Service) notifyLocked() {
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}
