package domain

import (
	"errors"
	"math/rand/v2"
	"slices"
)

var (
	ErrEmptyTracklist  = errors.New("empty tracklist")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNoCurrentTrack  = errors.New("no current track")
	ErrNoAudioSource   = errors.New("track has no audio source")
)

// Playlist owns the currently loaded ordered track list and the navigation
// position. The original order is snapshotted so disabling shuffle restores
// the sequence the caller loaded.
type Playlist struct {
	list          []Track
	originalOrder []Track
	currentIndex  int
	shuffled      bool
}

func NewPlaylist() *Playlist {
	return &Playlist{currentIndex: -1}
}

func (p *Playlist) Tracks() []Track {
	return p.list
}

func (p *Playlist) Length() int {
	return len(p.list)
}

func (p *Playlist) CurrentIndex() int {
	return p.currentIndex
}

func (p *Playlist) Shuffled() bool {
	return p.shuffled
}

// Current returns the selected track, if any.
func (p *Playlist) Current() (Track, bool) {
	if p.currentIndex < 0 || p.currentIndex >= len(p.list) {
		return Track{}, false
	}

	return p.list[p.currentIndex], true
}

// Load replaces the playlist and its original-order snapshot without
// selecting a track.
func (p *Playlist) Load(tracks []Track) error {
	if len(tracks) == 0 {
		return ErrEmptyTracklist
	}

	p.list = slices.Clone(tracks)
	p.originalOrder = slices.Clone(tracks)
	p.currentIndex = -1
	p.shuffled = false

	return nil
}

// SetTracks replaces the playlist and selects the track at startIndex.
// The state is left unchanged on error.
func (p *Playlist) SetTracks(tracks []Track, startIndex int) error {
	if len(tracks) == 0 {
		return ErrEmptyTracklist
	}
	if startIndex < 0 || startIndex >= len(tracks) {
		return ErrIndexOutOfRange
	}

	p.list = slices.Clone(tracks)
	p.originalOrder = slices.Clone(tracks)
	p.currentIndex = startIndex
	p.shuffled = false

	return nil
}

// ToggleShuffle switches between the shuffled and the original order. The
// currently selected track is never displaced: it is pinned to the front on
// shuffle and relocated by id on restore (falling back to index 0 when the
// track is gone from the snapshot).
func (p *Playlist) ToggleShuffle() {
	current, hasCurrent := p.Current()

	if p.shuffled {
		p.list = slices.Clone(p.originalOrder)
		if hasCurrent {
			p.currentIndex = 0
			if index := slices.IndexFunc(p.list, func(t Track) bool { return t.ID == current.ID }); index >= 0 {
				p.currentIndex = index
			}
		}
	} else {
		if hasCurrent {
			rest := make([]Track, 0, len(p.list)-1)
			for index, track := range p.list {
				if index != p.currentIndex {
					rest = append(rest, track)
				}
			}
			rand.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
			p.list = append([]Track{current}, rest...)
			p.currentIndex = 0
		} else {
			p.list = slices.Clone(p.list)
			rand.Shuffle(len(p.list), func(i, j int) { p.list[i], p.list[j] = p.list[j], p.list[i] })
		}
	}

	p.shuffled = !p.shuffled
}

// Advance moves the position one track forward. At the last index it wraps
// to 0 under RepeatAll and stays put otherwise. A target without an audio
// source is refused and the position is left unchanged.
func (p *Playlist) Advance(mode RepeatMode) error {
	if _, ok := p.Current(); !ok {
		return ErrNoCurrentTrack
	}

	next := p.currentIndex + 1
	if p.currentIndex == len(p.list)-1 {
		if mode != RepeatAll {
			return nil
		}
		next = 0
	}

	if !p.list[next].HasAudio() {
		return ErrNoAudioSource
	}

	p.currentIndex = next
	return nil
}

// Retreat moves the position one track back; a no-op at index 0.
func (p *Playlist) Retreat() {
	if p.currentIndex > 0 {
		p.currentIndex--
	}
}

// SpliceNext inserts a track immediately after the current position and
// selects it. Used when a queued track pre-empts normal advancement.
func (p *Playlist) SpliceNext(track Track) {
	at := p.currentIndex + 1
	p.list = slices.Insert(p.list, at, track)
	if p.shuffled {
		p.originalOrder = append(p.originalOrder, track)
	} else {
		p.originalOrder = slices.Insert(p.originalOrder, at, track)
	}
	p.currentIndex = at
}

// Peek returns the track that Advance would select, without moving.
func (p *Playlist) Peek(mode RepeatMode) (Track, bool) {
	if _, ok := p.Current(); !ok {
		return Track{}, false
	}

	if p.currentIndex == len(p.list)-1 {
		if mode != RepeatAll {
			return Track{}, false
		}
		return p.list[0], true
	}

	return p.list[p.currentIndex+1], true
}
