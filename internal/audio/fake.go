package audio

import (
	"errors"
	"sync"
)

// ErrPlayRejected is returned by Fake.Play when a rejection was scheduled,
// mimicking an engine that refuses to start (autoplay policy, dead source).
var ErrPlayRejected = errors.New("play rejected")

const fakeDefaultDuration = 180

// Fake is an Output driven by a manual clock. It is the test double for the
// player core and also serves as the silent output when no sound device is
// available.
type Fake struct {
	mu        sync.Mutex
	source    string
	state     State
	position  float64
	duration  float64
	volume    float64
	muted     bool
	events    chan Event
	durations map[string]float64
	loadFails map[string]ErrorCode
	playErr   error
	playCalls int
}

func NewFake() *Fake {
	return &Fake{
		state:     StateIdle,
		volume:    1,
		events:    make(chan Event, 64),
		durations: make(map[string]float64),
		loadFails: make(map[string]ErrorCode),
	}
}

// SetTrackDuration registers the duration the fake "decodes" for a url.
func (f *Fake) SetTrackDuration(url string, seconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.durations[url] = seconds
}

// FailLoad makes the next Load of url end in the given error state.
func (f *Fake) FailLoad(url string, code ErrorCode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadFails[url] = code
}

// RejectNextPlay makes the next Play call fail.
func (f *Fake) RejectNextPlay() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playErr = ErrPlayRejected
}

// PlayCalls reports how many times Play was invoked.
func (f *Fake) PlayCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playCalls
}

func (f *Fake) Load(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.source = url
	f.position = 0
	f.state = StateLoading

	if code, ok := f.loadFails[url]; ok {
		delete(f.loadFails, url)
		f.state = StateErrored
		f.emit(Event{Type: EventError, Code: code})
		return
	}

	f.duration = fakeDefaultDuration
	if d, ok := f.durations[url]; ok {
		f.duration = d
	}
	f.state = StatePaused
	f.emit(Event{Type: EventMetadataLoaded, Duration: f.duration})
}

func (f *Fake) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.playCalls++
	if f.playErr != nil {
		err := f.playErr
		f.playErr = nil
		return err
	}
	if f.source == "" {
		return ErrPlayRejected
	}

	f.state = StatePlaying
	return nil
}

func (f *Fake) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StatePlaying {
		f.state = StatePaused
	}
}

func (f *Fake) Seek(position float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.source == "" {
		return
	}
	if position < 0 {
		position = 0
	}
	if position > f.duration {
		position = f.duration
	}
	f.position = position
}

func (f *Fake) SetVolume(volume float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = volume
}

func (f *Fake) SetMuted(muted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.muted = muted
}

func (f *Fake) Source() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.source
}

func (f *Fake) Position() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position
}

func (f *Fake) Duration() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration
}

func (f *Fake) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Fake) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

func (f *Fake) Muted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.muted
}

func (f *Fake) Events() <-chan Event {
	return f.events
}

func (f *Fake) Close() error {
	return nil
}

// Advance moves the clock forward while playing, emitting a time update and
// an ended event when the track runs out.
func (f *Fake) Advance(seconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StatePlaying {
		return
	}

	f.position += seconds
	if f.position >= f.duration {
		f.position = f.duration
		f.state = StateEnded
		f.emit(Event{Type: EventTimeUpdate, Position: f.position, Duration: f.duration})
		f.emit(Event{Type: EventEnded, Position: f.position, Duration: f.duration})
		return
	}

	f.emit(Event{Type: EventTimeUpdate, Position: f.position, Duration: f.duration})
}

func (f *Fake) emit(ev Event) {
	select {
	case f.events <- ev:
	default:
	}
}
