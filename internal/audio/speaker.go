//go:build (linux && cgo) || windows || darwin

package audio

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// AudioAvailable indicates whether real audio playback is supported in this
// build.
const AudioAvailable = true

const (
	speakerSampleRate = beep.SampleRate(44100)
	tickInterval      = 250 * time.Millisecond
)

var speakerInit sync.Once

// speakerOutput plays tracks through the system sound device using beep.
type speakerOutput struct {
	mu         sync.Mutex
	source     string
	state      State
	volume     float64
	muted      bool
	events     chan Event
	httpc      *http.Client
	streamer   beep.StreamSeekCloser
	format     beep.Format
	ctrl       *beep.Ctrl
	vol        *effects.Volume
	generation uint64
	closeCh    chan struct{}
}

// NewSpeaker initializes the shared speaker and returns an output channel
// bound to it.
func NewSpeaker() (Output, error) {
	var initErr error
	speakerInit.Do(func() {
		initErr = speaker.Init(speakerSampleRate, speakerSampleRate.N(time.Second/10))
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to init speaker: %w", initErr)
	}

	o := &speakerOutput{
		state:   StateIdle,
		volume:  1,
		events:  make(chan Event, 64),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		closeCh: make(chan struct{}),
	}
	go o.tickLoop()

	return o, nil
}

// Load fetches and decodes the source asynchronously. A Load that is
// superseded by a newer one discards its result instead of overwriting
// fresher state.
func (o *speakerOutput) Load(url string) {
	o.mu.Lock()
	o.generation++
	generation := o.generation
	o.source = url
	o.state = StateLoading
	o.stopLocked()
	o.mu.Unlock()

	go o.fetchAndDecode(url, generation)
}

func (o *speakerOutput) fetchAndDecode(url string, generation uint64) {
	resp, err := o.httpc.Get(url)
	if err != nil {
		o.fail(generation, ErrCodeNetwork)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		o.fail(generation, ErrCodeNetwork)
		return
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		o.fail(generation, ErrCodeNetwork)
		return
	}

	streamer, format, err := decode(url, data)
	if err != nil {
		if err == errUnsupportedFormat {
			o.fail(generation, ErrCodeUnsupported)
		} else {
			o.fail(generation, ErrCodeDecode)
		}
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if generation != o.generation {
		streamer.Close()
		return
	}

	o.streamer = streamer
	o.format = format
	resampled := beep.Resample(4, format.SampleRate, speakerSampleRate, streamer)
	o.ctrl = &beep.Ctrl{Streamer: resampled, Paused: true}
	o.vol = &effects.Volume{Streamer: o.ctrl, Base: 2}
	o.applyVolumeLocked()

	speaker.Play(beep.Seq(o.vol, beep.Callback(func() {
		o.onEnded(generation)
	})))

	o.state = StatePaused
	o.emit(Event{Type: EventMetadataLoaded, Duration: o.durationLocked()})
}

var errUnsupportedFormat = fmt.Errorf("unsupported audio format")

func decode(url string, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	reader := nopCloser{bytes.NewReader(data)}

	switch strings.ToLower(path.Ext(stripQuery(url))) {
	case ".mp3", "":
		return mp3.Decode(reader)
	case ".ogg", ".oga":
		return vorbis.Decode(reader)
	case ".wav":
		return wav.Decode(reader)
	default:
		return nil, beep.Format{}, errUnsupportedFormat
	}
}

func stripQuery(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}

	return url
}

func (o *speakerOutput) fail(generation uint64, code ErrorCode) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if generation != o.generation {
		return
	}

	o.state = StateErrored
	o.emit(Event{Type: EventError, Code: code})
}

func (o *speakerOutput) onEnded(generation uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if generation != o.generation || o.state != StatePlaying {
		return
	}

	o.state = StateEnded
	o.emit(Event{Type: EventEnded, Position: o.durationLocked(), Duration: o.durationLocked()})
}

func (o *speakerOutput) Play() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ctrl == nil {
		return fmt.Errorf("no source loaded")
	}

	speaker.Lock()
	o.ctrl.Paused = false
	speaker.Unlock()
	o.state = StatePlaying

	return nil
}

func (o *speakerOutput) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ctrl == nil {
		return
	}

	speaker.Lock()
	o.ctrl.Paused = true
	speaker.Unlock()
	if o.state == StatePlaying {
		o.state = StatePaused
	}
}

func (o *speakerOutput) Seek(position float64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.streamer == nil {
		return
	}

	speaker.Lock()
	o.streamer.Seek(o.format.SampleRate.N(secondsToDuration(position)))
	speaker.Unlock()
}

func (o *speakerOutput) SetVolume(volume float64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.volume = volume
	o.applyVolumeLocked()
}

func (o *speakerOutput) SetMuted(muted bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.muted = muted
	o.applyVolumeLocked()
}

// applyVolumeLocked maps the linear [0,1] volume onto beep's exponential
// scale. Mute silences the output without touching the stored volume.
func (o *speakerOutput) applyVolumeLocked() {
	if o.vol == nil {
		return
	}

	speaker.Lock()
	o.vol.Silent = o.muted || o.volume <= 0
	if o.volume > 0 {
		o.vol.Volume = math.Log2(o.volume)
	}
	speaker.Unlock()
}

func (o *speakerOutput) Source() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.source
}

func (o *speakerOutput) Position() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.positionLocked()
}

func (o *speakerOutput) positionLocked() float64 {
	if o.streamer == nil {
		return 0
	}

	speaker.Lock()
	pos := o.streamer.Position()
	speaker.Unlock()

	return o.format.SampleRate.D(pos).Seconds()
}

func (o *speakerOutput) Duration() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.durationLocked()
}

func (o *speakerOutput) durationLocked() float64 {
	if o.streamer == nil {
		return 0
	}

	return o.format.SampleRate.D(o.streamer.Len()).Seconds()
}

func (o *speakerOutput) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *speakerOutput) Events() <-chan Event {
	return o.events
}

func (o *speakerOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	select {
	case <-o.closeCh:
	default:
		close(o.closeCh)
	}
	o.generation++
	o.stopLocked()

	return nil
}

func (o *speakerOutput) stopLocked() {
	if o.ctrl != nil {
		speaker.Lock()
		o.ctrl.Paused = true
		speaker.Unlock()
	}
	if o.streamer != nil {
		o.streamer.Close()
		o.streamer = nil
	}
	o.ctrl = nil
	o.vol = nil
}

func (o *speakerOutput) tickLoop() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-o.closeCh:
			return
		case <-ticker.C:
			o.mu.Lock()
			if o.state == StatePlaying {
				o.emit(Event{
					Type:     EventTimeUpdate,
					Position: o.positionLocked(),
					Duration: o.durationLocked(),
				})
			}
			o.mu.Unlock()
		}
	}
}

func (o *speakerOutput) emit(ev Event) {
	select {
	case o.events <- ev:
	default:
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// nopCloser wraps a bytes.Reader to satisfy the decoders' io.ReadCloser.
type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
