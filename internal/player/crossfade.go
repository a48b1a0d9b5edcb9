package player

import "github.com/jamwave/player/internal/audio"

// DefaultCrossfadeWindow is how long before a track's end the fade starts.
const DefaultCrossfadeWindow = 3.0

// crossfader owns the secondary audio channel used to fade the upcoming
// track in while the current one fades out. The fade is a best-effort linear
// ramp; it makes no sample-accuracy promises.
type crossfader struct {
	next   audio.Output
	window float64
	active bool
}

func newCrossfader(next audio.Output, window float64) *crossfader {
	if window <= 0 {
		window = DefaultCrossfadeWindow
	}

	return &crossfader{next: next, window: window}
}

// prime preloads the upcoming track on the secondary channel, silent until
// the fade begins.
func (c *crossfader) prime(url string) {
	if c.next.Source() == url {
		return
	}

	c.next.SetVolume(0)
	c.next.Load(url)
}

// tick applies the linear ramp for the remaining time. The primary channel
// fades to zero as timeLeft approaches zero; the secondary fades in
// complementarily and starts playing once inside the window.
func (c *crossfader) tick(timeLeft, userVolume float64, primary audio.Output) {
	if timeLeft < 0 {
		timeLeft = 0
	}

	ratio := timeLeft / c.window
	primary.SetVolume(userVolume * ratio)

	if c.next.Source() != "" {
		c.next.SetVolume(userVolume * (1 - ratio))
		if c.next.State() != audio.StatePlaying {
			c.next.Play()
		}
	}

	c.active = true
}

// idle restores the primary channel's volume once outside the fade window.
func (c *crossfader) idle(userVolume float64, primary audio.Output) {
	if !c.active {
		return
	}

	primary.SetVolume(userVolume)
	c.active = false
}

// handoff resets both channels after the primary took over a new track.
func (c *crossfader) handoff(userVolume float64, primary audio.Output) {
	c.next.Pause()
	primary.SetVolume(userVolume)
	c.active = false
}
