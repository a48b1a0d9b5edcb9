package audio

// State is the explicit lifecycle of an output channel. Transitions are
// driven by commands (Load, Play, Pause, Seek) and by the decode pipeline
// (metadata ready, playback ended, decode/network error).
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StatePaused
	StateEnded
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// ErrorCode classifies playback engine failures.
type ErrorCode int

const (
	ErrCodeAborted ErrorCode = iota + 1
	ErrCodeNetwork
	ErrCodeDecode
	ErrCodeUnsupported
)

// Message returns the human-readable classification surfaced to consumers.
func (c ErrorCode) Message() string {
	switch c {
	case ErrCodeAborted:
		return "playback aborted"
	case ErrCodeNetwork:
		return "network error while loading track"
	case ErrCodeDecode:
		return "error decoding track"
	case ErrCodeUnsupported:
		return "track format not supported"
	default:
		return "unknown error playing track"
	}
}

type EventType int

const (
	EventMetadataLoaded EventType = iota + 1
	EventTimeUpdate
	EventEnded
	EventError
)

// Event is emitted by an Output as the decode pipeline progresses.
type Event struct {
	Type     EventType
	Position float64
	Duration float64
	Code     ErrorCode
}

// Output is a single audio channel. The player service owns the primary
// channel exclusively; the crossfader owns a secondary one.
type Output interface {
	// Load replaces the channel's source. Asynchronous: completion is
	// signalled by EventMetadataLoaded or EventError.
	Load(url string)
	// Play starts or resumes playback. It returns an error when the engine
	// refuses to play (no source, decode failure).
	Play() error
	Pause()
	// Seek sets the position in seconds. A no-op while no source is loaded.
	Seek(position float64)
	SetVolume(volume float64)
	SetMuted(muted bool)
	Source() string
	Position() float64
	Duration() float64
	State() State
	Events() <-chan Event
	Close() error
}
