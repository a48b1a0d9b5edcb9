//go:build !((linux && cgo) || windows || darwin)

package audio

import "errors"

// AudioAvailable indicates whether real audio playback is supported in this
// build. Sound needs cgo for the native audio libraries on linux.
const AudioAvailable = false

var ErrAudioUnavailable = errors.New("audio device unavailable in this build")

// NewSpeaker always fails in builds without audio support; callers fall back
// to a silent Fake output.
func NewSpeaker() (Output, error) {
	return nil, ErrAudioUnavailable
}
