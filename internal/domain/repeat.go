package domain

// RepeatMode is the strict three-state repeat ring.
type RepeatMode string

const (
	RepeatOff RepeatMode = "OFF"
	RepeatAll RepeatMode = "ALL"
	RepeatOne RepeatMode = "ONE"
)

// Cycle advances OFF -> ALL -> ONE -> OFF.
func (m RepeatMode) Cycle() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}
