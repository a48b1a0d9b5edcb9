package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepeatModeCycle(t *testing.T) {
	mode := RepeatOff

	mode = mode.Cycle()
	assert.Equal(t, RepeatAll, mode)

	mode = mode.Cycle()
	assert.Equal(t, RepeatOne, mode)

	mode = mode.Cycle()
	assert.Equal(t, RepeatOff, mode)
}
