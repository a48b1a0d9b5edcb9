package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueAddThenRemove(t *testing.T) {
	q := NewQueue()
	q.Add(Track{ID: "q1"})

	require.NoError(t, q.RemoveAt(0))
	assert.Equal(t, 0, q.Length())
}

func TestQueueRemoveShiftsDown(t *testing.T) {
	q := NewQueue()
	q.Add(Track{ID: "q1"})
	q.Add(Track{ID: "q2"})
	q.Add(Track{ID: "q3"})

	require.NoError(t, q.RemoveAt(1))
	assert.Equal(t, []string{"q1", "q3"}, trackIDs(q.Tracks()))

	err := q.RemoveAt(5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestQueuePopIsFIFO(t *testing.T) {
	q := NewQueue()
	q.Add(Track{ID: "q1"})
	q.Add(Track{ID: "q2"})

	head, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, "q1", head.ID)

	head, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, "q2", head.ID)

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestQueueClear(t *testing.T) {
	q := NewQueue()
	q.Add(Track{ID: "q1"})
	q.Add(Track{ID: "q2"})

	q.Clear()
	assert.Equal(t, 0, q.Length())
}
