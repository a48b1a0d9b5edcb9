package domain

import "slices"

// Queue is the play queue: tracks waiting to be spliced into the playlist
// right after the current position. FIFO, consumed on play.
type Queue struct {
	list []Track
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Tracks() []Track {
	return q.list
}

func (q *Queue) Length() int {
	return len(q.list)
}

func (q *Queue) Add(track Track) {
	q.list = append(q.list, track)
}

// RemoveAt removes exactly the entry at the given position, shifting
// subsequent entries down by one.
func (q *Queue) RemoveAt(index int) error {
	if index < 0 || index >= len(q.list) {
		return ErrIndexOutOfRange
	}

	q.list = slices.Delete(q.list, index, index+1)
	return nil
}

func (q *Queue) Clear() {
	q.list = nil
}

// Pop dequeues the head track.
func (q *Queue) Pop() (Track, bool) {
	if len(q.list) == 0 {
		return Track{}, false
	}

	head := q.list[0]
	q.list = slices.Delete(q.list, 0, 1)
	return head, true
}
