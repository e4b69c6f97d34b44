package player

import (
	"fmt"

	"github.com/desertthunder/waves/internal/models"
	"github.com/desertthunder/waves/internal/shared"
)

// Queue is the ordered list of tracks currently browsable and playable.
//
// Index is -1 until a track is selected. Queue is not safe for concurrent use; the [Engine] guards it.
type Queue struct {
	tracks []models.Track
	index  int
}

// NewQueue creates a queue holding a copy of tracks.
func NewQueue(tracks []models.Track) *Queue {
	q := &Queue{}
	q.Set(tracks)
	return q
}

// Set replaces the contents wholesale and clears the selection.
func (q *Queue) Set(tracks []models.Track) {
	q.tracks = append([]models.Track(nil), tracks...)
	q.index = -1
}

// Tracks returns a copy of the contents.
func (q *Queue) Tracks() []models.Track {
	return append([]models.Track(nil), q.tracks...)
}

func (q *Queue) Len() int   { return len(q.tracks) }
func (q *Queue) Index() int { return q.index }

// At returns the track at i.
func (q *Queue) At(i int) (models.Track, error) {
	if len(q.tracks) == 0 {
		return models.Track{}, shared.ErrEmptyQueue
	}
	if i < 0 || i >= len(q.tracks) {
		return models.Track{}, fmt.Errorf("%w: %d not in [0, %d)", shared.ErrIndexOutRange, i, len(q.tracks))
	}
	return q.tracks[i], nil
}

// Select makes i the current index.
func (q *Queue) Select(i int) error {
	if _, err := q.At(i); err != nil {
		return err
	}
	q.index = i
	return nil
}

// Current returns the selected track.
func (q *Queue) Current() (models.Track, bool) {
	if q.index < 0 || q.index >= len(q.tracks) {
		return models.Track{}, false
	}
	return q.tracks[q.index], true
}

// Next returns (index + 1) mod N. With no selection it is 0. False on an empty queue.
func (q *Queue) Next() (int, bool) {
	n := len(q.tracks)
	if n == 0 {
		return 0, false
	}
	if q.index < 0 {
		return 0, true
	}
	return (q.index + 1) % n, true
}

// Previous returns (index - 1) mod N. With no selection it is N-1. False on an empty queue.
func (q *Queue) Previous() (int, bool) {
	n := len(q.tracks)
	if n == 0 {
		return 0, false
	}
	if q.index < 0 {
		return n - 1, true
	}
	return (q.index - 1 + n) % n, true
}
