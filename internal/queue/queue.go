// Package queue implements the playback ordering engine: a track list, a
// cursor, a shuffle flag and a repeat mode. It owns no I/O; the player session
// drives it and loads whatever track the cursor lands on.
package queue

import (
	"math/rand"
	"sync"

	"github.com/Batman1190/Spirify/internal/models"
)

// RepeatMode controls what Advance does at the end of the queue and whether
// the cursor moves at all.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	default:
		return "off"
	}
}

// Queue holds the active track ordering. All methods are safe for concurrent
// use.
type Queue struct {
	mu      sync.Mutex
	tracks  []models.Track
	index   int
	shuffle bool
	repeat  RepeatMode
	rng     *rand.Rand
}

type Option func(*Queue)

// WithRand injects the random source used for shuffling.
func WithRand(r *rand.Rand) Option {
	return func(q *Queue) { q.rng = r }
}

func New(opts ...Option) *Queue {
	q := &Queue{}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *Queue) random(n int) int {
	if q.rng != nil {
		return q.rng.Intn(n)
	}
	return rand.Intn(n)
}

// SetQueue replaces the queue wholesale and positions the cursor at start.
// When shuffle is active the new queue is permuted before activation, so the
// track previously at start may end up elsewhere; start then addresses the
// permuted order.
func (q *Queue) SetQueue(tracks []models.Track, start int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.tracks = make([]models.Track, len(tracks))
	copy(q.tracks, tracks)

	if q.shuffle {
		for i := len(q.tracks) - 1; i > 0; i-- {
			j := q.random(i + 1)
			q.tracks[i], q.tracks[j] = q.tracks[j], q.tracks[i]
		}
	}

	if start < 0 || start >= len(q.tracks) {
		start = 0
	}
	q.index = start
}

// Current returns the track under the cursor. ok is false when the queue is
// empty.
func (q *Queue) Current() (models.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current()
}

func (q *Queue) current() (models.Track, bool) {
	if len(q.tracks) == 0 {
		return models.Track{}, false
	}
	return q.tracks[q.index], true
}

// Advance moves the cursor to the next track. Repeat-one stays put, shuffle
// picks a uniform random index which may be the current one, and sequential
// play wraps to the start regardless of the repeat mode.
func (q *Queue) Advance() (models.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tracks) == 0 {
		return models.Track{}, false
	}

	switch {
	case q.repeat == RepeatOne:
	case q.shuffle:
		q.index = q.random(len(q.tracks))
	default:
		q.index = (q.index + 1) % len(q.tracks)
	}
	return q.current()
}

// Previous moves the cursor back one track, wrapping from the first track to
// the last.
func (q *Queue) Previous() (models.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tracks) == 0 {
		return models.Track{}, false
	}
	q.index = (q.index - 1 + len(q.tracks)) % len(q.tracks)
	return q.current()
}

// Jump moves the cursor to the given index.
func (q *Queue) Jump(index int) (models.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if index < 0 || index >= len(q.tracks) {
		return models.Track{}, false
	}
	q.index = index
	return q.current()
}

// ToggleShuffle flips the shuffle flag. The active queue keeps its current
// order; the flag only changes how future SetQueue and Advance calls behave.
func (q *Queue) ToggleShuffle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.shuffle = !q.shuffle
	return q.shuffle
}

func (q *Queue) Shuffle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.shuffle
}

func (q *Queue) SetRepeat(mode RepeatMode) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.repeat = mode
}

// CycleRepeat steps off -> all -> one -> off and returns the new mode.
func (q *Queue) CycleRepeat() RepeatMode {
	q.mu.Lock()
	defer q.mu.Unlock()
	switch q.repeat {
	case RepeatOff:
		q.repeat = RepeatAll
	case RepeatAll:
		q.repeat = RepeatOne
	default:
		q.repeat = RepeatOff
	}
	return q.repeat
}

func (q *Queue) Repeat() RepeatMode {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.repeat
}

// Tracks returns a copy of the active ordering.
func (q *Queue) Tracks() []models.Track {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]models.Track, len(q.tracks))
	copy(out, q.tracks)
	return out
}

// Index returns the cursor position.
func (q *Queue) Index() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.index
}

// Len returns the number of queued tracks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tracks)
}
