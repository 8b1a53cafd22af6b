// Package queue implements the per-session track queue: ordered, mutable,
// safe for concurrent use. Presentation-only filtering and sorting live in
// view.go and never touch playback order.
package queue

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"tunekeeper/internal/audio"
)

// Entry is one queued track plus its enqueue-time attribution.
type Entry struct {
	ID            string
	Track         audio.TrackInfo
	RequesterID   string
	RequesterName string
	EnqueuedAt    time.Time
}

// NewEntry stamps a resolved track with identity and requester attribution.
func NewEntry(track audio.TrackInfo, requesterID, requesterName string) Entry {
	return Entry{
		ID:            uuid.NewString(),
		Track:         track,
		RequesterID:   requesterID,
		RequesterName: requesterName,
		EnqueuedAt:    time.Now(),
	}
}

// Queue is an ordered sequence of entries. Insertion order is the default
// presentation order. All methods are safe for concurrent callers.
type Queue struct {
	mu      sync.Mutex
	entries []Entry
}

func New() *Queue {
	return &Queue{}
}

// Add appends an entry and returns the new length. The queue itself never
// enforces a size cap; max_queue_size is checked by the enqueueing handler.
func (q *Queue) Add(e Entry) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, e)
	return len(q.entries)
}

// AddAll appends entries in order and returns the new length.
func (q *Queue) AddAll(es []Entry) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, es...)
	return len(q.entries)
}

// Remove deletes and returns the entry at the zero-based index. Callers
// validate user-facing positions first; ok is false on a stale index.
func (q *Queue) Remove(i int) (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if i < 0 || i >= len(q.entries) {
		return Entry{}, false
	}
	e := q.entries[i]
	q.entries = append(q.entries[:i], q.entries[i+1:]...)
	return e, true
}

// Move removes the entry at from and reinserts it at to in the shortened
// sequence (remove then insert, not swap). Returns the moved entry.
func (q *Queue) Move(from, to int) (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.entries)
	if from < 0 || from >= n || to < 0 || to >= n {
		return Entry{}, false
	}
	e := q.entries[from]
	rest := append(q.entries[:from], q.entries[from+1:]...)
	rest = append(rest, Entry{})
	copy(rest[to+1:], rest[to:])
	rest[to] = e
	q.entries = rest
	return e, true
}

// Clear empties the queue and returns the previous length.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.entries)
	q.entries = nil
	return n
}

// Next pops the front entry.
func (q *Queue) Next() (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return Entry{}, false
	}
	e := q.entries[0]
	q.entries = q.entries[1:]
	return e, true
}

// Peek returns the front entry without removing it.
func (q *Queue) Peek() (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return Entry{}, false
	}
	return q.entries[0], true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Entries returns a copy of the current order.
func (q *Queue) Entries() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Entry, len(q.entries))
	copy(out, q.entries)
	return out
}

// Duration sums the durations of all queued tracks. Live streams count as 0.
func (q *Queue) Duration() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()
	var total time.Duration
	for _, e := range q.entries {
		total += e.Track.Duration
	}
	return total
}

// Shuffle applies a uniform Fisher-Yates permutation.
func (q *Queue) Shuffle() {
	q.mu.Lock()
	defer q.mu.Unlock()
	rand.Shuffle(len(q.entries), func(i, j int) {
		q.entries[i], q.entries[j] = q.entries[j], q.entries[i]
	})
}

// SmartShuffle shuffles while keeping the first k pre-shuffle entries out of
// the first k post-shuffle positions, as far as the queue length allows. With
// k or fewer entries it degrades to a plain shuffle.
func (q *Queue) SmartShuffle(k int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.entries)
	if k <= 0 || n <= k {
		rand.Shuffle(n, func(i, j int) {
			q.entries[i], q.entries[j] = q.entries[j], q.entries[i]
		})
		return
	}

	recent := make([]Entry, k)
	copy(recent, q.entries[:k])
	rest := make([]Entry, n-k)
	copy(rest, q.entries[k:])

	rand.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	rand.Shuffle(len(recent), func(i, j int) { recent[i], recent[j] = recent[j], recent[i] })

	// Fill the front with as many non-recent entries as exist, then mix the
	// remainder with the recent block for the tail.
	front := k
	if len(rest) < front {
		front = len(rest)
	}
	result := make([]Entry, 0, n)
	result = append(result, rest[:front]...)

	tail := append(rest[front:], recent...)
	rand.Shuffle(len(tail), func(i, j int) { tail[i], tail[j] = tail[j], tail[i] })
	q.entries = append(result, tail...)
}
