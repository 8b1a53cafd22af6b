package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tunekeeper/internal/audio"
)

func entry(title string, requesterID string, d time.Duration) Entry {
	return NewEntry(audio.TrackInfo{
		Title:    title,
		Author:   "artist-" + title,
		URI:      "https://example.com/" + title,
		Duration: d,
	}, requesterID, "user-"+requesterID)
}

func titles(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Track.Title
	}
	return out
}

func TestAddMoveRemoveRoundTrip(t *testing.T) {
	q := New()

	assert.Equal(t, 1, q.Add(entry("t1", "u1", time.Minute)))
	assert.Equal(t, 2, q.Add(entry("t2", "u1", time.Minute)))

	moved, ok := q.Move(0, 1)
	require.True(t, ok)
	assert.Equal(t, "t1", moved.Track.Title)
	assert.Equal(t, []string{"t2", "t1"}, titles(q.Entries()))

	removed, ok := q.Remove(0)
	require.True(t, ok)
	assert.Equal(t, "t2", removed.Track.Title)
	assert.Equal(t, []string{"t1"}, titles(q.Entries()))
}

func TestMoveIsRemoveThenInsert(t *testing.T) {
	q := New()
	for _, name := range []string{"a", "b", "c", "d"} {
		q.Add(entry(name, "u1", time.Minute))
	}

	_, ok := q.Move(0, 2)
	require.True(t, ok)
	assert.Equal(t, []string{"b", "c", "a", "d"}, titles(q.Entries()))

	_, ok = q.Move(3, 0)
	require.True(t, ok)
	assert.Equal(t, []string{"d", "b", "c", "a"}, titles(q.Entries()))
}

func TestRemoveOutOfRange(t *testing.T) {
	q := New()
	q.Add(entry("only", "u1", time.Minute))

	_, ok := q.Remove(1)
	assert.False(t, ok)
	_, ok = q.Remove(-1)
	assert.False(t, ok)
	assert.Equal(t, 1, q.Len())
}

func TestClearReturnsPreviousLength(t *testing.T) {
	q := New()
	for i := 0; i < 3; i++ {
		q.Add(entry("t", "u1", time.Minute))
	}
	assert.Equal(t, 3, q.Clear())
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.Clear())
}

func TestNextPopsInOrder(t *testing.T) {
	q := New()
	q.Add(entry("first", "u1", time.Minute))
	q.Add(entry("second", "u1", time.Minute))

	e, ok := q.Next()
	require.True(t, ok)
	assert.Equal(t, "first", e.Track.Title)
	assert.Equal(t, 1, q.Len())

	_, ok = q.Peek()
	require.True(t, ok)
	assert.Equal(t, 1, q.Len())
}

func TestShuffleKeepsAllEntries(t *testing.T) {
	q := New()
	want := map[string]bool{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		q.Add(entry(name, "u1", time.Minute))
		want[name] = true
	}

	q.Shuffle()
	got := q.Entries()
	require.Len(t, got, len(want))
	for _, e := range got {
		assert.True(t, want[e.Track.Title])
	}
}

func TestSmartShuffleExcludesRecentFromFront(t *testing.T) {
	const k = 5
	q := New()
	recent := map[string]bool{}
	for i := 0; i < 15; i++ {
		name := string(rune('a' + i))
		q.Add(entry(name, "u1", time.Minute))
		if i < k {
			recent[name] = true
		}
	}

	q.SmartShuffle(k)
	got := q.Entries()
	require.Len(t, got, 15)
	for i := 0; i < k; i++ {
		assert.Falsef(t, recent[got[i].Track.Title],
			"recent entry %q landed in position %d", got[i].Track.Title, i)
	}
}

func TestSmartShuffleDegradesToFullShuffle(t *testing.T) {
	q := New()
	want := map[string]bool{}
	for _, name := range []string{"a", "b", "c"} {
		q.Add(entry(name, "u1", time.Minute))
		want[name] = true
	}

	q.SmartShuffle(5)
	got := q.Entries()
	require.Len(t, got, 3)
	for _, e := range got {
		assert.True(t, want[e.Track.Title])
	}
}

func TestViewFilters(t *testing.T) {
	entries := []Entry{
		entry("short", "u1", 2*time.Minute),
		entry("long", "u2", 6*time.Minute),
		entry("mid", "u1", 4*time.Minute),
	}
	live := entry("radio", "u2", 0)
	live.Track.IsLive = true
	entries = append(entries, live)

	assert.Equal(t, []string{"short", "mid"}, titles(Apply(entries, FilterUser, SortAdded, "u1")))
	assert.Equal(t, []string{"short"}, titles(Apply(entries, FilterShort, SortAdded, "")))
	assert.Equal(t, []string{"long"}, titles(Apply(entries, FilterLong, SortAdded, "")))
	assert.Equal(t, []string{"radio"}, titles(Apply(entries, FilterLive, SortAdded, "")))
	assert.Len(t, Apply(entries, FilterAll, SortAdded, ""), 4)
}

func TestViewSortsDoNotMutateInput(t *testing.T) {
	entries := []Entry{
		entry("b", "u1", 3*time.Minute),
		entry("a", "u1", time.Minute),
		entry("c", "u1", 2*time.Minute),
	}

	sorted := Apply(entries, FilterAll, SortDurationAsc, "")
	assert.Equal(t, []string{"a", "c", "b"}, titles(sorted))
	assert.Equal(t, []string{"b", "a", "c"}, titles(entries))

	assert.Equal(t, []string{"a", "b", "c"}, titles(Apply(entries, FilterAll, SortTitle, "")))
	assert.Equal(t, []string{"b", "c", "a"}, titles(Apply(entries, FilterAll, SortDurationDesc, "")))
}
