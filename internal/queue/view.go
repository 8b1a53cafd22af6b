package queue

import (
	"sort"
	"time"
)

// Filter selects a subset of entries for display.
type Filter string

const (
	FilterAll   Filter = "all"
	FilterUser  Filter = "user"
	FilterShort Filter = "short"
	FilterLong  Filter = "long"
	FilterLive  Filter = "live"
)

// SortKey orders entries for display.
type SortKey string

const (
	SortAdded        SortKey = "added"
	SortDurationAsc  SortKey = "duration_asc"
	SortDurationDesc SortKey = "duration_desc"
	SortArtist       SortKey = "artist_asc"
	SortTitle        SortKey = "title_asc"
)

const (
	shortTrackMax = 3 * time.Minute
	longTrackMin  = 5 * time.Minute
)

// Apply returns a display projection of entries: filtered, then sorted.
// The input slice is not modified and playback order is unaffected.
func Apply(entries []Entry, f Filter, sortKey SortKey, userID string) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		switch f {
		case FilterUser:
			if e.RequesterID != userID {
				continue
			}
		case FilterShort:
			if e.Track.IsLive || e.Track.Duration >= shortTrackMax {
				continue
			}
		case FilterLong:
			if e.Track.IsLive || e.Track.Duration <= longTrackMin {
				continue
			}
		case FilterLive:
			if !e.Track.IsLive {
				continue
			}
		}
		out = append(out, e)
	}

	switch sortKey {
	case SortDurationAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Track.Duration < out[j].Track.Duration })
	case SortDurationDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Track.Duration > out[j].Track.Duration })
	case SortArtist:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Track.Author < out[j].Track.Author })
	case SortTitle:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Track.Title < out[j].Track.Title })
	}
	return out
}
