package storage

import (
	"sort"
	"time"
)

// RecordTrackPlay bumps the play counter for a track in a guild. Called from
// the notification path on track start.
func (s *Storage) RecordTrackPlay(guildID, title, author string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	key := author + "|" + title
	stat := record.TrackStats[key]
	stat.Title = title
	stat.Author = author
	stat.PlayCount++
	stat.LastPlayedAt = time.Now()
	record.TrackStats[key] = stat

	s.ds.Add(guildID, record)
	return nil
}

// TopTracks returns up to n tracks by play count, most played first.
func (s *Storage) TopTracks(guildID string, n int) ([]TrackStat, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}

	stats := make([]TrackStat, 0, len(record.TrackStats))
	for _, st := range record.TrackStats {
		stats = append(stats, st)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].PlayCount != stats[j].PlayCount {
			return stats[i].PlayCount > stats[j].PlayCount
		}
		return stats[i].LastPlayedAt.After(stats[j].LastPlayedAt)
	})

	if n > 0 && len(stats) > n {
		stats = stats[:n]
	}
	return stats, nil
}
