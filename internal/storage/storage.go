// Package storage persists per-guild state (settings, command history, play
// statistics) in a JSON key/value datastore, one record per guild.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/keshon/datastore"
)

const commandHistoryLimit = 20

// Storage wraps the datastore with typed per-guild records.
type Storage struct {
	ds *datastore.DataStore
}

// CommandHistoryRecord is one dispatched command, kept for the audit trail.
type CommandHistoryRecord struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Datetime  time.Time `json:"datetime"`
}

// TrackStat accumulates play counts for one track within a guild.
type TrackStat struct {
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	PlayCount    int       `json:"play_count"`
	LastPlayedAt time.Time `json:"last_played_at"`
}

// Record is the full persisted state for one guild.
type Record struct {
	Settings            *GuildSettings         `json:"settings,omitempty"`
	CommandsHistoryList []CommandHistoryRecord `json:"cmd_history"`
	TrackStats          map[string]TrackStat   `json:"track_stats"`
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// getOrCreateGuildRecord returns the guild's record, creating an empty one
// on first access.
func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	data, exists := s.ds.Get(guildID)
	if !exists {
		newRecord := &Record{
			CommandsHistoryList: []CommandHistoryRecord{},
			TrackStats:          map[string]TrackStat{},
		}
		s.ds.Add(guildID, newRecord)
		return newRecord, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling data: %w", err)
	}

	var record Record
	if err := json.Unmarshal(jsonData, &record); err != nil {
		return nil, fmt.Errorf("error unmarshalling to *Record: %w", err)
	}

	if record.TrackStats == nil {
		record.TrackStats = map[string]TrackStat{}
	}
	if len(record.CommandsHistoryList) > commandHistoryLimit {
		record.CommandsHistoryList = record.CommandsHistoryList[len(record.CommandsHistoryList)-commandHistoryLimit:]
	}

	return &record, nil
}

// AppendCommandHistory appends a dispatched command to the guild's history,
// trimming to the retention limit.
func (s *Storage) AppendCommandHistory(guildID string, rec CommandHistoryRecord) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	record.CommandsHistoryList = append(record.CommandsHistoryList, rec)
	if len(record.CommandsHistoryList) > commandHistoryLimit {
		record.CommandsHistoryList = record.CommandsHistoryList[len(record.CommandsHistoryList)-commandHistoryLimit:]
	}
	s.ds.Add(guildID, record)
	return nil
}

// FetchCommandHistory returns the guild's retained command history.
func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistoryList, nil
}
