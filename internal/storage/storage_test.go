package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGuildSettingsDefaults(t *testing.T) {
	s := newTestStorage(t)

	settings, err := s.GuildSettings("g1")
	require.NoError(t, err)
	assert.True(t, settings.AutoPlay)
	assert.Equal(t, 100, settings.MaxQueueSize)
	assert.Empty(t, settings.DJRoleID)
}

func TestUpdateGuildSettingsMerges(t *testing.T) {
	s := newTestStorage(t)

	dj := "dj-role"
	require.NoError(t, s.UpdateGuildSettings("g1", SettingsPatch{DJRoleID: &dj}))

	size := 42
	require.NoError(t, s.UpdateGuildSettings("g1", SettingsPatch{MaxQueueSize: &size}))

	settings, err := s.GuildSettings("g1")
	require.NoError(t, err)
	assert.Equal(t, "dj-role", settings.DJRoleID, "earlier patch must survive later ones")
	assert.Equal(t, 42, settings.MaxQueueSize)
	assert.True(t, settings.AutoPlay, "untouched field keeps its default")
}

func TestResetGuildSettings(t *testing.T) {
	s := newTestStorage(t)

	dj := "dj-role"
	require.NoError(t, s.UpdateGuildSettings("g1", SettingsPatch{DJRoleID: &dj}))
	require.NoError(t, s.ResetGuildSettings("g1"))

	settings, err := s.GuildSettings("g1")
	require.NoError(t, err)
	assert.Empty(t, settings.DJRoleID)
	assert.Equal(t, 100, settings.MaxQueueSize)
}

func TestCommandHistoryTrimsToLimit(t *testing.T) {
	s := newTestStorage(t)

	for i := 0; i < commandHistoryLimit+5; i++ {
		require.NoError(t, s.AppendCommandHistory("g1", CommandHistoryRecord{
			Command:  "play",
			UserID:   "u1",
			Datetime: time.Now(),
		}))
	}

	history, err := s.FetchCommandHistory("g1")
	require.NoError(t, err)
	assert.Len(t, history, commandHistoryLimit)
}

func TestTrackStatsAccumulate(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.RecordTrackPlay("g1", "Song A", "Artist"))
	require.NoError(t, s.RecordTrackPlay("g1", "Song A", "Artist"))
	require.NoError(t, s.RecordTrackPlay("g1", "Song B", "Artist"))

	top, err := s.TopTracks("g1", 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Song A", top[0].Title)
	assert.Equal(t, 2, top[0].PlayCount)
}
