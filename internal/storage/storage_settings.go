package storage

// GuildSettings are the admin-configurable knobs read by the permission gate
// and the music handlers.
type GuildSettings struct {
	MusicChannelID string `json:"music_channel_id"`
	DJRoleID       string `json:"dj_role_id"`
	AutoPlay       bool   `json:"auto_play"`
	MaxQueueSize   int    `json:"max_queue_size"`
}

// SettingsPatch carries partial updates; nil fields are left untouched.
type SettingsPatch struct {
	MusicChannelID *string
	DJRoleID       *string
	AutoPlay       *bool
	MaxQueueSize   *int
}

// DefaultGuildSettings apply when a guild has no stored record.
func DefaultGuildSettings() GuildSettings {
	return GuildSettings{
		AutoPlay:     true,
		MaxQueueSize: 100,
	}
}

// GuildSettings returns the guild's settings, falling back to defaults when
// none were ever written.
func (s *Storage) GuildSettings(guildID string) (GuildSettings, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return DefaultGuildSettings(), err
	}
	if record.Settings == nil {
		return DefaultGuildSettings(), nil
	}
	return *record.Settings, nil
}

// UpdateGuildSettings merges the patch into the stored settings (upsert).
func (s *Storage) UpdateGuildSettings(guildID string, patch SettingsPatch) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}

	if record.Settings == nil {
		defaults := DefaultGuildSettings()
		record.Settings = &defaults
	}
	if patch.MusicChannelID != nil {
		record.Settings.MusicChannelID = *patch.MusicChannelID
	}
	if patch.DJRoleID != nil {
		record.Settings.DJRoleID = *patch.DJRoleID
	}
	if patch.AutoPlay != nil {
		record.Settings.AutoPlay = *patch.AutoPlay
	}
	if patch.MaxQueueSize != nil {
		record.Settings.MaxQueueSize = *patch.MaxQueueSize
	}

	s.ds.Add(guildID, record)
	return nil
}

// ResetGuildSettings restores the guild to defaults.
func (s *Storage) ResetGuildSettings(guildID string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	defaults := DefaultGuildSettings()
	record.Settings = &defaults
	s.ds.Add(guildID, record)
	return nil
}
