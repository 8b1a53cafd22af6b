// Package audio defines the contract between the bot core and the audio
// engine. The core never talks to voice, codecs or track sources directly;
// everything goes through Engine and Player.
package audio

import (
	"context"
	"errors"
	"time"
)

// LoadType classifies what a resolve call produced.
type LoadType string

const (
	LoadTypeTrack    LoadType = "track"
	LoadTypeSearch   LoadType = "search"
	LoadTypePlaylist LoadType = "playlist"
	LoadTypeEmpty    LoadType = "empty"
	LoadTypeError    LoadType = "error"
)

// TrackInfo is immutable track metadata supplied by the resolver.
type TrackInfo struct {
	Title     string
	Author    string
	URI       string
	Duration  time.Duration
	IsLive    bool
	Thumbnail string
	Source    string
}

// PlaylistInfo describes a resolved playlist as a whole.
type PlaylistInfo struct {
	Name      string
	Thumbnail string
}

// Query is a resolve request.
type Query struct {
	Query  string
	Source string
}

// ResolveResult is what the engine returns for a query.
type ResolveResult struct {
	LoadType LoadType
	Tracks   []TrackInfo
	Playlist *PlaylistInfo
}

// EventType enumerates player lifecycle events.
type EventType int

const (
	EventTrackStart EventType = iota
	EventTrackEnd
	EventTrackError
)

// Track-end reasons reported with EventTrackEnd.
const (
	ReasonFinished = "finished"
	ReasonStopped  = "stopped"
	ReasonReplaced = "replaced"
)

// Event is emitted asynchronously by a Player.
type Event struct {
	Type   EventType
	Track  TrackInfo
	Reason string
	Err    error
}

// ConnectionOptions configure a new voice connection.
type ConnectionOptions struct {
	GuildID        string
	VoiceChannelID string
	Volume         int
}

var (
	ErrConnectFailed = errors.New("failed to join voice channel")
	ErrNotConnected  = errors.New("player is not connected")
)

// Player is a single-guild playback handle. Play is non-blocking; progress
// is reported through Events. Implementations must close the events channel
// from Destroy and never afterwards emit.
type Player interface {
	Play(track TrackInfo) error
	Pause() error
	Resume() error
	Stop() error
	Seek(pos time.Duration) error
	SetVolume(v int) error
	Position() time.Duration
	Events() <-chan Event
	Destroy() error
}

// Engine resolves queries into tracks and opens per-guild voice connections.
// Search returns up to limit distinct results for a free-text query, unlike
// Resolve which commits to the single best match.
type Engine interface {
	Resolve(ctx context.Context, q Query) (*ResolveResult, error)
	Search(ctx context.Context, query string, limit int) ([]TrackInfo, error)
	CreateConnection(ctx context.Context, opts ConnectionOptions) (Player, error)
}
