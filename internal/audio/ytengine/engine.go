// Package ytengine is the YouTube-backed audio engine: it resolves queries
// through the YouTube metadata API with a search-page fallback, and streams
// audio into Discord voice via yt-dlp and ffmpeg.
package ytengine

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog"

	"tunekeeper/internal/audio"
)

const (
	channels   = 2
	sampleRate = 48000
	frameSize  = 960 // 20ms at 48kHz
)

// Engine implements audio.Engine on top of a Discord gateway session.
type Engine struct {
	session *discordgo.Session
	yt      *youtube.Client
	search  *searchResolver
	log     zerolog.Logger
}

func New(session *discordgo.Session, logger zerolog.Logger) *Engine {
	return &Engine{
		session: session,
		yt:      &youtube.Client{},
		search:  newSearchResolver(),
		log:     logger.With().Str("component", "ytengine").Logger(),
	}
}

// CreateConnection joins the voice channel and returns a playback handle
// bound to it.
func (e *Engine) CreateConnection(_ context.Context, opts audio.ConnectionOptions) (audio.Player, error) {
	vc, err := e.session.ChannelVoiceJoin(opts.GuildID, opts.VoiceChannelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", audio.ErrConnectFailed, err)
	}
	return newPlayer(opts.GuildID, vc, opts.Volume, e.log), nil
}
