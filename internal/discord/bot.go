// Package discord is the transport layer: it owns the gateway session,
// registers the slash command definitions and decodes interactions into
// dispatcher invocations.
package discord

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"tunekeeper/internal/audio"
	"tunekeeper/internal/audio/ytengine"
	"tunekeeper/internal/command"
	"tunekeeper/internal/command/admin"
	"tunekeeper/internal/command/dj"
	"tunekeeper/internal/command/general"
	"tunekeeper/internal/command/music"
	"tunekeeper/internal/config"
	"tunekeeper/internal/gate"
	"tunekeeper/internal/notify"
	"tunekeeper/internal/session"
	"tunekeeper/internal/storage"
	"tunekeeper/internal/version"
)

// Bot wires the gateway session to the command dispatcher and the playback
// sessions.
type Bot struct {
	dg         *discordgo.Session
	cfg        *config.Config
	store      *storage.Storage
	engine     audio.Engine
	sessions   *session.Registry
	registry   *command.Registry
	dispatcher *command.Dispatcher
	selections *selectionStore
	log        zerolog.Logger
	startedAt  time.Time

	graceMu     sync.Mutex
	graceTimers map[string]*time.Timer
}

// StartBot runs the bot until the context is cancelled.
func StartBot(ctx context.Context, cfg *config.Config, store *storage.Storage, logger zerolog.Logger) error {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	b := &Bot{
		dg:          dg,
		cfg:         cfg,
		store:       store,
		log:         logger.With().Str("component", "discord").Logger(),
		startedAt:   time.Now(),
		graceTimers: make(map[string]*time.Timer),
	}

	b.engine = ytengine.New(dg, logger)
	b.sessions = session.NewRegistry(b.engine, logger)

	b.registry = command.NewRegistry()
	b.registry.Register(music.All()...)
	b.registry.Register(dj.All()...)
	b.registry.Register(admin.All(b.refreshAllGuilds)...)
	b.registry.Register(general.All(b.latency, b.startedAt, b.registry)...)

	b.dispatcher = command.NewDispatcher(b.registry, gate.NewCooldowns(), cfg.OwnerID, store, logger)
	b.selections = newSelectionStore(b.expireSelection)

	bridge := notify.NewBridge(b.sessions.Events(), &channelSender{dg: dg}, store, logger)
	go bridge.Run(ctx)

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onInteractionCreate)
	dg.AddHandler(b.onVoiceStateUpdate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open gateway session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, destroying sessions")
	for _, s := range b.sessions.All() {
		b.sessions.Destroy(s.GuildID())
	}
	return nil
}

func (b *Bot) latency() time.Duration {
	return b.dg.HeartbeatLatency()
}

func (b *Bot) isGuildBlacklisted(guildID string) bool {
	return slices.Contains(b.cfg.DiscordGuildBlacklist, guildID)
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	for _, g := range r.Guilds {
		if b.isGuildBlacklisted(g.ID) {
			b.log.Info().Str("guild_id", g.ID).Msg("leaving blacklisted guild")
			if err := s.GuildLeave(g.ID); err != nil {
				b.log.Error().Err(err).Str("guild_id", g.ID).Msg("failed to leave guild")
			}
			continue
		}

		if b.cfg.InitSlashCommands {
			if err := b.registerCommands(g.ID); err != nil {
				b.log.Error().Err(err).Str("guild_id", g.ID).Msg("failed to register commands")
			}
		}
	}

	b.log.Info().
		Str("username", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Msgf("%s %s is running", version.AppName, version.AppVersion)
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if b.isGuildBlacklisted(g.Guild.ID) {
		b.log.Info().Str("guild_id", g.Guild.ID).Msg("leaving blacklisted guild")
		if err := s.GuildLeave(g.Guild.ID); err != nil {
			b.log.Error().Err(err).Str("guild_id", g.Guild.ID).Msg("failed to leave guild")
		}
		return
	}

	if err := b.registerCommands(g.Guild.ID); err != nil {
		b.log.Error().Err(err).Str("guild_id", g.Guild.ID).Msg("failed to register commands for new guild")
	}
}

// voiceChannelOf reports the voice channel the user currently occupies, or
// empty when they are not in voice.
func (b *Bot) voiceChannelOf(guildID, userID string) (string, error) {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return "", err
	}
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID, nil
		}
	}
	return "", nil
}
