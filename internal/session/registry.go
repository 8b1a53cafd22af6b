package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tunekeeper/internal/audio"
	"tunekeeper/internal/queue"
)

const (
	defaultVolume   = 100
	eventBufferSize = 64
)

// Registry is the single source of truth for "the session of guild G". It
// exclusively owns session creation and destruction.
type Registry struct {
	mu       sync.Mutex
	engine   audio.Engine
	sessions map[string]*Session
	creating map[string]*sync.Mutex
	events   chan Event
	log      zerolog.Logger
}

func NewRegistry(engine audio.Engine, logger zerolog.Logger) *Registry {
	return &Registry{
		engine:   engine,
		sessions: make(map[string]*Session),
		creating: make(map[string]*sync.Mutex),
		events:   make(chan Event, eventBufferSize),
		log:      logger,
	}
}

// guildLock returns the creation lock for a guild. Locks are kept for the
// process lifetime; one mutex per guild ever seen is cheap and avoids
// lock-recycling races.
func (r *Registry) guildLock(guildID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.creating[guildID]
	if !ok {
		l = &sync.Mutex{}
		r.creating[guildID] = l
	}
	return l
}

// Events is the aggregated lifecycle stream for all sessions, consumed by
// the notification bridge.
func (r *Registry) Events() <-chan Event { return r.events }

// Get is a pure lookup with no side effects.
func (r *Registry) Get(guildID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[guildID]
	return s, ok
}

// GetOrCreate returns the guild's session, creating and registering one if
// needed. An existing session gets its channel refs updated in place.
// Creation serializes on a per-guild lock, not the registry lock, so a slow
// voice join for one guild never blocks Get/Destroy/All for the others. Two
// concurrent callers for the same guild always observe a single session; a
// failed voice connection surfaces as an error and registers nothing.
func (r *Registry) GetOrCreate(ctx context.Context, guildID, voiceChannelID, textChannelID string) (*Session, error) {
	lock := r.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	if s, ok := r.Get(guildID); ok {
		s.UpdateChannels(voiceChannelID, textChannelID)
		return s, nil
	}

	player, err := r.engine.CreateConnection(ctx, audio.ConnectionOptions{
		GuildID:        guildID,
		VoiceChannelID: voiceChannelID,
		Volume:         defaultVolume,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create voice connection for guild %s: %w", guildID, err)
	}

	s := &Session{
		guildID:        guildID,
		voiceChannelID: voiceChannelID,
		textChannelID:  textChannelID,
		player:         player,
		queue:          queue.New(),
		state:          StateStopped,
		volume:         defaultVolume,
		createdAt:      time.Now(),
		events:         r.events,
	}
	go s.watch()

	r.mu.Lock()
	r.sessions[guildID] = s
	r.mu.Unlock()
	r.log.Info().Str("guild_id", guildID).Str("voice_channel", voiceChannelID).Msg("session created")
	return s, nil
}

// Destroy removes and releases the guild's session. Destroying an absent
// guild is a no-op. It takes the guild's creation lock first, so a destroy
// racing an in-flight creation waits for it rather than missing the session.
func (r *Registry) Destroy(guildID string) {
	lock := r.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	s, ok := r.sessions[guildID]
	delete(r.sessions, guildID)
	r.mu.Unlock()

	if !ok {
		return
	}
	s.close()
	r.log.Info().Str("guild_id", guildID).Msg("session destroyed")
}

// All snapshots the currently registered sessions.
func (r *Registry) All() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}
