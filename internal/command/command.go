// Package command defines the command surface and the dispatcher that
// routes decoded interactions through the cooldown and owner gates into
// handlers, containing every failure mode at its boundary.
package command

import (
	"context"
	"time"

	"tunekeeper/internal/audio"
	"tunekeeper/internal/gate"
	"tunekeeper/internal/notify"
	"tunekeeper/internal/session"
	"tunekeeper/internal/storage"
)

// Command is one slash command: its declaration plus its handler.
type Command interface {
	Name() string
	Description() string
	Group() string
	Options() []Option
	Cooldown() time.Duration
	OwnerOnly() bool
	Run(ctx *Context) error
}

// VoiceLookup resolves the voice channel a user currently occupies.
// An empty channel ID means the user is not in voice.
type VoiceLookup func(guildID, userID string) (channelID string, err error)

// Responder delivers the single user-visible response of an invocation.
// Implementations collapse reply-after-defer into an edit so exactly one
// message reaches the user. ReplyChoice attaches an interactive selection
// to the response; transports without component support fall back to a
// plain reply.
type Responder interface {
	Defer() error
	Reply(p notify.Payload) error
	ReplyChoice(p notify.Payload, sel Selection) error
	ReplyText(text string) error
	ReplyError(text string) error
}

// Context carries everything a handler may touch during one invocation.
// Collaborators are borrowed; handlers must not retain them.
type Context struct {
	Ctx       context.Context
	GuildID   string
	ChannelID string
	Member    gate.Member
	Args      Args
	Sessions  *session.Registry
	Store     *storage.Storage
	Engine    audio.Engine
	Voice     VoiceLookup
	Responder Responder
}

// RequireDJ applies the permission gate using the guild's stored settings.
// Handlers that mutate playback call this first; informational handlers
// never do.
func (c *Context) RequireDJ() error {
	settings, err := c.Store.GuildSettings(c.GuildID)
	if err != nil {
		return &CollaboratorError{Op: "load guild settings", Err: err}
	}
	if !gate.Authorize(c.Member, settings.DJRoleID) {
		return ErrPermissionDenied
	}
	return nil
}

// Settings fetches the guild settings, wrapping storage failures.
func (c *Context) Settings() (storage.GuildSettings, error) {
	settings, err := c.Store.GuildSettings(c.GuildID)
	if err != nil {
		return settings, &CollaboratorError{Op: "load guild settings", Err: err}
	}
	return settings, nil
}

// CurrentSession returns the guild's session or ErrNothingPlaying.
func (c *Context) CurrentSession() (*session.Session, error) {
	s, ok := c.Sessions.Get(c.GuildID)
	if !ok {
		return nil, ErrNothingPlaying
	}
	return s, nil
}
