// Package admin implements server configuration commands plus the
// owner-only maintenance surface.
package admin

import (
	"fmt"
	"time"

	"tunekeeper/internal/command"
	"tunekeeper/internal/gate"
	"tunekeeper/internal/notify"
	"tunekeeper/internal/storage"
)

type meta struct {
	name        string
	description string
	ownerOnly   bool
	options     []command.Option
}

func (m meta) Name() string              { return m.name }
func (m meta) Description() string       { return m.description }
func (m meta) Group() string             { return "admin" }
func (m meta) Cooldown() time.Duration   { return 0 }
func (m meta) OwnerOnly() bool           { return m.ownerOnly }
func (m meta) Options() []command.Option { return m.options }

// All returns the admin command set. refresh is invoked by /reload to
// re-register the command definitions with the transport.
func All(refresh func() error) []command.Command {
	return []command.Command{newSettings(), newReset(), newReload(refresh)}
}

func requireManager(ctx *command.Context) error {
	if !gate.Authorize(ctx.Member, "") {
		return command.ErrPermissionDenied
	}
	return nil
}

type settingsCommand struct{ meta }

func newSettings() *settingsCommand {
	return &settingsCommand{meta{
		name:        "settings",
		description: "Show or change server settings",
		options: []command.Option{
			{Name: "music_channel", Description: "Channel for playback notifications", Type: command.OptionChannel},
			{Name: "autoplay", Description: "Start playback automatically when tracks are queued", Type: command.OptionBoolean},
			{Name: "max_queue_size", Description: "Maximum number of queued tracks", Type: command.OptionInteger, MinValue: command.Int(1), MaxValue: command.Int(1000)},
		},
	}}
}

func (c *settingsCommand) Run(ctx *command.Context) error {
	hasChanges := ctx.Args.Has("music_channel") || ctx.Args.Has("autoplay") || ctx.Args.Has("max_queue_size")
	if !hasChanges {
		settings, err := ctx.Settings()
		if err != nil {
			return err
		}
		return ctx.Responder.Reply(settingsPayload(settings))
	}

	if err := requireManager(ctx); err != nil {
		return err
	}

	var patch storage.SettingsPatch
	if ctx.Args.Has("music_channel") {
		ch := ctx.Args.Channel("music_channel")
		patch.MusicChannelID = &ch
	}
	if ctx.Args.Has("autoplay") {
		ap := ctx.Args.Bool("autoplay")
		patch.AutoPlay = &ap
	}
	if ctx.Args.Has("max_queue_size") {
		size := ctx.Args.Int("max_queue_size")
		patch.MaxQueueSize = &size
	}

	if err := ctx.Store.UpdateGuildSettings(ctx.GuildID, patch); err != nil {
		return &command.CollaboratorError{Op: "update guild settings", Err: err}
	}

	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	return ctx.Responder.Reply(settingsPayload(settings))
}

func settingsPayload(s storage.GuildSettings) notify.Payload {
	channel := "Not set"
	if s.MusicChannelID != "" {
		channel = fmt.Sprintf("<#%s>", s.MusicChannelID)
	}
	djRole := "Not set"
	if s.DJRoleID != "" {
		djRole = fmt.Sprintf("<@&%s>", s.DJRoleID)
	}
	autoplay := "Off"
	if s.AutoPlay {
		autoplay = "On"
	}
	return notify.Payload{
		Title: "Server Settings",
		Fields: []notify.Field{
			{Name: "Music channel", Value: channel, Inline: true},
			{Name: "DJ role", Value: djRole, Inline: true},
			{Name: "Autoplay", Value: autoplay, Inline: true},
			{Name: "Max queue size", Value: fmt.Sprintf("%d", s.MaxQueueSize), Inline: true},
		},
	}
}

type resetCommand struct{ meta }

func newReset() *resetCommand {
	return &resetCommand{meta{
		name:        "settings-reset",
		description: "Restore server settings to defaults",
	}}
}

func (c *resetCommand) Run(ctx *command.Context) error {
	if err := requireManager(ctx); err != nil {
		return err
	}
	if err := ctx.Store.ResetGuildSettings(ctx.GuildID); err != nil {
		return &command.CollaboratorError{Op: "reset guild settings", Err: err}
	}
	return ctx.Responder.ReplyText("Server settings restored to defaults.")
}

type reloadCommand struct {
	meta
	refresh func() error
}

func newReload(refresh func() error) *reloadCommand {
	return &reloadCommand{
		meta: meta{
			name:        "reload",
			description: "Re-register the command definitions",
			ownerOnly:   true,
		},
		refresh: refresh,
	}
}

func (c *reloadCommand) Run(ctx *command.Context) error {
	if c.refresh == nil {
		return command.Userf("Reloading is not available right now.")
	}
	_ = ctx.Responder.Defer()
	if err := c.refresh(); err != nil {
		return &command.CollaboratorError{Op: "reload commands", Err: err}
	}
	return ctx.Responder.ReplyText("Command definitions re-registered.")
}
