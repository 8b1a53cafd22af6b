package discord

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"

	"tunekeeper/internal/command"
	"tunekeeper/internal/gate"
)

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Member == nil || i.Member.User == nil {
		// Commands only work inside guilds.
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.onSlashCommand(s, i)
	case discordgo.InteractionMessageComponent:
		b.onComponent(s, i)
	}
}

func (b *Bot) onSlashCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	responder := newResponder(s, i, b.selections)

	cmd, ok := b.registry.Get(data.Name)
	if !ok {
		b.log.Debug().Str("command", data.Name).Msg("interaction for unregistered command")
		return
	}

	args, err := command.ParseArgs(cmd.Options(), rawOptions(data.Options))
	if err != nil {
		var userErr *command.UserInputError
		if errors.As(err, &userErr) {
			_ = responder.ReplyError(userErr.Message)
		} else {
			b.log.Error().Err(err).Str("command", data.Name).Msg("failed to decode options")
			_ = responder.ReplyError("Could not read the command options.")
		}
		return
	}

	ctx := &command.Context{
		Ctx:       context.Background(),
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Member: gate.Member{
			ID:          i.Member.User.ID,
			Username:    i.Member.User.Username,
			Roles:       i.Member.Roles,
			Permissions: i.Member.Permissions,
		},
		Args:      args,
		Sessions:  b.sessions,
		Store:     b.store,
		Engine:    b.engine,
		Voice:     b.voiceChannelOf,
		Responder: responder,
	}

	b.dispatcher.Dispatch(ctx, data.Name)
}

// onComponent resumes a pending selection menu. Expired menus and picks by
// anyone but the offering member get an ephemeral notice.
func (b *Bot) onComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.MessageComponentData()
	if !strings.HasPrefix(data.CustomID, selectionPrefix) {
		b.log.Debug().Str("custom_id", data.CustomID).Msg("component interaction for unknown menu")
		return
	}

	pending, ok := b.selections.get(data.CustomID)
	if !ok {
		_ = newResponder(s, i, nil).ReplyError("This menu has expired.")
		return
	}
	if pending.sel.UserID != "" && i.Member.User.ID != pending.sel.UserID {
		_ = newResponder(s, i, nil).ReplyError("Only the member who opened this menu can pick from it.")
		return
	}

	// Consume before running: a menu is picked from at most once, even when
	// two picks race.
	pending, ok = b.selections.take(data.CustomID)
	if !ok {
		_ = newResponder(s, i, nil).ReplyError("This menu has expired.")
		return
	}

	empty := []discordgo.MessageComponent{}
	if _, err := s.InteractionResponseEdit(pending.interaction, &discordgo.WebhookEdit{Components: &empty}); err != nil {
		b.log.Debug().Err(err).Msg("failed to disable consumed selection menu")
	}

	if len(data.Values) == 0 {
		return
	}
	value := data.Values[0]

	ctx := &command.Context{
		Ctx:       context.Background(),
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Member: gate.Member{
			ID:          i.Member.User.ID,
			Username:    i.Member.User.Username,
			Roles:       i.Member.Roles,
			Permissions: i.Member.Permissions,
		},
		Sessions:  b.sessions,
		Store:     b.store,
		Engine:    b.engine,
		Voice:     b.voiceChannelOf,
		Responder: newResponder(s, i, b.selections),
	}

	name := pending.sel.Name
	if name == "" {
		name = "selection"
	}
	pick := pending.sel.Pick
	b.dispatcher.DispatchPick(ctx, name, func(c *command.Context) error {
		return pick(c, value)
	})
}

// rawOptions flattens interaction options into the neutral form the option
// parser validates.
func rawOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]any {
	raw := make(map[string]any, len(opts))
	for _, opt := range opts {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionString:
			raw[opt.Name] = opt.StringValue()
		case discordgo.ApplicationCommandOptionInteger:
			raw[opt.Name] = int(opt.IntValue())
		case discordgo.ApplicationCommandOptionBoolean:
			raw[opt.Name] = opt.BoolValue()
		case discordgo.ApplicationCommandOptionRole, discordgo.ApplicationCommandOptionChannel:
			// Snowflakes arrive as plain strings; resolving the entity is the
			// handler's business.
			if s, ok := opt.Value.(string); ok {
				raw[opt.Name] = s
			}
		}
	}
	return raw
}
