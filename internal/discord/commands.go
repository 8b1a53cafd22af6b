package discord

import (
	"github.com/bwmarrin/discordgo"

	"tunekeeper/internal/command"
)

// definition renders a command declaration as the wire-format application
// command Discord expects.
func definition(cmd command.Command) *discordgo.ApplicationCommand {
	def := &discordgo.ApplicationCommand{
		Name:        cmd.Name(),
		Description: cmd.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
	for _, opt := range cmd.Options() {
		def.Options = append(def.Options, optionDefinition(opt))
	}
	return def
}

func optionDefinition(opt command.Option) *discordgo.ApplicationCommandOption {
	out := &discordgo.ApplicationCommandOption{
		Name:        opt.Name,
		Description: opt.Description,
		Required:    opt.Required,
	}

	switch opt.Type {
	case command.OptionInteger:
		out.Type = discordgo.ApplicationCommandOptionInteger
		if opt.MinValue != nil {
			min := float64(*opt.MinValue)
			out.MinValue = &min
		}
		if opt.MaxValue != nil {
			out.MaxValue = float64(*opt.MaxValue)
		}
	case command.OptionBoolean:
		out.Type = discordgo.ApplicationCommandOptionBoolean
	case command.OptionRole:
		out.Type = discordgo.ApplicationCommandOptionRole
	case command.OptionChannel:
		out.Type = discordgo.ApplicationCommandOptionChannel
	default:
		out.Type = discordgo.ApplicationCommandOptionString
	}

	for _, c := range opt.Choices {
		out.Choices = append(out.Choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  c.Name,
			Value: c.Value,
		})
	}
	return out
}

// registerCommands reconciles the guild's registered application commands
// with the local command set. Definitions are hashed so unchanged commands
// cost no API calls across restarts.
func (b *Bot) registerCommands(guildID string) error {
	appID := b.dg.State.User.ID
	if appID == "" {
		user, err := b.dg.User("@me")
		if err != nil {
			return err
		}
		appID = user.ID
	}

	existing, _ := b.dg.ApplicationCommands(appID, guildID)
	localHashes := loadGuildCommandHashes(guildID)

	wanted := make([]*discordgo.ApplicationCommand, 0)
	wantedHashes := make(map[string]string)
	for _, cmd := range b.registry.All() {
		def := definition(cmd)
		wanted = append(wanted, def)
		wantedHashes[def.Name] = hashCommand(def)
	}

	for _, old := range existing {
		if _, ok := wantedHashes[old.Name]; !ok {
			b.log.Info().Str("guild_id", guildID).Str("command", old.Name).Msg("deleting obsolete command")
			if err := b.dg.ApplicationCommandDelete(appID, guildID, old.ID); err != nil {
				b.log.Error().Err(err).Str("guild_id", guildID).Str("command", old.Name).Msg("failed to delete command")
			}
			delete(localHashes, old.Name)
		}
	}

	changed := 0
	for _, def := range wanted {
		newHash := wantedHashes[def.Name]
		if localHashes[def.Name] == newHash {
			continue
		}
		if _, err := b.dg.ApplicationCommandCreate(appID, guildID, def); err != nil {
			b.log.Error().Err(err).Str("guild_id", guildID).Str("command", def.Name).Msg("failed to create command")
			continue
		}
		localHashes[def.Name] = newHash
		changed++
	}
	if changed > 0 {
		b.log.Info().Str("guild_id", guildID).Int("changed", changed).Msg("slash commands updated")
	}

	saveGuildCommandHashes(guildID, localHashes)
	return nil
}

// refreshAllGuilds re-registers the definitions everywhere. Backs /reload.
func (b *Bot) refreshAllGuilds() error {
	var firstErr error
	for _, g := range b.dg.State.Guilds {
		if err := b.registerCommands(g.ID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
