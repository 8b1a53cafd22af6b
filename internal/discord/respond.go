package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"tunekeeper/internal/command"
	"tunekeeper/internal/notify"
)

const embedColor = 0x5865f2

// renderEmbed turns a transport-agnostic payload into a Discord embed.
func renderEmbed(p notify.Payload) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       p.Title,
		Description: p.Description,
		Color:       embedColor,
	}
	if p.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: p.Thumbnail}
	}
	for _, f := range p.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	return embed
}

// interactionResponder delivers exactly one response per interaction. A
// reply after Defer becomes an edit of the deferred acknowledgement.
type interactionResponder struct {
	s          *discordgo.Session
	i          *discordgo.InteractionCreate
	selections *selectionStore
	deferred   bool
	done       bool
}

func newResponder(s *discordgo.Session, i *discordgo.InteractionCreate, selections *selectionStore) *interactionResponder {
	return &interactionResponder{s: s, i: i, selections: selections}
}

func (r *interactionResponder) Defer() error {
	if r.deferred || r.done {
		return nil
	}
	err := r.s.InteractionRespond(r.i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err == nil {
		r.deferred = true
	}
	return err
}

func (r *interactionResponder) Reply(p notify.Payload) error {
	return r.respond(&discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{renderEmbed(p)},
	}, false)
}

// ReplyChoice attaches a one-shot select menu to the reply and registers it
// with the selection store for later component interactions.
func (r *interactionResponder) ReplyChoice(p notify.Payload, sel command.Selection) error {
	if r.selections == nil || len(sel.Options) == 0 {
		return r.Reply(p)
	}

	customID := selectionPrefix + uuid.NewString()
	options := make([]discordgo.SelectMenuOption, 0, len(sel.Options))
	for _, o := range sel.Options {
		options = append(options, discordgo.SelectMenuOption{
			Label:       o.Label,
			Description: o.Description,
			Value:       o.Value,
		})
	}

	err := r.respond(&discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{renderEmbed(p)},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    customID,
					Placeholder: sel.Placeholder,
					Options:     options,
				},
			}},
		},
	}, false)
	if err != nil {
		return err
	}

	r.selections.add(customID, r.i.Interaction, sel)
	return nil
}

func (r *interactionResponder) ReplyText(text string) error {
	return r.respond(&discordgo.InteractionResponseData{Content: text}, false)
}

func (r *interactionResponder) ReplyError(text string) error {
	return r.respond(&discordgo.InteractionResponseData{Content: text}, true)
}

func (r *interactionResponder) respond(data *discordgo.InteractionResponseData, ephemeral bool) error {
	if r.done {
		return nil
	}
	r.done = true

	if r.deferred {
		edit := &discordgo.WebhookEdit{}
		if data.Content != "" {
			edit.Content = &data.Content
		}
		if len(data.Embeds) > 0 {
			edit.Embeds = &data.Embeds
		}
		if len(data.Components) > 0 {
			edit.Components = &data.Components
		}
		_, err := r.s.InteractionResponseEdit(r.i.Interaction, edit)
		return err
	}

	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return r.s.InteractionRespond(r.i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// channelSender delivers bridge notifications as channel embeds.
type channelSender struct {
	dg *discordgo.Session
}

func (c *channelSender) Send(channelID string, p notify.Payload) error {
	_, err := c.dg.ChannelMessageSendEmbed(channelID, renderEmbed(p))
	return err
}
