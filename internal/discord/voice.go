package discord

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// aloneGracePeriod is how long the bot stays in an empty voice channel
// before tearing the session down.
const aloneGracePeriod = 2 * time.Minute

// onVoiceStateUpdate watches for two conditions: the bot being removed from
// voice, and the bot being left alone in its channel.
func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	botID := s.State.User.ID

	if vs.UserID == botID {
		if vs.ChannelID == "" {
			// Kicked or moved out; the session is useless without voice.
			b.cancelGraceTimer(vs.GuildID)
			b.destroyWithNotice(vs.GuildID, "Disconnected from voice, playback stopped.")
		}
		return
	}

	sess, ok := b.sessions.Get(vs.GuildID)
	if !ok {
		return
	}

	if b.listenerCount(vs.GuildID, sess.VoiceChannelID()) == 0 {
		b.startGraceTimer(vs.GuildID)
	} else {
		b.cancelGraceTimer(vs.GuildID)
	}
}

// listenerCount counts non-bot users in the voice channel.
func (b *Bot) listenerCount(guildID, channelID string) int {
	if channelID == "" {
		return 0
	}
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return 0
	}

	count := 0
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != channelID || vs.UserID == b.dg.State.User.ID {
			continue
		}
		member, err := b.dg.State.Member(guildID, vs.UserID)
		if err == nil && member.User != nil && member.User.Bot {
			continue
		}
		count++
	}
	return count
}

// startGraceTimer arms the empty-channel countdown. Re-arming while a timer
// runs is a no-op so the deadline does not slide.
func (b *Bot) startGraceTimer(guildID string) {
	b.graceMu.Lock()
	defer b.graceMu.Unlock()
	if _, running := b.graceTimers[guildID]; running {
		return
	}

	b.log.Debug().Str("guild_id", guildID).Msg("voice channel empty, starting grace timer")
	b.graceTimers[guildID] = time.AfterFunc(aloneGracePeriod, func() {
		b.graceMu.Lock()
		delete(b.graceTimers, guildID)
		b.graceMu.Unlock()

		sess, ok := b.sessions.Get(guildID)
		if !ok {
			return
		}
		// Someone may have joined since the timer was armed.
		if b.listenerCount(guildID, sess.VoiceChannelID()) > 0 {
			return
		}
		b.destroyWithNotice(guildID, "Left the voice channel after two minutes alone.")
	})
}

func (b *Bot) cancelGraceTimer(guildID string) {
	b.graceMu.Lock()
	defer b.graceMu.Unlock()
	if t, ok := b.graceTimers[guildID]; ok {
		t.Stop()
		delete(b.graceTimers, guildID)
	}
}

// destroyWithNotice tears the session down and tells the text channel why.
func (b *Bot) destroyWithNotice(guildID, notice string) {
	sess, ok := b.sessions.Get(guildID)
	if !ok {
		return
	}
	textChannelID := sess.TextChannelID()
	b.sessions.Destroy(guildID)

	if textChannelID != "" {
		if _, err := b.dg.ChannelMessageSend(textChannelID, notice); err != nil {
			b.log.Warn().Err(err).Str("guild_id", guildID).Msg("failed to send departure notice")
		}
	}
}
