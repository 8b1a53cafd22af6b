package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"tunekeeper/internal/audio"
	"tunekeeper/internal/session"
)

// Sender delivers a rendered payload to a text channel. Delivery failures
// are soft: a deleted channel loses the notification, nothing more.
type Sender interface {
	Send(channelID string, p Payload) error
}

// Recorder receives track-start facts for play statistics.
type Recorder interface {
	RecordTrackPlay(guildID, title, author string) error
}

// Bridge consumes the registry's lifecycle stream and produces outbound
// notifications. It runs independently of command handling.
type Bridge struct {
	events   <-chan session.Event
	sender   Sender
	recorder Recorder
	log      zerolog.Logger
}

func NewBridge(events <-chan session.Event, sender Sender, recorder Recorder, logger zerolog.Logger) *Bridge {
	return &Bridge{events: events, sender: sender, recorder: recorder, log: logger}
}

// Run consumes events until the context is cancelled or the stream closes.
func (b *Bridge) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-b.events:
			if !ok {
				return
			}
			b.handle(evt)
		}
	}
}

func (b *Bridge) handle(evt session.Event) {
	switch evt.Type {
	case session.EventTrackStarted:
		if b.recorder != nil {
			if err := b.recorder.RecordTrackPlay(evt.GuildID, evt.Entry.Track.Title, evt.Entry.Track.Author); err != nil {
				b.log.Warn().Err(err).Str("guild_id", evt.GuildID).Msg("failed to record track play")
			}
		}
		b.send(evt, b.trackStarted(evt))
	case session.EventTrackEnded:
		// Stops and replacements are user-initiated; announcing them would
		// duplicate the command response.
		if evt.Reason == audio.ReasonFinished {
			b.send(evt, b.trackEnded(evt))
		}
	case session.EventTrackErrored:
		b.send(evt, b.trackErrored(evt))
	case session.EventQueueEmptied:
		b.send(evt, b.queueEmptied())
	}
}

func (b *Bridge) send(evt session.Event, p Payload) {
	if evt.TextChannelID == "" {
		return
	}
	if err := b.sender.Send(evt.TextChannelID, p); err != nil {
		b.log.Warn().
			Err(err).
			Str("guild_id", evt.GuildID).
			Str("channel_id", evt.TextChannelID).
			Msg("failed to deliver notification")
	}
}

func (b *Bridge) trackStarted(evt session.Event) Payload {
	track := evt.Entry.Track
	fields := []Field{
		{Name: "Artist", Value: orUnknown(track.Author), Inline: true},
		{Name: "Duration", Value: FormatDuration(track.Duration), Inline: true},
		{Name: "Volume", Value: fmt.Sprintf("%d%%", evt.Volume), Inline: true},
		{Name: "Queue", Value: fmt.Sprintf("%d track(s) remaining", evt.QueueLen), Inline: true},
		{Name: "Loop", Value: evt.Loop.String(), Inline: true},
	}
	if evt.Entry.RequesterName != "" {
		fields = append(fields, Field{Name: "Requested by", Value: evt.Entry.RequesterName, Inline: true})
	}
	return Payload{
		Title:       "Now Playing",
		Description: fmt.Sprintf("**[%s](%s)**", track.Title, track.URI),
		Fields:      fields,
		Thumbnail:   track.Thumbnail,
	}
}

func (b *Bridge) trackEnded(evt session.Event) Payload {
	track := evt.Entry.Track
	return Payload{
		Title:       "Track Finished",
		Description: fmt.Sprintf("**[%s](%s)**", track.Title, track.URI),
		Fields: []Field{
			{Name: "Artist", Value: orUnknown(track.Author), Inline: true},
			{Name: "Duration", Value: FormatDuration(track.Duration), Inline: true},
		},
		Thumbnail: track.Thumbnail,
	}
}

func (b *Bridge) trackErrored(evt session.Event) Payload {
	track := evt.Entry.Track
	reason := "unknown error"
	if evt.Err != nil {
		reason = evt.Err.Error()
	}
	return Payload{
		Title:       "Track Error",
		Description: fmt.Sprintf("**[%s](%s)**", track.Title, track.URI),
		Fields: []Field{
			{Name: "Error", Value: Truncate(reason, 1024), Inline: true},
			{Name: "Action", Value: "Skipping to next track", Inline: true},
		},
	}
}

func (b *Bridge) queueEmptied() Payload {
	return Payload{
		Title:       "Queue Finished",
		Description: "All tracks in the queue have been played. Use `/play` to add more music.",
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
