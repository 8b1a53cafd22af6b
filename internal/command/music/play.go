package music

import (
	"errors"
	"fmt"

	"tunekeeper/internal/audio"
	"tunekeeper/internal/command"
	"tunekeeper/internal/notify"
	"tunekeeper/internal/queue"
	"tunekeeper/internal/session"
	"tunekeeper/internal/storage"
)

type playCommand struct{ meta }

func newPlay() *playCommand {
	return &playCommand{meta{
		name:        "play",
		description: "Play a track or playlist, or add it to the queue",
		options: []command.Option{
			{Name: "query", Description: "Track URL, playlist URL or search terms", Type: command.OptionString, Required: true},
			{Name: "source", Description: "Where to search", Type: command.OptionString, Choices: []command.Choice{
				{Name: "YouTube", Value: "youtube"},
			}},
		},
	}}
}

func (c *playCommand) Run(ctx *command.Context) error {
	voiceID, err := ctx.Voice(ctx.GuildID, ctx.Member.ID)
	if err != nil {
		return &command.CollaboratorError{Op: "look up voice state", Err: err}
	}
	if voiceID == "" {
		return command.Userf("You need to be in a voice channel to play music.")
	}

	// Resolving can take a while, acknowledge first.
	_ = ctx.Responder.Defer()

	settings, err := ctx.Settings()
	if err != nil {
		return err
	}

	rawQuery := ctx.Args.String("query")
	result, err := ctx.Engine.Resolve(ctx.Ctx, audio.Query{
		Query:  rawQuery,
		Source: ctx.Args.StringOr("source", "youtube"),
	})
	if err != nil {
		return &command.CollaboratorError{Op: "resolve query", Err: err}
	}
	if result.LoadType == audio.LoadTypeEmpty || result.LoadType == audio.LoadTypeError || len(result.Tracks) == 0 {
		return command.Userf("No results found for `%s`.", notify.Truncate(rawQuery, 100))
	}

	tracks := result.Tracks
	if result.LoadType != audio.LoadTypePlaylist {
		tracks = tracks[:1]
	}

	entries, queueLen, truncated, err := queueTracks(ctx, voiceID, settings, tracks)
	if err != nil {
		return err
	}

	return ctx.Responder.Reply(c.addedPayload(result, entries, queueLen, truncated))
}

// queueTracks joins the member's voice channel if needed, applies the
// guild's queue cap, enqueues and starts playback when stopped. dropped is
// how many tracks the cap cut off.
func queueTracks(ctx *command.Context, voiceID string, settings storage.GuildSettings, tracks []audio.TrackInfo) (entries []queue.Entry, queueLen, dropped int, err error) {
	// Notifications go to the configured music channel when one is set,
	// otherwise to wherever the command came from.
	textChannelID := ctx.ChannelID
	if settings.MusicChannelID != "" {
		textChannelID = settings.MusicChannelID
	}

	sess, err := ctx.Sessions.GetOrCreate(ctx.Ctx, ctx.GuildID, voiceID, textChannelID)
	if err != nil {
		return nil, 0, 0, &command.CollaboratorError{Op: "join voice channel", Err: err}
	}

	if settings.MaxQueueSize > 0 {
		room := settings.MaxQueueSize - sess.Queue().Len()
		if room <= 0 {
			return nil, 0, 0, command.Userf("The queue is full (%d tracks max).", settings.MaxQueueSize)
		}
		if len(tracks) > room {
			dropped = len(tracks) - room
			tracks = tracks[:room]
		}
	}

	entries = make([]queue.Entry, 0, len(tracks))
	for _, t := range tracks {
		entries = append(entries, queue.NewEntry(t, ctx.Member.ID, ctx.Member.Username))
	}
	queueLen = sess.Enqueue(entries)

	if err := sess.EnsurePlaying(); err != nil && !errors.Is(err, session.ErrNothingQueued) {
		return entries, queueLen, dropped, &command.CollaboratorError{Op: "start playback", Err: err}
	}
	return entries, queueLen, dropped, nil
}

func (c *playCommand) addedPayload(result *audio.ResolveResult, entries []queue.Entry, queueLen, truncated int) notify.Payload {
	if result.LoadType == audio.LoadTypePlaylist {
		name := "playlist"
		thumbnail := ""
		if result.Playlist != nil {
			name = result.Playlist.Name
			thumbnail = result.Playlist.Thumbnail
		}
		desc := fmt.Sprintf("Queued **%d** tracks from **%s**.", len(entries), notify.Truncate(name, 80))
		if truncated > 0 {
			desc += fmt.Sprintf("\n%d track(s) were dropped because the queue is limited.", truncated)
		}
		return notify.Payload{
			Title:       "Playlist Added",
			Description: desc,
			Thumbnail:   thumbnail,
			Fields: []notify.Field{
				{Name: "Queue", Value: fmt.Sprintf("%d tracks", queueLen), Inline: true},
			},
		}
	}

	return trackAddedPayload(entries[0], queueLen)
}

func trackAddedPayload(entry queue.Entry, queueLen int) notify.Payload {
	track := entry.Track
	return notify.Payload{
		Title:       "Added to Queue",
		Description: fmt.Sprintf("[%s](%s)", notify.Truncate(track.Title, 120), track.URI),
		Thumbnail:   track.Thumbnail,
		Fields: []notify.Field{
			{Name: "Artist", Value: track.Author, Inline: true},
			{Name: "Duration", Value: notify.FormatDuration(track.Duration), Inline: true},
			{Name: "Position", Value: fmt.Sprintf("%d", queueLen), Inline: true},
		},
	}
}
