package music

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"tunekeeper/internal/audio"
	"tunekeeper/internal/command"
	"tunekeeper/internal/notify"
)

const (
	searchDefaultLimit = 10
	searchMaxLimit     = 20
	searchMenuTTL      = 5 * time.Minute
)

// Bulk choices offered below the individual results.
const (
	pickAll     = "all"
	pickShuffle = "shuffle"
)

type searchCommand struct{ meta }

func newSearch() *searchCommand {
	return &searchCommand{meta{
		name:        "search",
		description: "Search for tracks and pick which ones to queue",
		cooldown:    5 * time.Second,
		options: []command.Option{
			{Name: "query", Description: "Song name, artist or album", Type: command.OptionString, Required: true},
			{Name: "source", Description: "Where to search", Type: command.OptionString, Choices: []command.Choice{
				{Name: "YouTube", Value: "youtube"},
			}},
			{Name: "limit", Description: "Number of results to show", Type: command.OptionInteger, MinValue: command.Int(1), MaxValue: command.Int(searchMaxLimit)},
		},
	}}
}

func (c *searchCommand) Run(ctx *command.Context) error {
	voiceID, err := ctx.Voice(ctx.GuildID, ctx.Member.ID)
	if err != nil {
		return &command.CollaboratorError{Op: "look up voice state", Err: err}
	}
	if voiceID == "" {
		return command.Userf("You need to be in a voice channel to play music.")
	}

	// Scraping and per-video lookups take a while, acknowledge first.
	_ = ctx.Responder.Defer()

	query := ctx.Args.String("query")
	tracks, err := ctx.Engine.Search(ctx.Ctx, query, ctx.Args.IntOr("limit", searchDefaultLimit))
	if err != nil {
		return &command.CollaboratorError{Op: "search tracks", Err: err}
	}
	if len(tracks) == 0 {
		return command.Userf("No results found for `%s`.", notify.Truncate(query, 100))
	}

	var sb strings.Builder
	opts := make([]command.SelectOption, 0, len(tracks)+2)
	for i, t := range tracks {
		fmt.Fprintf(&sb, "`%d.` [%s](%s) `%s` — %s\n",
			i+1,
			notify.Truncate(t.Title, 60),
			t.URI,
			notify.FormatDuration(t.Duration),
			t.Author)
		opts = append(opts, command.SelectOption{
			Label:       notify.Truncate(fmt.Sprintf("%d. %s", i+1, t.Title), 100),
			Description: notify.Truncate(t.Author, 100),
			Value:       strconv.Itoa(i),
		})
	}
	opts = append(opts,
		command.SelectOption{Label: "Queue all results", Value: pickAll},
		command.SelectOption{Label: "Shuffle and queue all results", Value: pickShuffle},
	)

	payload := notify.Payload{
		Title: "Search Results",
		Description: fmt.Sprintf("Found **%d** result(s) for **%s**.\n\n%s",
			len(tracks), notify.Truncate(query, 80), sb.String()),
	}
	return ctx.Responder.ReplyChoice(payload, command.Selection{
		Name:        c.name,
		Placeholder: "Pick a track to queue",
		UserID:      ctx.Member.ID,
		TTL:         searchMenuTTL,
		Options:     opts,
		Pick: func(pctx *command.Context, value string) error {
			return queuePicked(pctx, tracks, value)
		},
	})
}

// queuePicked enqueues the chosen result(s). It re-checks the member's
// voice state because minutes may pass between search and pick.
func queuePicked(ctx *command.Context, tracks []audio.TrackInfo, value string) error {
	var chosen []audio.TrackInfo
	switch value {
	case pickAll:
		chosen = tracks
	case pickShuffle:
		chosen = make([]audio.TrackInfo, len(tracks))
		copy(chosen, tracks)
		rand.Shuffle(len(chosen), func(i, j int) { chosen[i], chosen[j] = chosen[j], chosen[i] })
	default:
		i, err := strconv.Atoi(value)
		if err != nil || i < 0 || i >= len(tracks) {
			return command.Userf("That choice is no longer available.")
		}
		chosen = tracks[i : i+1]
	}

	voiceID, err := ctx.Voice(ctx.GuildID, ctx.Member.ID)
	if err != nil {
		return &command.CollaboratorError{Op: "look up voice state", Err: err}
	}
	if voiceID == "" {
		return command.Userf("You need to be in a voice channel to play music.")
	}

	settings, err := ctx.Settings()
	if err != nil {
		return err
	}

	entries, queueLen, dropped, err := queueTracks(ctx, voiceID, settings, chosen)
	if err != nil {
		return err
	}

	if len(entries) == 1 {
		return ctx.Responder.Reply(trackAddedPayload(entries[0], queueLen))
	}

	desc := fmt.Sprintf("Queued **%d** tracks from the search results.", len(entries))
	if dropped > 0 {
		desc += fmt.Sprintf("\n%d track(s) were dropped because the queue is limited.", dropped)
	}
	return ctx.Responder.Reply(notify.Payload{
		Title:       "Added to Queue",
		Description: desc,
		Fields: []notify.Field{
			{Name: "Queue", Value: fmt.Sprintf("%d tracks", queueLen), Inline: true},
		},
	})
}
