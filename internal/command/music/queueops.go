package music

import (
	"fmt"
	"strings"
	"time"

	"tunekeeper/internal/command"
	"tunekeeper/internal/notify"
	"tunekeeper/internal/queue"
)

const queuePageSize = 10

type nowPlayingCommand struct{ meta }

func newNowPlaying() *nowPlayingCommand {
	return &nowPlayingCommand{meta{
		name:        "nowplaying",
		description: "Show the currently playing track",
	}}
}

func (c *nowPlayingCommand) Run(ctx *command.Context) error {
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}
	entry, ok := sess.Current()
	if !ok {
		return command.Userf("Nothing is playing right now.")
	}

	track := entry.Track
	position := sess.Position()
	progress := fmt.Sprintf("%s `%s / %s`",
		notify.ProgressBar(position, track.Duration, 20),
		notify.FormatDuration(position),
		notify.FormatDuration(track.Duration))
	if track.IsLive {
		progress = "🔴 Live"
	}

	return ctx.Responder.Reply(notify.Payload{
		Title:       "Now Playing",
		Description: fmt.Sprintf("**[%s](%s)**\n%s", track.Title, track.URI, progress),
		Thumbnail:   track.Thumbnail,
		Fields: []notify.Field{
			{Name: "Artist", Value: track.Author, Inline: true},
			{Name: "State", Value: sess.State().String(), Inline: true},
			{Name: "Volume", Value: fmt.Sprintf("%d%%", sess.Volume()), Inline: true},
			{Name: "Loop", Value: sess.Loop().String(), Inline: true},
			{Name: "Requested by", Value: entry.RequesterName, Inline: true},
		},
	})
}

type queueCommand struct{ meta }

func newQueue() *queueCommand {
	return &queueCommand{meta{
		name:        "queue",
		description: "Show the upcoming tracks",
		options: []command.Option{
			{Name: "page", Description: "Page to show", Type: command.OptionInteger, MinValue: command.Int(1)},
			{Name: "filter", Description: "Show only a subset", Type: command.OptionString, Choices: []command.Choice{
				{Name: "Everything", Value: string(queue.FilterAll)},
				{Name: "My requests", Value: string(queue.FilterUser)},
				{Name: "Short tracks (under 3 min)", Value: string(queue.FilterShort)},
				{Name: "Long tracks (over 5 min)", Value: string(queue.FilterLong)},
				{Name: "Live streams", Value: string(queue.FilterLive)},
			}},
			{Name: "sort", Description: "Display order", Type: command.OptionString, Choices: []command.Choice{
				{Name: "Order added", Value: string(queue.SortAdded)},
				{Name: "Shortest first", Value: string(queue.SortDurationAsc)},
				{Name: "Longest first", Value: string(queue.SortDurationDesc)},
				{Name: "Artist A-Z", Value: string(queue.SortArtist)},
				{Name: "Title A-Z", Value: string(queue.SortTitle)},
			}},
		},
	}}
}

func (c *queueCommand) Run(ctx *command.Context) error {
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}

	filter := queue.Filter(ctx.Args.StringOr("filter", string(queue.FilterAll)))
	sortKey := queue.SortKey(ctx.Args.StringOr("sort", string(queue.SortAdded)))
	entries := queue.Apply(sess.Queue().Entries(), filter, sortKey, ctx.Member.ID)

	if len(entries) == 0 {
		if filter != queue.FilterAll {
			return command.Userf("No queued tracks match that filter.")
		}
		return command.Userf("The queue is empty. Use `/play` to add tracks.")
	}

	pages := (len(entries) + queuePageSize - 1) / queuePageSize
	page := ctx.Args.IntOr("page", 1)
	if page > pages {
		page = pages
	}
	start := (page - 1) * queuePageSize
	end := start + queuePageSize
	if end > len(entries) {
		end = len(entries)
	}

	var sb strings.Builder
	for i, e := range entries[start:end] {
		fmt.Fprintf(&sb, "`%d.` [%s](%s) `%s` — %s\n",
			start+i+1,
			notify.Truncate(e.Track.Title, 60),
			e.Track.URI,
			notify.FormatDuration(e.Track.Duration),
			e.RequesterName)
	}

	fields := []notify.Field{
		{Name: "Tracks", Value: fmt.Sprintf("%d", len(entries)), Inline: true},
		{Name: "Total length", Value: notify.FormatDuration(sess.Queue().Duration()), Inline: true},
	}
	if current, ok := sess.Current(); ok {
		fields = append(fields, notify.Field{Name: "Now playing", Value: notify.Truncate(current.Track.Title, 60), Inline: true})
	}

	return ctx.Responder.Reply(notify.Payload{
		Title:       fmt.Sprintf("Queue — page %d/%d", page, pages),
		Description: sb.String(),
		Fields:      fields,
	})
}

type shuffleCommand struct{ meta }

func newShuffle() *shuffleCommand {
	return &shuffleCommand{meta{
		name:        "shuffle",
		description: "Shuffle the queue",
		cooldown:    5 * time.Second,
		options: []command.Option{
			{Name: "smart", Description: "Keep recently queued tracks away from the front", Type: command.OptionBoolean},
		},
	}}
}

func (c *shuffleCommand) Run(ctx *command.Context) error {
	if err := ctx.RequireDJ(); err != nil {
		return err
	}
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}

	n := sess.Queue().Len()
	if n < 2 {
		return command.Userf("Not enough tracks in the queue to shuffle.")
	}

	if ctx.Args.Bool("smart") {
		sess.Queue().SmartShuffle(smartShuffleWindow)
	} else {
		sess.Queue().Shuffle()
	}
	return ctx.Responder.ReplyText(fmt.Sprintf("Shuffled **%d** tracks.", n))
}

type moveCommand struct{ meta }

func newMove() *moveCommand {
	return &moveCommand{meta{
		name:        "move",
		description: "Move a queued track to another position",
		options: []command.Option{
			{Name: "from", Description: "Current position", Type: command.OptionInteger, Required: true, MinValue: command.Int(1)},
			{Name: "to", Description: "New position", Type: command.OptionInteger, Required: true, MinValue: command.Int(1)},
		},
	}}
}

func (c *moveCommand) Run(ctx *command.Context) error {
	if err := ctx.RequireDJ(); err != nil {
		return err
	}
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}

	from := ctx.Args.Int("from")
	to := ctx.Args.Int("to")
	entry, ok := sess.Queue().Move(from-1, to-1)
	if !ok {
		return command.Userf("Invalid position. The queue has %d track(s).", sess.Queue().Len())
	}
	return ctx.Responder.ReplyText(fmt.Sprintf("Moved **%s** to position **%d**.", entry.Track.Title, to))
}

type removeCommand struct{ meta }

func newRemove() *removeCommand {
	return &removeCommand{meta{
		name:        "remove",
		description: "Remove a track from the queue",
		options: []command.Option{
			{Name: "position", Description: "Position of the track to remove", Type: command.OptionInteger, Required: true, MinValue: command.Int(1)},
		},
	}}
}

func (c *removeCommand) Run(ctx *command.Context) error {
	if err := ctx.RequireDJ(); err != nil {
		return err
	}
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}

	pos := ctx.Args.Int("position")
	entry, ok := sess.Queue().Remove(pos - 1)
	if !ok {
		return command.Userf("Invalid position. The queue has %d track(s).", sess.Queue().Len())
	}
	return ctx.Responder.ReplyText(fmt.Sprintf("Removed **%s** from the queue.", entry.Track.Title))
}

type clearCommand struct{ meta }

func newClear() *clearCommand {
	return &clearCommand{meta{
		name:        "clear",
		description: "Remove every queued track",
		cooldown:    5 * time.Second,
	}}
}

func (c *clearCommand) Run(ctx *command.Context) error {
	if err := ctx.RequireDJ(); err != nil {
		return err
	}
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}

	dropped := sess.Queue().Clear()
	if dropped == 0 {
		return command.Userf("The queue is already empty.")
	}
	return ctx.Responder.ReplyText(fmt.Sprintf("Cleared **%d** track(s) from the queue.", dropped))
}
