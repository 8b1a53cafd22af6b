// Package general implements the informational commands that touch no
// playback state.
package general

import (
	"fmt"
	"strings"
	"time"

	"tunekeeper/internal/command"
	"tunekeeper/internal/notify"
	"tunekeeper/internal/version"
)

type meta struct {
	name        string
	description string
	options     []command.Option
}

func (m meta) Name() string              { return m.name }
func (m meta) Description() string       { return m.description }
func (m meta) Group() string             { return "general" }
func (m meta) Cooldown() time.Duration   { return 0 }
func (m meta) OwnerOnly() bool           { return false }
func (m meta) Options() []command.Option { return m.options }

// Latency reports the current gateway round-trip time.
type Latency func() time.Duration

// All returns the general command set. startedAt anchors /uptime; registry
// feeds /help.
func All(latency Latency, startedAt time.Time, registry *command.Registry) []command.Command {
	return []command.Command{
		newPing(latency),
		newUptime(startedAt),
		newStats(),
		newHistory(),
		newHelp(registry),
	}
}

type pingCommand struct {
	meta
	latency Latency
}

func newPing(latency Latency) *pingCommand {
	return &pingCommand{
		meta:    meta{name: "ping", description: "Check that the bot is responsive"},
		latency: latency,
	}
}

func (c *pingCommand) Run(ctx *command.Context) error {
	if c.latency == nil {
		return ctx.Responder.ReplyText("Pong!")
	}
	return ctx.Responder.ReplyText(fmt.Sprintf("Pong! Gateway latency is **%dms**.", c.latency().Milliseconds()))
}

type uptimeCommand struct {
	meta
	startedAt time.Time
}

func newUptime(startedAt time.Time) *uptimeCommand {
	return &uptimeCommand{
		meta:      meta{name: "uptime", description: "Show how long the bot has been running"},
		startedAt: startedAt,
	}
}

func (c *uptimeCommand) Run(ctx *command.Context) error {
	up := time.Since(c.startedAt).Round(time.Second)
	sessions := 0
	if ctx.Sessions != nil {
		sessions = len(ctx.Sessions.All())
	}
	return ctx.Responder.Reply(notify.Payload{
		Title: fmt.Sprintf("%s %s", version.AppName, version.AppVersion),
		Fields: []notify.Field{
			{Name: "Uptime", Value: formatUptime(up), Inline: true},
			{Name: "Active sessions", Value: fmt.Sprintf("%d", sessions), Inline: true},
		},
	})
}

func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	parts := []string{}
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	parts = append(parts, fmt.Sprintf("%dm", minutes))
	return strings.Join(parts, " ")
}

type statsCommand struct{ meta }

func newStats() *statsCommand {
	return &statsCommand{meta{
		name:        "stats",
		description: "Show the most played tracks on this server",
		options: []command.Option{
			{Name: "limit", Description: "How many tracks to show", Type: command.OptionInteger, MinValue: command.Int(1), MaxValue: command.Int(25)},
		},
	}}
}

func (c *statsCommand) Run(ctx *command.Context) error {
	limit := ctx.Args.IntOr("limit", 10)
	top, err := ctx.Store.TopTracks(ctx.GuildID, limit)
	if err != nil {
		return &command.CollaboratorError{Op: "load track stats", Err: err}
	}
	if len(top) == 0 {
		return command.Userf("Nothing has been played on this server yet.")
	}

	var sb strings.Builder
	for i, stat := range top {
		fmt.Fprintf(&sb, "`%d.` **%s** — %s (%d plays)\n",
			i+1, notify.Truncate(stat.Title, 60), stat.Author, stat.PlayCount)
	}
	return ctx.Responder.Reply(notify.Payload{
		Title:       "Most Played Tracks",
		Description: sb.String(),
	})
}

type helpCommand struct {
	meta
	registry *command.Registry
}

func newHelp(registry *command.Registry) *helpCommand {
	return &helpCommand{
		meta:     meta{name: "help", description: "List all available commands"},
		registry: registry,
	}
}

// groupOrder maps command groups to their display headings, in listing order.
var groupOrder = []struct{ group, title string }{
	{"music", "Music"},
	{"dj", "DJ Role"},
	{"admin", "Administration"},
	{"general", "General"},
}

func (c *helpCommand) Run(ctx *command.Context) error {
	byGroup := make(map[string][]command.Command)
	for _, cmd := range c.registry.All() {
		if cmd.OwnerOnly() {
			continue
		}
		byGroup[cmd.Group()] = append(byGroup[cmd.Group()], cmd)
	}

	fields := make([]notify.Field, 0, len(groupOrder))
	for _, g := range groupOrder {
		cmds := byGroup[g.group]
		if len(cmds) == 0 {
			continue
		}
		var sb strings.Builder
		for _, cmd := range cmds {
			fmt.Fprintf(&sb, "`/%s` — %s\n", cmd.Name(), cmd.Description())
		}
		fields = append(fields, notify.Field{Name: g.title, Value: sb.String()})
	}

	return ctx.Responder.Reply(notify.Payload{
		Title:  fmt.Sprintf("%s Commands", version.AppName),
		Fields: fields,
	})
}

type historyCommand struct{ meta }

func newHistory() *historyCommand {
	return &historyCommand{meta{
		name:        "history",
		description: "Show recent commands used on this server",
	}}
}

func (c *historyCommand) Run(ctx *command.Context) error {
	records, err := ctx.Store.FetchCommandHistory(ctx.GuildID)
	if err != nil {
		return &command.CollaboratorError{Op: "load command history", Err: err}
	}
	if len(records) == 0 {
		return command.Userf("No command history for this server yet.")
	}

	var sb strings.Builder
	// Newest first.
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		fmt.Fprintf(&sb, "`/%s` by **%s** <t:%d:R>\n", r.Command, r.Username, r.Datetime.Unix())
	}
	return ctx.Responder.Reply(notify.Payload{
		Title:       "Recent Commands",
		Description: sb.String(),
	})
}
