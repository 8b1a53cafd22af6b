package music

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tunekeeper/internal/command"
	"tunekeeper/internal/notify"
	"tunekeeper/internal/session"
)

type pauseCommand struct{ meta }

func newPause() *pauseCommand {
	return &pauseCommand{meta{
		name:        "pause",
		description: "Pause the current track",
		cooldown:    2 * time.Second,
	}}
}

func (c *pauseCommand) Run(ctx *command.Context) error {
	if err := ctx.RequireDJ(); err != nil {
		return err
	}
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}
	if err := sess.Pause(); err != nil {
		if errors.Is(err, session.ErrNotPlaying) {
			return command.Userf("Nothing is playing right now.")
		}
		return &command.CollaboratorError{Op: "pause playback", Err: err}
	}
	return ctx.Responder.ReplyText("Playback paused. Use `/resume` to continue.")
}

type resumeCommand struct{ meta }

func newResume() *resumeCommand {
	return &resumeCommand{meta{
		name:        "resume",
		description: "Resume paused playback",
		cooldown:    2 * time.Second,
	}}
}

func (c *resumeCommand) Run(ctx *command.Context) error {
	if err := ctx.RequireDJ(); err != nil {
		return err
	}
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}
	if err := sess.Resume(); err != nil {
		if errors.Is(err, session.ErrNotPaused) {
			return command.Userf("Playback is not paused.")
		}
		return &command.CollaboratorError{Op: "resume playback", Err: err}
	}
	return ctx.Responder.ReplyText("Playback resumed.")
}

type skipCommand struct{ meta }

func newSkip() *skipCommand {
	return &skipCommand{meta{
		name:        "skip",
		description: "Skip the current track",
		cooldown:    2 * time.Second,
		options: []command.Option{
			{Name: "amount", Description: "How many tracks to skip", Type: command.OptionInteger, MinValue: command.Int(1), MaxValue: command.Int(10)},
		},
	}}
}

func (c *skipCommand) Run(ctx *command.Context) error {
	if err := ctx.RequireDJ(); err != nil {
		return err
	}
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}

	skipped, err := sess.Skip(ctx.Args.IntOr("amount", 1))
	if err != nil {
		if errors.Is(err, session.ErrNotPlaying) {
			return command.Userf("Nothing is playing right now.")
		}
		return &command.CollaboratorError{Op: "skip track", Err: err}
	}

	if len(skipped) == 1 {
		return ctx.Responder.ReplyText(fmt.Sprintf("Skipped **%s**.", skipped[0].Track.Title))
	}
	return ctx.Responder.ReplyText(fmt.Sprintf("Skipped **%d** tracks.", len(skipped)))
}

type stopCommand struct{ meta }

func newStop() *stopCommand {
	return &stopCommand{meta{
		name:        "stop",
		description: "Stop playback and clear the queue",
		cooldown:    2 * time.Second,
	}}
}

func (c *stopCommand) Run(ctx *command.Context) error {
	if err := ctx.RequireDJ(); err != nil {
		return err
	}
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}

	dropped, err := sess.Stop()
	if err != nil {
		return &command.CollaboratorError{Op: "stop playback", Err: err}
	}
	return ctx.Responder.ReplyText(fmt.Sprintf("Playback stopped, %d queued track(s) removed.", dropped))
}

type seekCommand struct{ meta }

func newSeek() *seekCommand {
	return &seekCommand{meta{
		name:        "seek",
		description: "Jump to a position in the current track",
		cooldown:    2 * time.Second,
		options: []command.Option{
			{Name: "position", Description: "Target position, e.g. 1:30 or 90", Type: command.OptionString, Required: true},
		},
	}}
}

func (c *seekCommand) Run(ctx *command.Context) error {
	if err := ctx.RequireDJ(); err != nil {
		return err
	}
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}

	pos, err := parsePosition(ctx.Args.String("position"))
	if err != nil {
		return command.Userf("Could not read that position. Use seconds (`90`) or minutes:seconds (`1:30`).")
	}

	if err := sess.Seek(pos); err != nil {
		switch {
		case errors.Is(err, session.ErrNotPlaying):
			return command.Userf("Nothing is playing right now.")
		case errors.Is(err, session.ErrLiveTrack):
			return command.Userf("Seeking is not available for live streams.")
		}
		return &command.CollaboratorError{Op: "seek", Err: err}
	}
	return ctx.Responder.ReplyText(fmt.Sprintf("Jumped to **%s**.", notify.FormatDuration(pos)))
}

// parsePosition accepts "ss", "m:ss" or "h:mm:ss".
func parsePosition(s string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	var total int
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid position %q", s)
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, nil
}

type volumeCommand struct{ meta }

func newVolume() *volumeCommand {
	return &volumeCommand{meta{
		name:        "volume",
		description: "Show or change the playback volume",
		options: []command.Option{
			{Name: "level", Description: "Volume percent, 0 to 1000", Type: command.OptionInteger, MinValue: command.Int(0), MaxValue: command.Int(1000)},
		},
	}}
}

func (c *volumeCommand) Run(ctx *command.Context) error {
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}

	if !ctx.Args.Has("level") {
		return ctx.Responder.ReplyText(fmt.Sprintf("Current volume is **%d%%**.", sess.Volume()))
	}

	if err := ctx.RequireDJ(); err != nil {
		return err
	}
	level := ctx.Args.Int("level")
	if err := sess.SetVolume(level); err != nil {
		if errors.Is(err, session.ErrInvalidVolume) {
			return command.Userf("Volume must be between 0 and 1000.")
		}
		return &command.CollaboratorError{Op: "set volume", Err: err}
	}
	return ctx.Responder.ReplyText(fmt.Sprintf("Volume set to **%d%%**.", level))
}

type loopCommand struct{ meta }

func newLoop() *loopCommand {
	return &loopCommand{meta{
		name:        "loop",
		description: "Set the loop mode",
		options: []command.Option{
			{Name: "mode", Description: "What to repeat", Type: command.OptionString, Required: true, Choices: []command.Choice{
				{Name: "Off", Value: "none"},
				{Name: "Track", Value: "track"},
				{Name: "Queue", Value: "queue"},
			}},
		},
	}}
}

func (c *loopCommand) Run(ctx *command.Context) error {
	if err := ctx.RequireDJ(); err != nil {
		return err
	}
	sess, err := ctx.CurrentSession()
	if err != nil {
		return err
	}

	mode, ok := session.ParseLoopMode(ctx.Args.String("mode"))
	if !ok {
		return command.Userf("Unknown loop mode.")
	}
	sess.SetLoop(mode)

	if mode == session.LoopNone {
		return ctx.Responder.ReplyText("Looping disabled.")
	}
	return ctx.Responder.ReplyText(fmt.Sprintf("Looping the current **%s**.", strings.ToLower(mode.String())))
}
