package command

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"tunekeeper/internal/gate"
	"tunekeeper/internal/storage"
)

const (
	msgPermissionDenied = "You need the DJ role or Manage Server permission to use this command."
	msgNothingPlaying   = "No music is currently playing in this server."
	msgOwnerOnly        = "This command is restricted to the bot owner."
	msgInternal         = "Something went wrong while running this command. Try again later."
)

// Dispatcher routes a decoded invocation through the cooldown and owner
// gates into the handler and maps every outcome to exactly one response.
type Dispatcher struct {
	registry  *Registry
	cooldowns *gate.Cooldowns
	ownerID   string
	store     *storage.Storage
	log       zerolog.Logger
}

func NewDispatcher(registry *Registry, cooldowns *gate.Cooldowns, ownerID string, store *storage.Storage, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		cooldowns: cooldowns,
		ownerID:   ownerID,
		store:     store,
		log:       log.With().Str("component", "dispatcher").Logger(),
	}
}

// Dispatch runs the named command within ctx. Unknown names are ignored
// beyond a debug log: stale registrations arrive during rollouts and are
// not an error. All other paths produce exactly one user-visible response.
func (d *Dispatcher) Dispatch(ctx *Context, name string) {
	cmd, ok := d.registry.Get(name)
	if !ok {
		d.log.Debug().Str("command", name).Str("guild_id", ctx.GuildID).Msg("unknown command")
		return
	}

	log := d.log.With().
		Str("command", name).
		Str("guild_id", ctx.GuildID).
		Str("user_id", ctx.Member.ID).
		Logger()

	allowed, retryAfter := d.cooldowns.CheckAndStamp(name, ctx.Member.ID, cmd.Cooldown())
	if !allowed {
		log.Debug().Int("retry_after", retryAfter).Msg("command on cooldown")
		d.respondError(ctx, log, fmt.Sprintf("Please wait %d more second(s) before using `/%s` again.", retryAfter, name))
		return
	}

	if cmd.OwnerOnly() && ctx.Member.ID != d.ownerID {
		log.Debug().Msg("owner-only command denied")
		d.respondError(ctx, log, msgOwnerOnly)
		return
	}

	d.recordHistory(ctx, log, name)

	d.contain(ctx, log, d.invoke(cmd.Run, ctx, log))
}

// DispatchPick resumes an interactive selection: the deferred half of a
// command that replied with a choice menu. The pick runs under the same
// panic containment and error mapping as a regular handler; cooldown and
// owner gates were already passed when the menu was offered.
func (d *Dispatcher) DispatchPick(ctx *Context, name string, pick func(*Context) error) {
	log := d.log.With().
		Str("command", name).
		Str("guild_id", ctx.GuildID).
		Str("user_id", ctx.Member.ID).
		Logger()

	d.contain(ctx, log, d.invoke(pick, ctx, log))
}

// contain maps a handler outcome onto the single user-visible response.
func (d *Dispatcher) contain(ctx *Context, log zerolog.Logger, err error) {
	if err == nil {
		return
	}

	var userErr *UserInputError
	var collabErr *CollaboratorError
	switch {
	case errors.As(err, &userErr):
		log.Debug().Str("reason", userErr.Message).Msg("rejected input")
		d.respondError(ctx, log, userErr.Message)
	case errors.Is(err, ErrPermissionDenied):
		log.Debug().Msg("permission denied")
		d.respondError(ctx, log, msgPermissionDenied)
	case errors.Is(err, ErrNothingPlaying):
		d.respondError(ctx, log, msgNothingPlaying)
	case errors.As(err, &collabErr):
		log.Error().Err(collabErr.Err).Str("op", collabErr.Op).Msg("collaborator failure")
		d.respondError(ctx, log, msgInternal)
	default:
		log.Error().Err(err).Msg("command failed")
		d.respondError(ctx, log, msgInternal)
	}
}

// invoke runs the handler with panic containment so one bad invocation
// cannot take the process down.
func (d *Dispatcher) invoke(run func(*Context) error, ctx *Context, log zerolog.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("command handler panicked")
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return run(ctx)
}

func (d *Dispatcher) recordHistory(ctx *Context, log zerolog.Logger, name string) {
	err := d.store.AppendCommandHistory(ctx.GuildID, storage.CommandHistoryRecord{
		ChannelID: ctx.ChannelID,
		UserID:    ctx.Member.ID,
		Username:  ctx.Member.Username,
		Command:   name,
		Datetime:  time.Now(),
	})
	if err != nil {
		// History is an audit nicety, never a reason to fail the command.
		log.Warn().Err(err).Msg("failed to record command history")
	}
}

func (d *Dispatcher) respondError(ctx *Context, log zerolog.Logger, text string) {
	if err := ctx.Responder.ReplyError(text); err != nil {
		log.Warn().Err(err).Msg("failed to deliver error response")
	}
}
