package command

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tunekeeper/internal/gate"
	"tunekeeper/internal/notify"
	"tunekeeper/internal/storage"
)

type recordedReply struct {
	Kind string
	Text string
}

type fakeResponder struct {
	replies []recordedReply
}

func (f *fakeResponder) Defer() error { return nil }

func (f *fakeResponder) Reply(p notify.Payload) error {
	f.replies = append(f.replies, recordedReply{Kind: "payload", Text: p.Title})
	return nil
}

func (f *fakeResponder) ReplyChoice(p notify.Payload, sel Selection) error {
	f.replies = append(f.replies, recordedReply{Kind: "choice", Text: p.Title})
	return nil
}

func (f *fakeResponder) ReplyText(text string) error {
	f.replies = append(f.replies, recordedReply{Kind: "text", Text: text})
	return nil
}

func (f *fakeResponder) ReplyError(text string) error {
	f.replies = append(f.replies, recordedReply{Kind: "error", Text: text})
	return nil
}

type stubCommand struct {
	name      string
	cooldown  time.Duration
	ownerOnly bool
	run       func(ctx *Context) error
	calls     int
}

func (c *stubCommand) Name() string            { return c.name }
func (c *stubCommand) Description() string     { return "stub" }
func (c *stubCommand) Group() string           { return "test" }
func (c *stubCommand) Options() []Option       { return nil }
func (c *stubCommand) Cooldown() time.Duration { return c.cooldown }
func (c *stubCommand) OwnerOnly() bool         { return c.ownerOnly }

func (c *stubCommand) Run(ctx *Context) error {
	c.calls++
	if c.run != nil {
		return c.run(ctx)
	}
	return ctx.Responder.ReplyText("done")
}

func newTestStore(t *testing.T) *storage.Storage {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestContext(store *storage.Storage) (*Context, *fakeResponder) {
	responder := &fakeResponder{}
	return &Context{
		Ctx:       context.Background(),
		GuildID:   "g1",
		ChannelID: "c1",
		Member:    gate.Member{ID: "u1", Username: "alice"},
		Store:     store,
		Responder: responder,
	}, responder
}

func newDispatcher(store *storage.Storage, ownerID string, cmds ...Command) *Dispatcher {
	registry := NewRegistry()
	registry.Register(cmds...)
	return NewDispatcher(registry, gate.NewCooldowns(), ownerID, store, zerolog.Nop())
}

func TestDispatchRunsCommandAndRecordsHistory(t *testing.T) {
	store := newTestStore(t)
	cmd := &stubCommand{name: "ping"}
	d := newDispatcher(store, "", cmd)
	ctx, responder := newTestContext(store)

	d.Dispatch(ctx, "ping")

	assert.Equal(t, 1, cmd.calls)
	require.Len(t, responder.replies, 1)
	assert.Equal(t, recordedReply{Kind: "text", Text: "done"}, responder.replies[0])

	history, err := store.FetchCommandHistory("g1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "ping", history[0].Command)
	assert.Equal(t, "alice", history[0].Username)
}

func TestDispatchIgnoresUnknownCommand(t *testing.T) {
	store := newTestStore(t)
	d := newDispatcher(store, "")
	ctx, responder := newTestContext(store)

	d.Dispatch(ctx, "ghost")

	assert.Empty(t, responder.replies)
	history, err := store.FetchCommandHistory("g1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestDispatchCooldownDeniesSecondInvocation(t *testing.T) {
	store := newTestStore(t)
	cmd := &stubCommand{name: "skip", cooldown: 3 * time.Second}
	d := newDispatcher(store, "", cmd)

	ctx, _ := newTestContext(store)
	d.Dispatch(ctx, "skip")

	ctx2, responder := newTestContext(store)
	d.Dispatch(ctx2, "skip")

	assert.Equal(t, 1, cmd.calls)
	require.Len(t, responder.replies, 1)
	assert.Equal(t, "error", responder.replies[0].Kind)
	assert.Contains(t, responder.replies[0].Text, "wait")
	assert.Contains(t, responder.replies[0].Text, "/skip")
}

func TestDispatchOwnerOnlyGate(t *testing.T) {
	store := newTestStore(t)
	cmd := &stubCommand{name: "reload", ownerOnly: true}
	d := newDispatcher(store, "owner-1", cmd)

	ctx, responder := newTestContext(store)
	d.Dispatch(ctx, "reload")
	assert.Equal(t, 0, cmd.calls)
	require.Len(t, responder.replies, 1)
	assert.Equal(t, recordedReply{Kind: "error", Text: msgOwnerOnly}, responder.replies[0])

	owner, ownerResponder := newTestContext(store)
	owner.Member.ID = "owner-1"
	d.Dispatch(owner, "reload")
	assert.Equal(t, 1, cmd.calls)
	require.Len(t, ownerResponder.replies, 1)
	assert.Equal(t, "text", ownerResponder.replies[0].Kind)
}

func TestDispatchUserInputErrorShownVerbatim(t *testing.T) {
	store := newTestStore(t)
	cmd := &stubCommand{name: "seek", run: func(*Context) error {
		return Userf("Seeking is not available for live streams.")
	}}
	d := newDispatcher(store, "", cmd)
	ctx, responder := newTestContext(store)

	d.Dispatch(ctx, "seek")

	require.Len(t, responder.replies, 1)
	assert.Equal(t, recordedReply{Kind: "error", Text: "Seeking is not available for live streams."}, responder.replies[0])
}

func TestDispatchPermissionDeniedMessage(t *testing.T) {
	store := newTestStore(t)
	cmd := &stubCommand{name: "skip", run: func(*Context) error {
		return ErrPermissionDenied
	}}
	d := newDispatcher(store, "", cmd)
	ctx, responder := newTestContext(store)

	d.Dispatch(ctx, "skip")

	require.Len(t, responder.replies, 1)
	assert.Equal(t, recordedReply{Kind: "error", Text: msgPermissionDenied}, responder.replies[0])
}

func TestDispatchNothingPlayingMessage(t *testing.T) {
	store := newTestStore(t)
	cmd := &stubCommand{name: "pause", run: func(*Context) error {
		return ErrNothingPlaying
	}}
	d := newDispatcher(store, "", cmd)
	ctx, responder := newTestContext(store)

	d.Dispatch(ctx, "pause")

	require.Len(t, responder.replies, 1)
	assert.Equal(t, recordedReply{Kind: "error", Text: msgNothingPlaying}, responder.replies[0])
}

func TestDispatchCollaboratorErrorIsGeneric(t *testing.T) {
	store := newTestStore(t)
	cmd := &stubCommand{name: "play", run: func(*Context) error {
		return &CollaboratorError{Op: "resolve query", Err: errors.New("upstream timeout")}
	}}
	d := newDispatcher(store, "", cmd)
	ctx, responder := newTestContext(store)

	d.Dispatch(ctx, "play")

	require.Len(t, responder.replies, 1)
	assert.Equal(t, "error", responder.replies[0].Kind)
	assert.Equal(t, msgInternal, responder.replies[0].Text)
	assert.NotContains(t, responder.replies[0].Text, "upstream timeout")
}

func TestDispatchRecoversFromHandlerPanic(t *testing.T) {
	store := newTestStore(t)
	cmd := &stubCommand{name: "shuffle", run: func(*Context) error {
		panic("index out of range")
	}}
	d := newDispatcher(store, "", cmd)
	ctx, responder := newTestContext(store)

	assert.NotPanics(t, func() { d.Dispatch(ctx, "shuffle") })
	require.Len(t, responder.replies, 1)
	assert.Equal(t, recordedReply{Kind: "error", Text: msgInternal}, responder.replies[0])
}

func TestDispatchPickRunsAndContainsErrors(t *testing.T) {
	store := newTestStore(t)
	d := newDispatcher(store, "")
	ctx, responder := newTestContext(store)

	ran := false
	d.DispatchPick(ctx, "search", func(c *Context) error {
		ran = true
		return c.Responder.ReplyText("picked")
	})
	assert.True(t, ran)
	require.Len(t, responder.replies, 1)
	assert.Equal(t, recordedReply{Kind: "text", Text: "picked"}, responder.replies[0])

	ctx2, responder2 := newTestContext(store)
	d.DispatchPick(ctx2, "search", func(*Context) error {
		return Userf("That choice is no longer available.")
	})
	require.Len(t, responder2.replies, 1)
	assert.Equal(t, recordedReply{Kind: "error", Text: "That choice is no longer available."}, responder2.replies[0])

	ctx3, responder3 := newTestContext(store)
	assert.NotPanics(t, func() {
		d.DispatchPick(ctx3, "search", func(*Context) error {
			panic("nil track")
		})
	})
	require.Len(t, responder3.replies, 1)
	assert.Equal(t, recordedReply{Kind: "error", Text: msgInternal}, responder3.replies[0])
}

func TestParseArgsValidation(t *testing.T) {
	opts := []Option{
		{Name: "query", Type: OptionString, Required: true},
		{Name: "position", Type: OptionInteger, MinValue: Int(1), MaxValue: Int(100)},
		{Name: "mode", Type: OptionString, Choices: []Choice{{Name: "Track", Value: "track"}}},
	}

	_, err := ParseArgs(opts, map[string]any{})
	var userErr *UserInputError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.Message, "query")

	_, err = ParseArgs(opts, map[string]any{"query": "x", "position": float64(0)})
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, userErr.Message, "at least 1")

	_, err = ParseArgs(opts, map[string]any{"query": "x", "mode": "bogus"})
	require.ErrorAs(t, err, &userErr)

	args, err := ParseArgs(opts, map[string]any{"query": "song", "position": int64(5), "mode": "track"})
	require.NoError(t, err)
	assert.Equal(t, "song", args.String("query"))
	assert.Equal(t, 5, args.Int("position"))
	assert.Equal(t, "track", args.String("mode"))
	assert.Equal(t, 7, args.IntOr("missing", 7))
	assert.False(t, args.Has("missing"))
}
