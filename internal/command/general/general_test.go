package general

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tunekeeper/internal/command"
	"tunekeeper/internal/command/admin"
	"tunekeeper/internal/gate"
	"tunekeeper/internal/notify"
	"tunekeeper/internal/storage"
)

type fakeResponder struct {
	texts    []string
	payloads []notify.Payload
}

func (f *fakeResponder) Defer() error { return nil }
func (f *fakeResponder) Reply(p notify.Payload) error {
	f.payloads = append(f.payloads, p)
	return nil
}
func (f *fakeResponder) ReplyChoice(p notify.Payload, sel command.Selection) error {
	f.payloads = append(f.payloads, p)
	return nil
}
func (f *fakeResponder) ReplyText(text string) error  { f.texts = append(f.texts, text); return nil }
func (f *fakeResponder) ReplyError(text string) error { f.texts = append(f.texts, text); return nil }

func newCtx(t *testing.T) (*command.Context, *storage.Storage, *fakeResponder) {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	responder := &fakeResponder{}
	return &command.Context{
		Ctx:       context.Background(),
		GuildID:   "g1",
		Member:    gate.Member{ID: "u1", Username: "alice"},
		Store:     store,
		Responder: responder,
	}, store, responder
}

func TestPingReportsLatency(t *testing.T) {
	ctx, _, responder := newCtx(t)

	ping := newPing(func() time.Duration { return 42 * time.Millisecond })
	require.NoError(t, ping.Run(ctx))
	require.Len(t, responder.texts, 1)
	assert.Contains(t, responder.texts[0], "42ms")
}

func TestUptime(t *testing.T) {
	ctx, _, responder := newCtx(t)

	uptime := newUptime(time.Now().Add(-90 * time.Minute))
	require.NoError(t, uptime.Run(ctx))
	require.Len(t, responder.payloads, 1)
	require.NotEmpty(t, responder.payloads[0].Fields)
	assert.Equal(t, "1h 30m", responder.payloads[0].Fields[0].Value)
}

func TestStatsOrdersByPlayCount(t *testing.T) {
	ctx, store, responder := newCtx(t)
	require.NoError(t, store.RecordTrackPlay("g1", "rare", "a"))
	for i := 0; i < 3; i++ {
		require.NoError(t, store.RecordTrackPlay("g1", "hit", "b"))
	}

	stats := newStats()
	args, err := command.ParseArgs(stats.Options(), nil)
	require.NoError(t, err)
	ctx.Args = args

	require.NoError(t, stats.Run(ctx))
	require.Len(t, responder.payloads, 1)
	desc := responder.payloads[0].Description
	assert.Contains(t, desc, "hit")
	assert.Contains(t, desc, "3 plays")
	assert.Less(t, indexOf(desc, "hit"), indexOf(desc, "rare"))
}

func TestStatsEmpty(t *testing.T) {
	ctx, _, _ := newCtx(t)

	stats := newStats()
	args, err := command.ParseArgs(stats.Options(), nil)
	require.NoError(t, err)
	ctx.Args = args

	var userErr *command.UserInputError
	require.ErrorAs(t, stats.Run(ctx), &userErr)
}

func TestHistoryNewestFirst(t *testing.T) {
	ctx, store, responder := newCtx(t)
	require.NoError(t, store.AppendCommandHistory("g1", storage.CommandHistoryRecord{Command: "play", Username: "alice", Datetime: time.Now().Add(-time.Minute)}))
	require.NoError(t, store.AppendCommandHistory("g1", storage.CommandHistoryRecord{Command: "skip", Username: "bob", Datetime: time.Now()}))

	history := newHistory()
	require.NoError(t, history.Run(ctx))
	require.Len(t, responder.payloads, 1)
	desc := responder.payloads[0].Description
	assert.Less(t, indexOf(desc, "/skip"), indexOf(desc, "/play"))
}

func indexOf(s, sub string) int {
	return strings.Index(s, sub)
}

func TestHelpListsCommandsByGroup(t *testing.T) {
	ctx, _, responder := newCtx(t)

	registry := command.NewRegistry()
	registry.Register(admin.All(func() error { return nil })...)
	registry.Register(All(nil, time.Now(), registry)...)

	help := newHelp(registry)
	require.NoError(t, help.Run(ctx))
	require.Len(t, responder.payloads, 1)

	fields := responder.payloads[0].Fields
	var general, all string
	for _, f := range fields {
		all += f.Value
		if f.Name == "General" {
			general = f.Value
		}
	}
	assert.Contains(t, general, "/ping")
	assert.Contains(t, general, "/help")
	assert.NotContains(t, all, "/reload", "owner-only commands stay out of the listing")
}
