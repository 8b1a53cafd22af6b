package admin

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tunekeeper/internal/command"
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

func newCtx(t *testing.T, member gate.Member) (*command.Context, *storage.Storage, *fakeResponder) {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	responder := &fakeResponder{}
	return &command.Context{
		Ctx:       context.Background(),
		GuildID:   "g1",
		Member:    member,
		Store:     store,
		Responder: responder,
	}, store, responder
}

func args(t *testing.T, cmd command.Command, raw map[string]any) command.Args {
	t.Helper()
	a, err := command.ParseArgs(cmd.Options(), raw)
	require.NoError(t, err)
	return a
}

func manager() gate.Member {
	return gate.Member{ID: "m1", Permissions: discordgo.PermissionManageGuild}
}

func TestSettingsViewOpenToEveryone(t *testing.T) {
	ctx, _, responder := newCtx(t, gate.Member{ID: "u1"})

	settings := newSettings()
	ctx.Args = args(t, settings, nil)
	require.NoError(t, settings.Run(ctx))
	require.Len(t, responder.payloads, 1)
	assert.Equal(t, "Server Settings", responder.payloads[0].Title)
}

func TestSettingsUpdateRequiresManager(t *testing.T) {
	ctx, _, _ := newCtx(t, gate.Member{ID: "u1"})

	settings := newSettings()
	ctx.Args = args(t, settings, map[string]any{"autoplay": false})
	assert.ErrorIs(t, settings.Run(ctx), command.ErrPermissionDenied)
}

func TestSettingsPartialUpdate(t *testing.T) {
	ctx, store, _ := newCtx(t, manager())

	settings := newSettings()
	ctx.Args = args(t, settings, map[string]any{"max_queue_size": 50})
	require.NoError(t, settings.Run(ctx))

	got, err := store.GuildSettings("g1")
	require.NoError(t, err)
	assert.Equal(t, 50, got.MaxQueueSize)
	// Untouched fields keep their defaults.
	assert.True(t, got.AutoPlay)
}

func TestResetRestoresDefaults(t *testing.T) {
	ctx, store, _ := newCtx(t, manager())
	size := 5
	ap := false
	require.NoError(t, store.UpdateGuildSettings("g1", storage.SettingsPatch{MaxQueueSize: &size, AutoPlay: &ap}))

	reset := newReset()
	ctx.Args = args(t, reset, nil)
	require.NoError(t, reset.Run(ctx))

	got, err := store.GuildSettings("g1")
	require.NoError(t, err)
	assert.Equal(t, storage.DefaultGuildSettings(), got)
}

func TestReloadInvokesRefresh(t *testing.T) {
	ctx, _, responder := newCtx(t, gate.Member{ID: "owner"})

	called := 0
	reload := newReload(func() error { called++; return nil })
	ctx.Args = args(t, reload, nil)
	require.NoError(t, reload.Run(ctx))
	assert.Equal(t, 1, called)
	require.Len(t, responder.texts, 1)

	assert.True(t, reload.OwnerOnly())
}

func TestReloadSurfacesRefreshFailure(t *testing.T) {
	ctx, _, _ := newCtx(t, gate.Member{ID: "owner"})

	reload := newReload(func() error { return errors.New("registration failed") })
	ctx.Args = args(t, reload, nil)
	err := reload.Run(ctx)

	var collabErr *command.CollaboratorError
	require.ErrorAs(t, err, &collabErr)
}
