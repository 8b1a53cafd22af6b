package dj

import (
	"context"
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
	texts []string
}

func (f *fakeResponder) Defer() error                 { return nil }
func (f *fakeResponder) Reply(p notify.Payload) error { return nil }
func (f *fakeResponder) ReplyChoice(p notify.Payload, sel command.Selection) error { return nil }
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

func TestSetBindsRoleForManagers(t *testing.T) {
	manager := gate.Member{ID: "m1", Permissions: discordgo.PermissionManageGuild}
	ctx, store, _ := newCtx(t, manager)

	set := newSet()
	ctx.Args = args(t, set, map[string]any{"role": "r-42"})
	require.NoError(t, set.Run(ctx))

	settings, err := store.GuildSettings("g1")
	require.NoError(t, err)
	assert.Equal(t, "r-42", settings.DJRoleID)
}

func TestSetDeniedForPlainMembers(t *testing.T) {
	ctx, _, _ := newCtx(t, gate.Member{ID: "u1"})

	set := newSet()
	ctx.Args = args(t, set, map[string]any{"role": "r-42"})
	assert.ErrorIs(t, set.Run(ctx), command.ErrPermissionDenied)
}

func TestSetDeniedForDJRoleHolders(t *testing.T) {
	// Holding the DJ role grants playback control, never role management.
	ctx, store, _ := newCtx(t, gate.Member{ID: "u1", Roles: []string{"r-42"}})
	role := "r-42"
	require.NoError(t, store.UpdateGuildSettings("g1", storage.SettingsPatch{DJRoleID: &role}))

	set := newSet()
	ctx.Args = args(t, set, map[string]any{"role": "r-99"})
	assert.ErrorIs(t, set.Run(ctx), command.ErrPermissionDenied)
}

func TestRemoveClearsBinding(t *testing.T) {
	manager := gate.Member{ID: "m1", Permissions: discordgo.PermissionAdministrator}
	ctx, store, _ := newCtx(t, manager)
	role := "r-42"
	require.NoError(t, store.UpdateGuildSettings("g1", storage.SettingsPatch{DJRoleID: &role}))

	remove := newRemove()
	ctx.Args = args(t, remove, nil)
	require.NoError(t, remove.Run(ctx))

	settings, err := store.GuildSettings("g1")
	require.NoError(t, err)
	assert.Empty(t, settings.DJRoleID)
}

func TestRemoveWithoutBinding(t *testing.T) {
	manager := gate.Member{ID: "m1", Permissions: discordgo.PermissionManageGuild}
	ctx, _, _ := newCtx(t, manager)

	remove := newRemove()
	ctx.Args = args(t, remove, nil)
	err := remove.Run(ctx)

	var userErr *command.UserInputError
	require.ErrorAs(t, err, &userErr)
}

func TestShowIsOpenToEveryone(t *testing.T) {
	ctx, store, responder := newCtx(t, gate.Member{ID: "u1"})
	role := "r-42"
	require.NoError(t, store.UpdateGuildSettings("g1", storage.SettingsPatch{DJRoleID: &role}))

	show := newShow()
	ctx.Args = args(t, show, nil)
	require.NoError(t, show.Run(ctx))
	require.Len(t, responder.texts, 1)
	assert.Contains(t, responder.texts[0], "r-42")
}
