// Package dj manages the guild's DJ role binding. Changing the binding is
// reserved for members who can manage the server.
package dj

import (
	"fmt"
	"time"

	"tunekeeper/internal/command"
	"tunekeeper/internal/gate"
	"tunekeeper/internal/storage"
)

type meta struct {
	name        string
	description string
	options     []command.Option
}

func (m meta) Name() string              { return m.name }
func (m meta) Description() string       { return m.description }
func (m meta) Group() string             { return "dj" }
func (m meta) Cooldown() time.Duration   { return 0 }
func (m meta) OwnerOnly() bool           { return false }
func (m meta) Options() []command.Option { return m.options }

// All returns the DJ role management commands.
func All() []command.Command {
	return []command.Command{newSet(), newRemove(), newShow()}
}

// requireManager gates role binding changes to admins and guild managers,
// regardless of any configured DJ role.
func requireManager(ctx *command.Context) error {
	if !gate.Authorize(ctx.Member, "") {
		return command.ErrPermissionDenied
	}
	return nil
}

type setCommand struct{ meta }

func newSet() *setCommand {
	return &setCommand{meta{
		name:        "djset",
		description: "Bind the DJ role for this server",
		options: []command.Option{
			{Name: "role", Description: "Role that controls playback", Type: command.OptionRole, Required: true},
		},
	}}
}

func (c *setCommand) Run(ctx *command.Context) error {
	if err := requireManager(ctx); err != nil {
		return err
	}

	roleID := ctx.Args.Role("role")
	patch := storage.SettingsPatch{DJRoleID: &roleID}
	if err := ctx.Store.UpdateGuildSettings(ctx.GuildID, patch); err != nil {
		return &command.CollaboratorError{Op: "update guild settings", Err: err}
	}
	return ctx.Responder.ReplyText(fmt.Sprintf("DJ role set to <@&%s>. Only members with this role (or server managers) can control playback now.", roleID))
}

type removeCommand struct{ meta }

func newRemove() *removeCommand {
	return &removeCommand{meta{
		name:        "djremove",
		description: "Remove the DJ role binding",
	}}
}

func (c *removeCommand) Run(ctx *command.Context) error {
	if err := requireManager(ctx); err != nil {
		return err
	}

	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	if settings.DJRoleID == "" {
		return command.Userf("No DJ role is configured for this server.")
	}

	empty := ""
	if err := ctx.Store.UpdateGuildSettings(ctx.GuildID, storage.SettingsPatch{DJRoleID: &empty}); err != nil {
		return &command.CollaboratorError{Op: "update guild settings", Err: err}
	}
	return ctx.Responder.ReplyText("DJ role removed. Members with Manage Server permission control playback now.")
}

type showCommand struct{ meta }

func newShow() *showCommand {
	return &showCommand{meta{
		name:        "djrole",
		description: "Show the configured DJ role",
	}}
}

func (c *showCommand) Run(ctx *command.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	if settings.DJRoleID == "" {
		return ctx.Responder.ReplyText("No DJ role is configured. Members with Manage Server permission control playback.")
	}
	return ctx.Responder.ReplyText(fmt.Sprintf("The DJ role is <@&%s>.", settings.DJRoleID))
}
