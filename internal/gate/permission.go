// Package gate holds the two guards applied to playback-mutating commands:
// the DJ permission check and the per-user command cooldown.
package gate

import (
	"slices"

	"github.com/bwmarrin/discordgo"
)

// Member is the acting user as seen by the gates: identity, roles and the
// resolved permission bits for the channel the command came from.
type Member struct {
	ID          string
	Username    string
	Roles       []string
	Permissions int64
}

func (m Member) isAdmin() bool {
	return m.Permissions&discordgo.PermissionAdministrator != 0
}

func (m Member) canManageGuild() bool {
	return m.Permissions&discordgo.PermissionManageGuild != 0
}

func (m Member) hasRole(roleID string) bool {
	return slices.Contains(m.Roles, roleID)
}

// Authorize decides whether the member may mutate playback state. The tiers
// are ordered and exclusive: administrators always pass; when a DJ role is
// configured it is the only non-admin path, even for members holding manage
// permissions; only without a DJ role does "manage guild" grant access.
func Authorize(m Member, djRoleID string) bool {
	if m.isAdmin() {
		return true
	}
	if djRoleID != "" {
		return m.hasRole(djRoleID)
	}
	return m.canManageGuild()
}
