package gate

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeAdminAlwaysAllowed(t *testing.T) {
	admin := Member{ID: "u1", Permissions: discordgo.PermissionAdministrator}

	assert.True(t, Authorize(admin, ""))
	assert.True(t, Authorize(admin, "dj-role"))
}

func TestAuthorizeDJRoleIsExhaustive(t *testing.T) {
	withRole := Member{ID: "u1", Roles: []string{"dj-role"}}
	// Holds manage-guild but not the DJ role: must still be denied.
	manager := Member{ID: "u2", Permissions: discordgo.PermissionManageGuild}

	assert.True(t, Authorize(withRole, "dj-role"))
	assert.False(t, Authorize(manager, "dj-role"))
}

func TestAuthorizeManageGuildFallback(t *testing.T) {
	manager := Member{ID: "u1", Permissions: discordgo.PermissionManageGuild}
	plain := Member{ID: "u2"}

	assert.True(t, Authorize(manager, ""))
	assert.False(t, Authorize(plain, ""))
}

func TestCooldownDeniesSecondCall(t *testing.T) {
	c := NewCooldowns()

	allowed, _ := c.CheckAndStamp("play", "u1", 5*time.Second)
	require.True(t, allowed)

	allowed, retry := c.CheckAndStamp("play", "u1", 5*time.Second)
	assert.False(t, allowed)
	assert.GreaterOrEqual(t, retry, 1)
	assert.LessOrEqual(t, retry, 5)
}

func TestCooldownIsPerUserAndPerCommand(t *testing.T) {
	c := NewCooldowns()

	allowed, _ := c.CheckAndStamp("play", "u1", 5*time.Second)
	require.True(t, allowed)

	allowed, _ = c.CheckAndStamp("play", "u2", 5*time.Second)
	assert.True(t, allowed, "another user must not be blocked")

	allowed, _ = c.CheckAndStamp("skip", "u1", 5*time.Second)
	assert.True(t, allowed, "another command must not be blocked")
}

func TestCooldownZeroBypassesWithoutStamping(t *testing.T) {
	c := NewCooldowns()

	for i := 0; i < 3; i++ {
		allowed, retry := c.CheckAndStamp("stats", "u1", 0)
		assert.True(t, allowed)
		assert.Zero(t, retry)
	}

	// The zero-cooldown calls must not have created an entry.
	allowed, _ := c.CheckAndStamp("stats", "u1", 5*time.Second)
	assert.True(t, allowed)
}

func TestCooldownAllowsAfterExpiry(t *testing.T) {
	c := NewCooldowns()

	allowed, _ := c.CheckAndStamp("play", "u1", 20*time.Millisecond)
	require.True(t, allowed)

	time.Sleep(30 * time.Millisecond)

	allowed, _ = c.CheckAndStamp("play", "u1", 20*time.Millisecond)
	assert.True(t, allowed)
}
