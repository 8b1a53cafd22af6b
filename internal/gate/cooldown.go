package gate

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type cooldownKey struct {
	command string
	user    string
}

// Cooldowns rate-limits commands per (command, user) with a
// token-bucket-of-one. State is process-scoped and resets on restart.
type Cooldowns struct {
	mu       sync.Mutex
	limiters map[cooldownKey]*rate.Limiter
}

func NewCooldowns() *Cooldowns {
	return &Cooldowns{limiters: make(map[cooldownKey]*rate.Limiter)}
}

// CheckAndStamp atomically checks the cooldown and, when allowed, consumes
// it. A zero or negative cooldown always allows and creates no entry, so a
// later call with a real cooldown starts fresh. On denial, retryAfterSeconds
// is the ceil of the remaining wait and is never below 1.
func (c *Cooldowns) CheckAndStamp(command, userID string, cooldown time.Duration) (allowed bool, retryAfterSeconds int) {
	if cooldown <= 0 {
		return true, 0
	}

	key := cooldownKey{command: command, user: userID}

	c.mu.Lock()
	lim, ok := c.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(cooldown), 1)
		c.limiters[key] = lim
	}
	c.mu.Unlock()

	r := lim.Reserve()
	if delay := r.Delay(); delay > 0 {
		r.Cancel()
		secs := int(math.Ceil(delay.Seconds()))
		if secs < 1 {
			secs = 1
		}
		return false, secs
	}
	return true, 0
}
