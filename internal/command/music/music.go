// Package music implements the playback command surface: enqueueing,
// transport control and queue manipulation.
package music

import (
	"time"

	"tunekeeper/internal/command"
)

// smartShuffleWindow is how many of the most recently played positions the
// shuffle keeps out of the upcoming slots.
const smartShuffleWindow = 5

// meta carries the static declaration shared by every music command.
type meta struct {
	name        string
	description string
	cooldown    time.Duration
	options     []command.Option
}

func (m meta) Name() string              { return m.name }
func (m meta) Description() string       { return m.description }
func (m meta) Group() string             { return "music" }
func (m meta) Cooldown() time.Duration   { return m.cooldown }
func (m meta) OwnerOnly() bool           { return false }
func (m meta) Options() []command.Option { return m.options }

// All returns the music command set in registration order.
func All() []command.Command {
	return []command.Command{
		newPlay(),
		newSearch(),
		newNowPlaying(),
		newQueue(),
		newPause(),
		newResume(),
		newSkip(),
		newStop(),
		newSeek(),
		newVolume(),
		newLoop(),
		newShuffle(),
		newMove(),
		newRemove(),
		newClear(),
	}
}
