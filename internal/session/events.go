package session

import "tunekeeper/internal/queue"

// EventType enumerates session lifecycle events consumed by the
// notification bridge.
type EventType int

const (
	EventTrackStarted EventType = iota
	EventTrackEnded
	EventTrackErrored
	EventQueueEmptied
)

// Event describes one lifecycle transition, decoupled from the command
// request/response cycle. TextChannelID is where a notification belongs.
type Event struct {
	Type          EventType
	GuildID       string
	TextChannelID string
	Entry         queue.Entry
	Reason        string
	Err           error
	QueueLen      int
	Volume        int
	Loop          LoopMode
}
