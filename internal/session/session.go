// Package session owns the per-guild playback state: the mutable session
// (queue, current track, volume, loop mode) and the registry that guarantees
// at most one session per guild.
package session

import (
	"errors"
	"sync"
	"time"

	"tunekeeper/internal/audio"
	"tunekeeper/internal/queue"
)

// State is the playback state of a session.
type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// LoopMode is the playback repetition setting.
type LoopMode int

const (
	LoopNone LoopMode = iota
	LoopTrack
	LoopQueue
)

func (m LoopMode) String() string {
	switch m {
	case LoopTrack:
		return "Track"
	case LoopQueue:
		return "Queue"
	default:
		return "None"
	}
}

// ParseLoopMode maps the user-facing option value to a LoopMode.
func ParseLoopMode(s string) (LoopMode, bool) {
	switch s {
	case "none":
		return LoopNone, true
	case "track":
		return LoopTrack, true
	case "queue":
		return LoopQueue, true
	}
	return LoopNone, false
}

var (
	ErrNotPlaying    = errors.New("no track is currently playing")
	ErrNotPaused     = errors.New("playback is not paused")
	ErrNothingQueued = errors.New("no tracks in queue")
	ErrInvalidVolume = errors.New("volume must be between 0 and 1000")
	ErrLiveTrack     = errors.New("cannot seek in a live stream")
)

const (
	minVolume = 0
	maxVolume = 1000
)

// Session is the live playback state for one guild. It is created and
// destroyed only by the Registry; handlers borrow it for a single command
// invocation and must not cache it.
type Session struct {
	guildID string

	mu             sync.Mutex
	voiceChannelID string
	textChannelID  string
	player         audio.Player
	queue          *queue.Queue
	current        *queue.Entry
	state          State
	volume         int
	loop           LoopMode
	createdAt      time.Time

	events chan<- Event
}

func (s *Session) GuildID() string { return s.guildID }

func (s *Session) TextChannelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.textChannelID
}

func (s *Session) VoiceChannelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voiceChannelID
}

// UpdateChannels repoints the session at the caller's channels. Invoked on
// each /play so notifications follow the most recent request.
func (s *Session) UpdateChannels(voiceChannelID, textChannelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if voiceChannelID != "" {
		s.voiceChannelID = voiceChannelID
	}
	if textChannelID != "" {
		s.textChannelID = textChannelID
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Volume() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

func (s *Session) Loop() LoopMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loop
}

func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Current returns the actively playing entry, if any.
func (s *Session) Current() (queue.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return queue.Entry{}, false
	}
	return *s.current, true
}

// Queue exposes the session's queue. The queue is internally locked, so
// handlers may use it directly.
func (s *Session) Queue() *queue.Queue { return s.queue }

// Position reports the playback position of the current track.
func (s *Session) Position() time.Duration {
	return s.player.Position()
}

// Enqueue appends entries and returns the new queue length.
func (s *Session) Enqueue(entries []queue.Entry) int {
	return s.queue.AddAll(entries)
}

// EnsurePlaying starts playback when the session is stopped and tracks are
// queued. A playing or paused session is left alone.
func (s *Session) EnsurePlaying() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateStopped {
		return nil
	}
	return s.advanceLocked(false)
}

// advanceLocked promotes the next entry and starts it. replayCurrent keeps
// the current entry (loop-track behavior). Caller holds s.mu.
func (s *Session) advanceLocked(replayCurrent bool) error {
	if replayCurrent && s.current != nil {
		if err := s.player.Play(s.current.Track); err != nil {
			return err
		}
		s.state = StatePlaying
		return nil
	}

	if s.loop == LoopQueue && s.current != nil {
		s.queue.Add(*s.current)
	}

	next, ok := s.queue.Next()
	if !ok {
		s.current = nil
		s.state = StateStopped
		s.publishLocked(Event{Type: EventQueueEmptied})
		return ErrNothingQueued
	}

	if err := s.player.Play(next.Track); err != nil {
		s.current = nil
		s.state = StateStopped
		return err
	}
	s.current = &next
	s.state = StatePlaying
	return nil
}

// Skip drops the current track plus amount-1 queued tracks and starts
// whatever follows. It returns the skipped entries in order.
func (s *Session) Skip(amount int) ([]queue.Entry, error) {
	if amount < 1 {
		amount = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, ErrNotPlaying
	}

	skipped := []queue.Entry{*s.current}
	for i := 1; i < amount; i++ {
		e, ok := s.queue.Next()
		if !ok {
			break
		}
		skipped = append(skipped, e)
	}

	// Loop-track must not resurrect a skipped track.
	err := s.advanceLocked(false)
	if errors.Is(err, ErrNothingQueued) {
		_ = s.player.Stop()
		return skipped, nil
	}
	if err != nil {
		return skipped, err
	}
	return skipped, nil
}

// Pause suspends playback.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return ErrNotPlaying
	}
	if err := s.player.Pause(); err != nil {
		return err
	}
	s.state = StatePaused
	return nil
}

// Resume continues paused playback.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePaused {
		return ErrNotPaused
	}
	if err := s.player.Resume(); err != nil {
		return err
	}
	s.state = StatePlaying
	return nil
}

// Stop halts playback and clears the queue. It returns the number of queued
// tracks dropped. The session itself stays registered; callers that want it
// gone use Registry.Destroy.
func (s *Session) Stop() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := s.queue.Clear()
	s.current = nil
	s.state = StateStopped
	if err := s.player.Stop(); err != nil {
		return dropped, err
	}
	return dropped, nil
}

// Seek jumps to a position within the current track.
func (s *Session) Seek(pos time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ErrNotPlaying
	}
	if s.current.Track.IsLive {
		return ErrLiveTrack
	}
	return s.player.Seek(pos)
}

// SetVolume adjusts playback volume within [0, 1000].
func (s *Session) SetVolume(v int) error {
	if v < minVolume || v > maxVolume {
		return ErrInvalidVolume
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.player.SetVolume(v); err != nil {
		return err
	}
	s.volume = v
	return nil
}

// SetLoop switches the repetition mode.
func (s *Session) SetLoop(m LoopMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loop = m
}

// watch consumes player lifecycle events until the player is destroyed.
// Runs on its own goroutine, one per session.
func (s *Session) watch() {
	for evt := range s.player.Events() {
		switch evt.Type {
		case audio.EventTrackStart:
			s.mu.Lock()
			s.state = StatePlaying
			var entry queue.Entry
			if s.current != nil {
				entry = *s.current
			}
			s.publishLocked(Event{Type: EventTrackStarted, Entry: entry})
			s.mu.Unlock()

		case audio.EventTrackEnd:
			s.mu.Lock()
			var entry queue.Entry
			if s.current != nil {
				entry = *s.current
			}
			s.publishLocked(Event{Type: EventTrackEnded, Entry: entry, Reason: evt.Reason})
			// Only a naturally finished track advances the queue; stops and
			// replacements were already handled by their initiator.
			if evt.Reason == audio.ReasonFinished {
				_ = s.advanceLocked(s.loop == LoopTrack)
			}
			s.mu.Unlock()

		case audio.EventTrackError:
			s.mu.Lock()
			var entry queue.Entry
			if s.current != nil {
				entry = *s.current
			}
			s.publishLocked(Event{Type: EventTrackErrored, Entry: entry, Err: evt.Err})
			// Skip the broken track; never replay it even in loop-track mode.
			_ = s.advanceLocked(false)
			s.mu.Unlock()
		}
	}
}

// publishLocked sends a lifecycle event to the registry sink without ever
// blocking the playback path. Caller holds s.mu.
func (s *Session) publishLocked(evt Event) {
	evt.GuildID = s.guildID
	evt.TextChannelID = s.textChannelID
	evt.QueueLen = s.queue.Len()
	evt.Volume = s.volume
	evt.Loop = s.loop
	select {
	case s.events <- evt:
	default:
	}
}

// close tears the session down. Called only by the registry.
func (s *Session) close() {
	s.mu.Lock()
	s.queue.Clear()
	s.current = nil
	s.state = StateStopped
	player := s.player
	s.mu.Unlock()
	_ = player.Destroy()
}
