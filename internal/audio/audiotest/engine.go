// Package audiotest provides in-memory Engine and Player implementations
// for tests of the session, dispatcher and notification layers.
package audiotest

import (
	"context"
	"sync"
	"time"

	"tunekeeper/internal/audio"
)

// Engine is an in-memory audio.Engine. Results maps a query string to the
// result Resolve should return; unknown queries yield LoadTypeEmpty.
// ConnectHook, when set before use, runs at the start of CreateConnection
// and may block to simulate a slow voice join.
type Engine struct {
	mu sync.Mutex

	Results       map[string]*audio.ResolveResult
	SearchResults map[string][]audio.TrackInfo
	ResolveErr    error
	SearchErr     error
	ConnectErr    error
	Players       []*Player

	ConnectHook func(guildID string)
}

func NewEngine() *Engine {
	return &Engine{
		Results:       make(map[string]*audio.ResolveResult),
		SearchResults: make(map[string][]audio.TrackInfo),
	}
}

// AddTrack registers a query that resolves to a single track.
func (e *Engine) AddTrack(query string, track audio.TrackInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Results[query] = &audio.ResolveResult{
		LoadType: audio.LoadTypeTrack,
		Tracks:   []audio.TrackInfo{track},
	}
}

func (e *Engine) Resolve(_ context.Context, q audio.Query) (*audio.ResolveResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ResolveErr != nil {
		return nil, e.ResolveErr
	}
	if r, ok := e.Results[q.Query]; ok {
		return r, nil
	}
	return &audio.ResolveResult{LoadType: audio.LoadTypeEmpty}, nil
}

func (e *Engine) Search(_ context.Context, query string, limit int) ([]audio.TrackInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.SearchErr != nil {
		return nil, e.SearchErr
	}
	tracks := e.SearchResults[query]
	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}

func (e *Engine) CreateConnection(_ context.Context, opts audio.ConnectionOptions) (audio.Player, error) {
	if e.ConnectHook != nil {
		e.ConnectHook(opts.GuildID)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ConnectErr != nil {
		return nil, e.ConnectErr
	}
	p := &Player{
		GuildID: opts.GuildID,
		Volume:  opts.Volume,
		events:  make(chan audio.Event, 16),
	}
	e.Players = append(e.Players, p)
	return p, nil
}

// LastPlayer returns the most recently created player, or nil.
func (e *Engine) LastPlayer() *Player {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Players) == 0 {
		return nil
	}
	return e.Players[len(e.Players)-1]
}

// Player records calls and lets tests drive lifecycle events by hand.
type Player struct {
	mu sync.Mutex

	GuildID   string
	Volume    int
	Playing   *audio.TrackInfo
	Paused    bool
	Pos       time.Duration
	Destroyed bool

	PlayCalls  []audio.TrackInfo
	StopCalls  int
	SeekCalls  []time.Duration
	PlayErr    error

	events chan audio.Event
}

func (p *Player) Play(track audio.TrackInfo) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.PlayErr != nil {
		return p.PlayErr
	}
	p.PlayCalls = append(p.PlayCalls, track)
	p.Playing = &track
	p.Paused = false
	return nil
}

func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Paused = true
	return nil
}

func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Paused = false
	return nil
}

func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.StopCalls++
	p.Playing = nil
	return nil
}

func (p *Player) Seek(pos time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SeekCalls = append(p.SeekCalls, pos)
	p.Pos = pos
	return nil
}

func (p *Player) SetVolume(v int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Volume = v
	return nil
}

func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Pos
}

func (p *Player) Events() <-chan audio.Event { return p.events }

func (p *Player) Destroy() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.Destroyed {
		p.Destroyed = true
		close(p.events)
	}
	return nil
}

// Emit pushes a lifecycle event as the real engine would.
func (p *Player) Emit(evt audio.Event) {
	p.mu.Lock()
	destroyed := p.Destroyed
	p.mu.Unlock()
	if destroyed {
		return
	}
	p.events <- evt
}

// EmitTrackEnd is a shorthand for the common case.
func (p *Player) EmitTrackEnd(track audio.TrackInfo, reason string) {
	p.Emit(audio.Event{Type: audio.EventTrackEnd, Track: track, Reason: reason})
}
