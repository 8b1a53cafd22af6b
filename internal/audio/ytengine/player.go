package ytengine

import (
	"encoding/binary"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"layeh.com/gopus"

	"tunekeeper/internal/audio"
)

const (
	frameDuration = 20 * time.Millisecond
	pausePoll     = 100 * time.Millisecond
	sendTimeout   = 2 * time.Second
)

// reasonSeek marks an internal restart; no lifecycle event is emitted.
const reasonSeek = "seek"

// playback is one streaming run of a single track. Interrupting it records
// the reason first, then closes cancel; the run goroutine reads the reason
// only after observing the close.
type playback struct {
	cancel chan struct{}
	reason string
}

type player struct {
	guildID string
	vc      *discordgo.VoiceConnection
	events  chan audio.Event
	log     zerolog.Logger

	mu        sync.Mutex
	current   *playback
	track     audio.TrackInfo
	position  time.Duration
	volume    int
	paused    bool
	destroyed bool
}

func newPlayer(guildID string, vc *discordgo.VoiceConnection, volume int, logger zerolog.Logger) *player {
	return &player{
		guildID: guildID,
		vc:      vc,
		events:  make(chan audio.Event, 16),
		volume:  volume,
		log:     logger.With().Str("guild_id", guildID).Logger(),
	}
}

func (p *player) Play(track audio.TrackInfo) error {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return audio.ErrNotConnected
	}
	p.interruptLocked(audio.ReasonReplaced)
	pb := &playback{cancel: make(chan struct{})}
	p.current = pb
	p.track = track
	p.position = 0
	p.paused = false
	p.mu.Unlock()

	go p.run(pb, track, 0, true)
	return nil
}

func (p *player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return audio.ErrNotConnected
	}
	p.paused = true
	return nil
}

func (p *player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return audio.ErrNotConnected
	}
	p.paused = false
	return nil
}

func (p *player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return audio.ErrNotConnected
	}
	p.interruptLocked(audio.ReasonStopped)
	p.position = 0
	return nil
}

// Seek restarts the stream at the target position. The running track keeps
// its identity, so no start or end events fire.
func (p *player) Seek(pos time.Duration) error {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return audio.ErrNotConnected
	}
	if p.current == nil {
		p.mu.Unlock()
		return errors.New("no active track to seek in")
	}
	p.interruptLocked(reasonSeek)
	pb := &playback{cancel: make(chan struct{})}
	p.current = pb
	p.position = pos
	track := p.track
	p.mu.Unlock()

	go p.run(pb, track, pos, false)
	return nil
}

func (p *player) SetVolume(v int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return audio.ErrNotConnected
	}
	p.volume = v
	return nil
}

func (p *player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

func (p *player) Events() <-chan audio.Event { return p.events }

// Destroy interrupts playback without events, closes the event stream and
// leaves the voice channel.
func (p *player) Destroy() error {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return nil
	}
	p.interruptLocked("")
	p.destroyed = true
	close(p.events)
	p.mu.Unlock()

	return p.vc.Disconnect()
}

// interruptLocked cancels the active playback run. An empty reason
// suppresses the track-end event. Caller holds p.mu.
func (p *player) interruptLocked(reason string) {
	if p.current == nil {
		return
	}
	p.current.reason = reason
	close(p.current.cancel)
	p.current = nil
}

// emit delivers an event unless the player is destroyed. Non-blocking: a
// stalled consumer drops events instead of stalling the audio path.
func (p *player) emit(evt audio.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return
	}
	select {
	case p.events <- evt:
	default:
		p.log.Warn().Str("track", evt.Track.Title).Msg("event buffer full, dropping event")
	}
}

// finish clears the active playback if pb still owns it, then emits the
// terminal event. A pb that was already interrupted leaves state alone.
func (p *player) finish(pb *playback, evt audio.Event) {
	p.mu.Lock()
	if p.current == pb {
		p.current = nil
		p.position = 0
	}
	p.mu.Unlock()
	p.emit(evt)
}

func (p *player) snapshot() (volume int, paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume, p.paused
}

func (p *player) advance(pb *playback, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == pb {
		p.position += d
	}
}

// run streams one track: decode PCM frames, scale for volume, encode opus,
// send to the voice connection. It exits on cancellation, stream end or
// error, emitting the matching lifecycle event.
func (p *player) run(pb *playback, track audio.TrackInfo, startAt time.Duration, emitStart bool) {
	stream, cleanup, err := openStream(track.URI, startAt)
	if err != nil {
		p.log.Error().Err(err).Str("track", track.Title).Msg("failed to open stream")
		p.finish(pb, audio.Event{Type: audio.EventTrackError, Track: track, Err: err})
		return
	}
	defer stream.Close()
	if cleanup != nil {
		defer cleanup()
	}

	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		p.finish(pb, audio.Event{Type: audio.EventTrackError, Track: track, Err: err})
		return
	}

	if emitStart {
		p.emit(audio.Event{Type: audio.EventTrackStart, Track: track})
	}

	_ = p.vc.Speaking(true)
	defer func() { _ = p.vc.Speaking(false) }()

	pcmBuf := make([]byte, frameSize*channels*2)
	intBuf := make([]int16, frameSize*channels)

	for {
		select {
		case <-pb.cancel:
			if pb.reason != "" && pb.reason != reasonSeek {
				p.emit(audio.Event{Type: audio.EventTrackEnd, Track: track, Reason: pb.reason})
			}
			return
		default:
		}

		volume, paused := p.snapshot()
		if paused {
			time.Sleep(pausePoll)
			continue
		}

		if _, err := io.ReadFull(stream, pcmBuf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				p.finish(pb, audio.Event{Type: audio.EventTrackEnd, Track: track, Reason: audio.ReasonFinished})
			} else {
				p.finish(pb, audio.Event{Type: audio.EventTrackError, Track: track, Err: err})
			}
			return
		}

		scale := float64(volume) / 100
		for i := range intBuf {
			sample := int16(binary.LittleEndian.Uint16(pcmBuf[i*2 : i*2+2]))
			intBuf[i] = clampSample(float64(sample) * scale)
		}

		opusFrame, err := encoder.Encode(intBuf, frameSize, len(pcmBuf))
		if err != nil {
			p.finish(pb, audio.Event{Type: audio.EventTrackError, Track: track, Err: err})
			return
		}

		select {
		case p.vc.OpusSend <- opusFrame:
			p.advance(pb, frameDuration)
		case <-pb.cancel:
			if pb.reason != "" && pb.reason != reasonSeek {
				p.emit(audio.Event{Type: audio.EventTrackEnd, Track: track, Reason: pb.reason})
			}
			return
		case <-time.After(sendTimeout):
			p.finish(pb, audio.Event{Type: audio.EventTrackError, Track: track, Err: errors.New("voice send timed out")})
			return
		}
	}
}

func clampSample(v float64) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
