package player

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/Batman1190/Spirify/internal/models"
	"github.com/Batman1190/Spirify/internal/shared"
	"github.com/charmbracelet/log"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
)

const eventBuffer = 16

// openFunc fetches the raw audio body for a track.
type openFunc func(ctx context.Context, track models.Track) (io.ReadCloser, error)

// source is the machinery shared by RemoteSource and LocalSource: it opens a
// body, decodes it, and hands a ctrl/volume chain to the output. Each Load
// bumps a generation counter; completions and failures carrying a stale
// generation or a different track ID are discarded.
type source struct {
	name     string
	open     openFunc
	decode   DecodeFunc
	out      Output
	logger   *log.Logger
	seekable bool

	mu       sync.Mutex
	state    State
	track    models.Track
	gen      int
	cancel   context.CancelFunc
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	streamer beep.StreamSeekCloser
	body     io.Closer
	format   beep.Format
	volPct   int
	events   chan Event
}

func newSource(name string, open openFunc, seekable bool, opts sourceOptions) *source {
	s := &source{
		name:     name,
		open:     open,
		decode:   opts.decode,
		out:      opts.out,
		logger:   opts.logger,
		seekable: seekable,
		volPct:   DefaultVolume,
		events:   make(chan Event, eventBuffer),
	}
	if s.decode == nil {
		s.decode = mp3.Decode
	}
	if s.out == nil {
		s.out = NewSpeakerOutput()
	}
	if s.logger == nil {
		s.logger = shared.NewLogger(nil)
	}
	return s
}

type sourceOptions struct {
	decode DecodeFunc
	out    Output
	logger *log.Logger
	client *http.Client
}

// SourceOption customizes a source's pipeline.
type SourceOption func(*sourceOptions)

func WithOutput(out Output) SourceOption {
	return func(o *sourceOptions) { o.out = out }
}

func WithDecoder(decode DecodeFunc) SourceOption {
	return func(o *sourceOptions) { o.decode = decode }
}

func WithLogger(logger *log.Logger) SourceOption {
	return func(o *sourceOptions) { o.logger = logger }
}

func applyOptions(opts []SourceOption) sourceOptions {
	var o sourceOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Load starts playing the given track, invalidating any load still in flight.
func (s *source) Load(ctx context.Context, track models.Track) error {
	if !track.Valid() {
		return shared.ErrInvalidInput
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.teardownLocked()
	s.track = track
	s.setStateLocked(StateLoading, nil)
	s.mu.Unlock()

	go s.run(loadCtx, gen, track)
	return nil
}

func (s *source) run(ctx context.Context, gen int, track models.Track) {
	body, err := s.open(ctx, track)
	if err != nil {
		s.fail(gen, track, err)
		return
	}

	streamer, format, err := s.decode(body)
	if err != nil {
		body.Close()
		s.fail(gen, track, fmt.Errorf("%w: decode: %w", shared.ErrPlayback, err))
		return
	}

	if err := s.out.Init(format.SampleRate, format.SampleRate.N(speakerBuffer)); err != nil {
		streamer.Close()
		s.fail(gen, track, fmt.Errorf("%w: output: %w", shared.ErrPlayback, err))
		return
	}

	s.mu.Lock()
	if gen != s.gen || track.ID != s.track.ID {
		s.mu.Unlock()
		streamer.Close()
		body.Close()
		s.logger.Debug("discarding stale load", "source", s.name, "track", track.ID)
		return
	}

	s.streamer = streamer
	s.body = body
	s.format = format
	s.volume = &effects.Volume{
		Streamer: streamer,
		Base:     2,
		Volume:   percentToGain(s.volPct),
		Silent:   s.volPct == 0,
	}
	s.ctrl = &beep.Ctrl{Streamer: s.volume}
	ctrl := s.ctrl
	s.setStateLocked(StatePlaying, nil)
	s.mu.Unlock()

	// The callback runs under the output lock, so the state change has to
	// happen outside it.
	s.out.Play(beep.Seq(ctrl, beep.Callback(func() {
		go s.finished(gen)
	})))
	s.logger.Debug("playback started", "source", s.name, "track", track.ID, "title", track.Title)
}

func (s *source) fail(gen int, track models.Track, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || track.ID != s.track.ID {
		return
	}
	s.logger.Error("playback failed", "source", s.name, "track", track.ID, "error", err)
	s.setStateLocked(StateError, err)
}

func (s *source) finished(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return
	}
	if s.state != StatePlaying && s.state != StatePaused {
		return
	}
	s.setStateLocked(StateEnded, nil)
}

// Play resumes paused playback. It is a no-op in any other state.
func (s *source) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePaused || s.ctrl == nil {
		return
	}
	s.out.Lock()
	s.ctrl.Paused = false
	s.out.Unlock()
	s.setStateLocked(StatePlaying, nil)
}

// Pause suspends playback. It is a no-op unless currently playing.
func (s *source) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePlaying || s.ctrl == nil {
		return
	}
	s.out.Lock()
	s.ctrl.Paused = true
	s.out.Unlock()
	s.setStateLocked(StatePaused, nil)
}

// Seek jumps to a fraction of the track. While the duration is unknown, as it
// is for progressive streams, Seek is a no-op.
func (s *source) Seek(fraction float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seekable || s.streamer == nil {
		return nil
	}
	total := s.streamer.Len()
	if total <= 0 {
		return nil
	}

	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	target := int(fraction * float64(total))
	if target >= total {
		target = total - 1
	}

	s.out.Lock()
	err := s.streamer.Seek(target)
	s.out.Unlock()
	if err != nil {
		return fmt.Errorf("%w: seek: %w", shared.ErrPlayback, err)
	}
	return nil
}

// SetVolume sets playback volume on a 0-100 scale. 0 mutes.
func (s *source) SetVolume(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.volPct = percent
	if s.volume == nil {
		return
	}
	s.out.Lock()
	s.volume.Volume = percentToGain(percent)
	s.volume.Silent = percent == 0
	s.out.Unlock()
}

func (s *source) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.streamer == nil {
		return 0
	}
	s.out.Lock()
	pos := s.streamer.Position()
	s.out.Unlock()
	return s.format.SampleRate.D(pos)
}

// Duration returns the track length, or 0 when unknown.
func (s *source) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seekable || s.streamer == nil {
		return 0
	}
	total := s.streamer.Len()
	if total <= 0 {
		return 0
	}
	return s.format.SampleRate.D(total)
}

func (s *source) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *source) Events() <-chan Event {
	return s.events
}

// Stop tears down the active pipeline and returns to Idle. The generation
// bump makes any in-flight load discard itself.
func (s *source) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.teardownLocked()
	if s.state != StateIdle {
		s.setStateLocked(StateIdle, nil)
	}
}

func (s *source) teardownLocked() {
	s.out.Clear()
	if s.streamer != nil {
		s.streamer.Close()
		s.streamer = nil
	}
	if s.body != nil {
		s.body.Close()
		s.body = nil
	}
	s.ctrl = nil
	s.volume = nil
}

func (s *source) setStateLocked(state State, err error) {
	s.state = state
	ev := Event{Track: s.track, State: state, Err: err}
	select {
	case s.events <- ev:
	default:
		s.logger.Warn("dropping playback event", "source", s.name, "state", state)
	}
}
