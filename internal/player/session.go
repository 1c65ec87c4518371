package player

import (
	"context"
	"time"

	"github.com/Batman1190/Spirify/internal/models"
	"github.com/Batman1190/Spirify/internal/queue"
	"github.com/Batman1190/Spirify/internal/shared"
	"github.com/charmbracelet/log"
)

// errorAdvanceDelay is how long a failed track stays on screen before the
// session moves on to the next one.
const errorAdvanceDelay = 500 * time.Millisecond

// Transport is the playback surface the session drives. *Controller
// implements it.
type Transport interface {
	Load(ctx context.Context, track models.Track) error
	Play()
	Pause()
	Seek(fraction float64) error
	SetVolume(percent int)
	Position() time.Duration
	Duration() time.Duration
	State() State
	Events() <-chan Event
	Stop()
}

// History records tracks as they start playing.
type History interface {
	RecordPlay(ctx context.Context, track models.Track) error
}

// Session binds the queue to the transport: it loads whatever track the
// queue cursor lands on, advances on track end, and skips failed tracks
// after a short delay. UI layers consume its event stream.
type Session struct {
	transport Transport
	queue     *queue.Queue
	history   History
	logger    *log.Logger

	errorDelay time.Duration
	events     chan Event
}

type SessionOption func(*Session)

// WithErrorDelay overrides the advance delay after a playback error.
func WithErrorDelay(d time.Duration) SessionOption {
	return func(s *Session) { s.errorDelay = d }
}

func NewSession(transport Transport, q *queue.Queue, history History, logger *log.Logger, opts ...SessionOption) *Session {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	s := &Session{
		transport:  transport,
		queue:      q,
		history:    history,
		logger:     logger,
		errorDelay: errorAdvanceDelay,
		events:     make(chan Event, eventBuffer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run consumes transport events until the context is cancelled. It must be
// running for automatic track advancement to work.
func (s *Session) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.transport.Stop()
			return ctx.Err()
		case ev := <-s.transport.Events():
			s.emit(ev)
			switch ev.State {
			case StateEnded:
				s.advance(ctx)
			case StateError:
				s.logger.Warn("skipping failed track", "track", ev.Track.ID, "error", ev.Err)
				select {
				case <-ctx.Done():
					s.transport.Stop()
					return ctx.Err()
				case <-time.After(s.errorDelay):
				}
				s.advance(ctx)
			}
		}
	}
}

// Play replaces the queue and starts playback at the given index.
func (s *Session) Play(ctx context.Context, tracks []models.Track, start int) error {
	s.queue.SetQueue(tracks, start)
	track, ok := s.queue.Current()
	if !ok {
		return shared.ErrInvalidInput
	}
	return s.playTrack(ctx, track)
}

// Next skips to the next track per the queue's shuffle and repeat settings.
func (s *Session) Next(ctx context.Context) error {
	return s.advance(ctx)
}

// Previous steps back one track, wrapping at the front of the queue.
func (s *Session) Previous(ctx context.Context) error {
	track, ok := s.queue.Previous()
	if !ok {
		return nil
	}
	return s.playTrack(ctx, track)
}

// Jump plays the queued track at the given index.
func (s *Session) Jump(ctx context.Context, index int) error {
	track, ok := s.queue.Jump(index)
	if !ok {
		return shared.ErrInvalidInput
	}
	return s.playTrack(ctx, track)
}

// TogglePause flips between playing and paused.
func (s *Session) TogglePause() {
	switch s.transport.State() {
	case StatePlaying:
		s.transport.Pause()
	case StatePaused:
		s.transport.Play()
	}
}

func (s *Session) Seek(fraction float64) error { return s.transport.Seek(fraction) }
func (s *Session) SetVolume(percent int)       { s.transport.SetVolume(percent) }
func (s *Session) Position() time.Duration     { return s.transport.Position() }
func (s *Session) Duration() time.Duration     { return s.transport.Duration() }
func (s *Session) State() State                { return s.transport.State() }
func (s *Session) Stop()                       { s.transport.Stop() }

func (s *Session) ToggleShuffle() bool           { return s.queue.ToggleShuffle() }
func (s *Session) CycleRepeat() queue.RepeatMode { return s.queue.CycleRepeat() }
func (s *Session) Queue() *queue.Queue           { return s.queue }

// Events reports track and state changes for the UI.
func (s *Session) Events() <-chan Event {
	return s.events
}

func (s *Session) advance(ctx context.Context) error {
	track, ok := s.queue.Advance()
	if !ok {
		return nil
	}
	return s.playTrack(ctx, track)
}

func (s *Session) playTrack(ctx context.Context, track models.Track) error {
	if err := s.transport.Load(ctx, track); err != nil {
		return err
	}
	if s.history != nil {
		if err := s.history.RecordPlay(ctx, track); err != nil {
			s.logger.Warn("failed to record history", "track", track.ID, "error", err)
		}
	}
	return nil
}

func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}
