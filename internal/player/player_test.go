package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Batman1190/Spirify/internal/models"
	"github.com/Batman1190/Spirify/internal/queue"
	"github.com/Batman1190/Spirify/internal/shared"
	"github.com/gopxl/beep/v2"
)

// fakeStreamer produces a fixed number of silent samples.
type fakeStreamer struct {
	total  int
	pos    int
	closed bool
}

func (f *fakeStreamer) Stream(samples [][2]float64) (int, bool) {
	if f.pos >= f.total {
		return 0, false
	}
	n := len(samples)
	if remaining := f.total - f.pos; n > remaining {
		n = remaining
	}
	for i := 0; i < n; i++ {
		samples[i] = [2]float64{}
	}
	f.pos += n
	return n, true
}

func (f *fakeStreamer) Err() error  { return nil }
func (f *fakeStreamer) Len() int    { return f.total }
func (f *fakeStreamer) Position() int { return f.pos }
func (f *fakeStreamer) Seek(p int) error {
	f.pos = p
	return nil
}
func (f *fakeStreamer) Close() error {
	f.closed = true
	return nil
}

// fakeOutput captures the played streamer; Drain runs it to completion so
// the end-of-track callback fires.
type fakeOutput struct {
	mu       sync.Mutex
	streamer beep.Streamer
	cleared  int
}

func (o *fakeOutput) Init(beep.SampleRate, int) error { return nil }

func (o *fakeOutput) Play(s beep.Streamer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.streamer = s
}

func (o *fakeOutput) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.streamer = nil
	o.cleared++
}

func (o *fakeOutput) Lock()   { o.mu.Lock() }
func (o *fakeOutput) Unlock() { o.mu.Unlock() }

func (o *fakeOutput) Drain() {
	o.mu.Lock()
	s := o.streamer
	o.mu.Unlock()
	if s == nil {
		return
	}
	buf := make([][2]float64, 512)
	for {
		if _, ok := s.Stream(buf); !ok {
			return
		}
	}
}

func fakeDecode(total int) DecodeFunc {
	return func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return &fakeStreamer{total: total}, beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}, nil
	}
}

func stringBody(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}

func waitEvent(t *testing.T, ch <-chan Event, state State) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.State == state {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %v", state)
		}
	}
}

func testOptions(out Output, decode DecodeFunc) sourceOptions {
	return sourceOptions{
		out:    out,
		decode: decode,
		logger: shared.NewLogger(io.Discard),
	}
}

func TestPercentToGain(t *testing.T) {
	if got := percentToGain(100); got != 0 {
		t.Errorf("expected full volume gain 0, got %f", got)
	}
	if got := percentToGain(0); got != minVolumeGain {
		t.Errorf("expected floor gain at 0, got %f", got)
	}
	mid := percentToGain(50)
	if mid >= 0 || mid <= minVolumeGain {
		t.Errorf("expected mid volume between floor and 0, got %f", mid)
	}
	if percentToGain(25) >= mid {
		t.Errorf("expected gain to fall as volume drops")
	}
}

func TestSource(t *testing.T) {
	ctx := context.Background()
	track := models.Track{ID: "v1", Title: "Track One"}

	open := func(context.Context, models.Track) (io.ReadCloser, error) {
		return stringBody("audio"), nil
	}

	t.Run("plays a track through to the end", func(t *testing.T) {
		out := &fakeOutput{}
		src := newSource("test", open, true, testOptions(out, fakeDecode(1024)))

		if err := src.Load(ctx, track); err != nil {
			t.Fatalf("expected load to succeed, got %v", err)
		}

		waitEvent(t, src.Events(), StateLoading)
		ev := waitEvent(t, src.Events(), StatePlaying)
		if ev.Track.ID != "v1" {
			t.Errorf("expected playing event for v1, got %s", ev.Track.ID)
		}

		out.Drain()
		waitEvent(t, src.Events(), StateEnded)
	})

	t.Run("rejects a track without an ID", func(t *testing.T) {
		src := newSource("test", open, true, testOptions(&fakeOutput{}, fakeDecode(8)))
		if err := src.Load(ctx, models.Track{Title: "no id"}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("pause and resume", func(t *testing.T) {
		out := &fakeOutput{}
		src := newSource("test", open, true, testOptions(out, fakeDecode(1024)))

		src.Load(ctx, track)
		waitEvent(t, src.Events(), StatePlaying)

		src.Pause()
		if src.State() != StatePaused {
			t.Errorf("expected paused, got %v", src.State())
		}
		src.Pause() // no-op
		src.Play()
		if src.State() != StatePlaying {
			t.Errorf("expected playing, got %v", src.State())
		}
		src.Play() // no-op
	})

	t.Run("failed open reports a terminal error", func(t *testing.T) {
		failing := func(context.Context, models.Track) (io.ReadCloser, error) {
			return nil, fmt.Errorf("%w: connection refused", shared.ErrPlayback)
		}
		src := newSource("test", failing, false, testOptions(&fakeOutput{}, fakeDecode(8)))

		src.Load(ctx, track)
		ev := waitEvent(t, src.Events(), StateError)
		if !errors.Is(ev.Err, shared.ErrPlayback) {
			t.Errorf("expected ErrPlayback, got %v", ev.Err)
		}
	})

	t.Run("discards a stale load", func(t *testing.T) {
		release := make(chan struct{})
		gated := func(_ context.Context, tr models.Track) (io.ReadCloser, error) {
			if tr.ID == "slow" {
				<-release
			}
			return stringBody("audio"), nil
		}
		out := &fakeOutput{}
		src := newSource("test", gated, true, testOptions(out, fakeDecode(1024)))

		src.Load(ctx, models.Track{ID: "slow", Title: "Slow"})
		src.Load(ctx, models.Track{ID: "fast", Title: "Fast"})
		close(release)

		ev := waitEvent(t, src.Events(), StatePlaying)
		if ev.Track.ID != "fast" {
			t.Fatalf("expected fast track to win, got %s", ev.Track.ID)
		}

		// The slow load's completion must not surface.
		select {
		case ev := <-src.Events():
			if ev.State == StatePlaying && ev.Track.ID == "slow" {
				t.Error("stale load reached the playing state")
			}
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("seek", func(t *testing.T) {
		t.Run("is a no-op when duration is unknown", func(t *testing.T) {
			src := newSource("test", open, false, testOptions(&fakeOutput{}, fakeDecode(1024)))
			src.Load(ctx, track)
			waitEvent(t, src.Events(), StatePlaying)

			if err := src.Seek(0.5); err != nil {
				t.Errorf("expected no-op seek, got %v", err)
			}
			if src.Duration() != 0 {
				t.Errorf("expected unknown duration, got %v", src.Duration())
			}
		})

		t.Run("jumps to a fraction of a seekable track", func(t *testing.T) {
			src := newSource("test", open, true, testOptions(&fakeOutput{}, fakeDecode(44100)))
			src.Load(ctx, track)
			waitEvent(t, src.Events(), StatePlaying)

			if err := src.Seek(0.5); err != nil {
				t.Fatalf("expected seek to succeed, got %v", err)
			}
			if pos := src.Position(); pos != 500*time.Millisecond {
				t.Errorf("expected position 500ms, got %v", pos)
			}
			if d := src.Duration(); d != time.Second {
				t.Errorf("expected duration 1s, got %v", d)
			}
		})
	})

	t.Run("stop returns to idle", func(t *testing.T) {
		out := &fakeOutput{}
		src := newSource("test", open, true, testOptions(out, fakeDecode(1024)))
		src.Load(ctx, track)
		waitEvent(t, src.Events(), StatePlaying)

		src.Stop()
		if src.State() != StateIdle {
			t.Errorf("expected idle after stop, got %v", src.State())
		}
		if out.cleared == 0 {
			t.Error("expected stop to clear the output")
		}
	})
}

// scriptedSource is a Source double for controller tests.
type scriptedSource struct {
	mu     sync.Mutex
	loads  []string
	stops  int
	volume int
	state  State
	events chan Event
}

func newScriptedSource() *scriptedSource {
	return &scriptedSource{events: make(chan Event, eventBuffer)}
}

func (s *scriptedSource) Load(_ context.Context, track models.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads = append(s.loads, track.ID)
	s.state = StatePlaying
	return nil
}

func (s *scriptedSource) Play()  {}
func (s *scriptedSource) Pause() {}
func (s *scriptedSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	s.state = StateIdle
}
func (s *scriptedSource) Seek(float64) error { return nil }
func (s *scriptedSource) SetVolume(p int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = p
}
func (s *scriptedSource) Position() time.Duration { return 0 }
func (s *scriptedSource) Duration() time.Duration { return 0 }
func (s *scriptedSource) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
func (s *scriptedSource) Events() <-chan Event { return s.events }

func (s *scriptedSource) snapshot() ([]string, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.loads...), s.stops, s.volume
}

func TestController(t *testing.T) {
	ctx := context.Background()
	logger := shared.NewLogger(io.Discard)

	t.Run("routes tracks by kind and stops the other source", func(t *testing.T) {
		remote := newScriptedSource()
		local := newScriptedSource()
		c := NewController(remote, local, logger)

		if err := c.Load(ctx, models.Track{ID: "v1", Title: "Remote"}); err != nil {
			t.Fatalf("expected load to succeed, got %v", err)
		}
		if err := c.Load(ctx, models.Track{ID: "f1", Title: "Local", Local: true}); err != nil {
			t.Fatalf("expected load to succeed, got %v", err)
		}

		remoteLoads, remoteStops, _ := remote.snapshot()
		localLoads, _, _ := local.snapshot()

		if len(remoteLoads) != 1 || remoteLoads[0] != "v1" {
			t.Errorf("unexpected remote loads: %v", remoteLoads)
		}
		if len(localLoads) != 1 || localLoads[0] != "f1" {
			t.Errorf("unexpected local loads: %v", localLoads)
		}
		if remoteStops != 1 {
			t.Errorf("expected remote source stopped on switch, got %d stops", remoteStops)
		}
	})

	t.Run("volume survives source switches", func(t *testing.T) {
		remote := newScriptedSource()
		local := newScriptedSource()
		c := NewController(remote, local, logger)

		c.SetVolume(35)
		c.Load(ctx, models.Track{ID: "f1", Title: "Local", Local: true})

		_, _, vol := local.snapshot()
		if vol != 35 {
			t.Errorf("expected volume 35 on local source, got %d", vol)
		}
	})

	t.Run("forwards only the active source's events", func(t *testing.T) {
		remote := newScriptedSource()
		local := newScriptedSource()
		c := NewController(remote, local, logger)

		c.Load(ctx, models.Track{ID: "v1", Title: "Remote"})

		local.events <- Event{Track: models.Track{ID: "f1"}, State: StateEnded}
		remote.events <- Event{Track: models.Track{ID: "v1"}, State: StatePlaying}

		ev := waitEvent(t, c.Events(), StatePlaying)
		if ev.Track.ID != "v1" {
			t.Errorf("expected event from remote source, got %s", ev.Track.ID)
		}
		select {
		case ev := <-c.Events():
			t.Errorf("unexpected forwarded event: %+v", ev)
		case <-time.After(50 * time.Millisecond):
		}
	})
}

// fakeTransport is a Transport double for session tests.
type fakeTransport struct {
	mu     sync.Mutex
	loads  []string
	stops  int
	state  State
	events chan Event
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{events: make(chan Event, eventBuffer)}
}

func (f *fakeTransport) Load(_ context.Context, track models.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, track.ID)
	f.state = StatePlaying
	return nil
}

func (f *fakeTransport) Play() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StatePlaying
}

func (f *fakeTransport) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StatePaused
}

func (f *fakeTransport) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.state = StateIdle
}

func (f *fakeTransport) Seek(float64) error      { return nil }
func (f *fakeTransport) SetVolume(int)           {}
func (f *fakeTransport) Position() time.Duration { return 0 }
func (f *fakeTransport) Duration() time.Duration { return 0 }
func (f *fakeTransport) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}
func (f *fakeTransport) Events() <-chan Event { return f.events }

func (f *fakeTransport) loadedTracks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.loads...)
}

func waitLoads(t *testing.T, ft *fakeTransport, want []string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got := ft.loadedTracks()
		if len(got) == len(want) {
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("unexpected loads: got %v, want %v", got, want)
				}
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out: got %v, want %v", ft.loadedTracks(), want)
}

type recordingHistory struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingHistory) RecordPlay(_ context.Context, track models.Track) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, track.ID)
	return nil
}

func TestSession(t *testing.T) {
	logger := shared.NewLogger(io.Discard)
	tracks := []models.Track{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B"},
		{ID: "c", Title: "C"},
	}

	newRunningSession := func(t *testing.T) (*Session, *fakeTransport, *recordingHistory) {
		t.Helper()
		ft := newFakeTransport()
		hist := &recordingHistory{}
		s := NewSession(ft, queue.New(), hist, logger, WithErrorDelay(time.Millisecond))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			s.Run(ctx)
			close(done)
		}()
		t.Cleanup(func() {
			cancel()
			<-done
		})
		return s, ft, hist
	}

	t.Run("plays and records the starting track", func(t *testing.T) {
		s, ft, hist := newRunningSession(t)

		if err := s.Play(context.Background(), tracks, 0); err != nil {
			t.Fatalf("expected play to succeed, got %v", err)
		}
		waitLoads(t, ft, []string{"a"})

		hist.mu.Lock()
		defer hist.mu.Unlock()
		if len(hist.ids) != 1 || hist.ids[0] != "a" {
			t.Errorf("expected history record for a, got %v", hist.ids)
		}
	})

	t.Run("advances when a track ends", func(t *testing.T) {
		s, ft, _ := newRunningSession(t)
		s.Play(context.Background(), tracks, 0)
		waitLoads(t, ft, []string{"a"})

		ft.events <- Event{Track: tracks[0], State: StateEnded}
		waitLoads(t, ft, []string{"a", "b"})
	})

	t.Run("skips a failed track after the delay", func(t *testing.T) {
		s, ft, _ := newRunningSession(t)
		s.Play(context.Background(), tracks, 1)
		waitLoads(t, ft, []string{"b"})

		ft.events <- Event{Track: tracks[1], State: StateError, Err: shared.ErrPlayback}
		waitLoads(t, ft, []string{"b", "c"})
	})

	t.Run("rejects an empty queue", func(t *testing.T) {
		s, _, _ := newRunningSession(t)
		if err := s.Play(context.Background(), nil, 0); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("forwards transport events to subscribers", func(t *testing.T) {
		s, ft, _ := newRunningSession(t)
		s.Play(context.Background(), tracks, 0)

		ft.events <- Event{Track: tracks[0], State: StatePlaying}
		ev := waitEvent(t, s.Events(), StatePlaying)
		if ev.Track.ID != "a" {
			t.Errorf("expected event for a, got %s", ev.Track.ID)
		}
	})
}
