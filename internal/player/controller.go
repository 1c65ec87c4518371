package player

import (
	"context"
	"sync"
	"time"

	"github.com/Batman1190/Spirify/internal/models"
	"github.com/Batman1190/Spirify/internal/shared"
	"github.com/charmbracelet/log"
)

// Controller owns both playback sources and routes each track to the one
// matching its kind, stopping the other first. Callers see a single transport
// surface and a single event stream; they never branch on which backend is
// active.
type Controller struct {
	remote Source
	local  Source
	logger *log.Logger

	mu     sync.Mutex
	active Source
	volPct int

	events chan Event
}

func NewController(remote, local Source, logger *log.Logger) *Controller {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	c := &Controller{
		remote: remote,
		local:  local,
		logger: logger,
		volPct: DefaultVolume,
		events: make(chan Event, eventBuffer),
	}
	go c.forward(remote)
	go c.forward(local)
	return c
}

// forward relays a source's events while that source is the active one.
// Events from a freshly stopped source are dropped so a source switch never
// leaks a stale terminal event.
func (c *Controller) forward(src Source) {
	for ev := range src.Events() {
		c.mu.Lock()
		active := c.active == src
		c.mu.Unlock()
		if !active {
			continue
		}
		select {
		case c.events <- ev:
		default:
			c.logger.Warn("dropping playback event", "state", ev.State)
		}
	}
}

// Load plays a track on the source matching its kind.
func (c *Controller) Load(ctx context.Context, track models.Track) error {
	next := c.remote
	if track.Local {
		next = c.local
	}

	c.mu.Lock()
	if c.active != nil && c.active != next {
		c.active.Stop()
	}
	c.active = next
	volume := c.volPct
	c.mu.Unlock()

	next.SetVolume(volume)
	return next.Load(ctx, track)
}

func (c *Controller) Play() {
	if src := c.current(); src != nil {
		src.Play()
	}
}

func (c *Controller) Pause() {
	if src := c.current(); src != nil {
		src.Pause()
	}
}

func (c *Controller) Seek(fraction float64) error {
	if src := c.current(); src != nil {
		return src.Seek(fraction)
	}
	return nil
}

// SetVolume applies to both sources so the level survives source switches.
func (c *Controller) SetVolume(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	c.mu.Lock()
	c.volPct = percent
	c.mu.Unlock()

	c.remote.SetVolume(percent)
	c.local.SetVolume(percent)
}

func (c *Controller) Volume() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volPct
}

func (c *Controller) Position() time.Duration {
	if src := c.current(); src != nil {
		return src.Position()
	}
	return 0
}

func (c *Controller) Duration() time.Duration {
	if src := c.current(); src != nil {
		return src.Duration()
	}
	return 0
}

func (c *Controller) State() State {
	if src := c.current(); src != nil {
		return src.State()
	}
	return StateIdle
}

func (c *Controller) Events() <-chan Event {
	return c.events
}

func (c *Controller) Stop() {
	if src := c.current(); src != nil {
		src.Stop()
	}
}

func (c *Controller) current() Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}
