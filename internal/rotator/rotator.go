// Package rotator owns the API key pool: round-robin rotation, per-key
// usage accounting against a daily quota ceiling, and the once-per-day
// usage reset.
package rotator

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Batman1190/Spirify/internal/shared"
	"github.com/charmbracelet/log"
)

// softThreshold is the fraction of the quota ceiling at which the rotator
// proactively moves to the next key instead of waiting for a failed request.
const softThreshold = 0.9

// DefaultQuotaLimit is the assumed daily request-cost budget per key.
const DefaultQuotaLimit = 10000

// dateLayout gives calendar-date identity for the daily reset; elapsed time
// between calls is irrelevant.
const dateLayout = "2006-01-02"

// KeyState is the persisted record for a single credential.
type KeyState struct {
	Token string
	Usage int
}

// State is the whole persisted rotator record: ordered keys with usage,
// the active index, the quota ceiling, and the last reset date.
type State struct {
	Keys        []KeyState
	ActiveIndex int
	QuotaLimit  int
	LastReset   string
}

// Store persists rotator state. Writes are whole-record overwrites.
type Store interface {
	Load() (State, error)
	Save(State) error
}

// KeyUsage is a read-only usage report row for one key.
type KeyUsage struct {
	Token   string
	Usage   int
	Active  bool
	Percent float64
}

// Rotator tracks an ordered list of API keys and rotates between them.
//
// Every mutation persists through the Store; a failed save is logged and the
// in-memory state stays authoritative, so the session continues even if the
// data may not survive a restart.
type Rotator struct {
	mu         sync.Mutex
	keys       []string
	usage      map[string]int
	active     int
	quotaLimit int
	lastReset  string

	store  Store
	logger *log.Logger
	now    func() time.Time
}

// Option configures a Rotator.
type Option func(*Rotator)

// WithClock overrides the time source, used by the daily-reset tests.
func WithClock(now func() time.Time) Option {
	return func(r *Rotator) { r.now = now }
}

// WithQuotaLimit overrides the per-key quota ceiling.
func WithQuotaLimit(limit int) Option {
	return func(r *Rotator) {
		if limit > 0 {
			r.quotaLimit = limit
		}
	}
}

// New loads persisted state from the store and applies the daily reset.
func New(store Store, logger *log.Logger, opts ...Option) (*Rotator, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	r := &Rotator{
		usage:      make(map[string]int),
		quotaLimit: DefaultQuotaLimit,
		store:      store,
		logger:     logger,
		now:        time.Now,
	}

	state, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load rotator state: %w", err)
	}

	for _, k := range state.Keys {
		if strings.TrimSpace(k.Token) == "" {
			logger.Warn("skipping malformed credential record")
			continue
		}
		r.keys = append(r.keys, k.Token)
		r.usage[k.Token] = k.Usage
	}
	if state.ActiveIndex >= 0 && state.ActiveIndex < len(r.keys) {
		r.active = state.ActiveIndex
	}
	if state.QuotaLimit > 0 {
		r.quotaLimit = state.QuotaLimit
	}
	r.lastReset = state.LastReset

	for _, opt := range opts {
		opt(r)
	}

	r.ResetIfNewDay()
	return r, nil
}

// AddCredential appends a key to the end of the rotation without changing
// the active index.
func (r *Rotator) AddCredential(token string) error {
	if strings.TrimSpace(token) == "" {
		return shared.ErrInvalidCredential
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, k := range r.keys {
		if k == token {
			return shared.ErrDuplicateCredential
		}
	}

	r.keys = append(r.keys, token)
	r.usage[token] = 0
	r.persist()
	return nil
}

// RemoveCredential removes a key by value. The active index is clamped back
// into range, or reset when the pool becomes empty.
func (r *Rotator) RemoveCredential(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, k := range r.keys {
		if k == token {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	r.keys = append(r.keys[:idx], r.keys[idx+1:]...)
	delete(r.usage, token)

	if idx < r.active {
		r.active--
	}
	if r.active >= len(r.keys) {
		r.active = 0
	}
	r.persist()
}

// CurrentCredential returns the key at the active index.
func (r *Rotator) CurrentCredential() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentLocked()
}

func (r *Rotator) currentLocked() (string, error) {
	if len(r.keys) == 0 {
		return "", shared.ErrNoCredentials
	}
	return r.keys[r.active], nil
}

// Rotate advances the active index by one position, wrapping after the
// last key, and persists the new state.
func (r *Rotator) Rotate() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rotateLocked()
}

func (r *Rotator) rotateLocked() (string, error) {
	if len(r.keys) == 0 {
		return "", shared.ErrNoCredentials
	}
	r.active = (r.active + 1) % len(r.keys)
	r.persist()
	r.logger.Info("rotated API key", "active", r.active+1, "total", len(r.keys))
	return r.keys[r.active], nil
}

// RecordUsage charges cost units to the active key and returns that key.
// Crossing 90% of the quota ceiling rotates to the next key as a side
// effect, so a later request never burns the last of the budget.
func (r *Rotator) RecordUsage(cost int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, err := r.currentLocked()
	if err != nil {
		return "", err
	}

	r.usage[key] += cost
	r.persist()

	if float64(r.usage[key]) >= float64(r.quotaLimit)*softThreshold {
		r.logger.Warn("API key approaching quota limit, rotating", "usage", r.usage[key], "limit", r.quotaLimit)
		if _, err := r.rotateLocked(); err != nil {
			return "", err
		}
	}
	return key, nil
}

// ResetIfNewDay zeroes every usage counter when the stored reset date
// differs from today's calendar date. Calling it again on the same day is a
// no-op.
func (r *Rotator) ResetIfNewDay() {
	r.mu.Lock()
	defer r.mu.Unlock()

	today := r.now().Format(dateLayout)
	if r.lastReset == today {
		return
	}

	for _, k := range r.keys {
		r.usage[k] = 0
	}
	r.lastReset = today
	r.persist()
	r.logger.Info("API usage reset for new day", "date", today)
}

// Len returns the number of keys in the rotation.
func (r *Rotator) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.keys)
}

// QuotaLimit returns the per-key quota ceiling.
func (r *Rotator) QuotaLimit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quotaLimit
}

// Usage reports every key with its usage, active flag, and percentage of
// the quota ceiling consumed.
func (r *Rotator) Usage() []KeyUsage {
	r.mu.Lock()
	defer r.mu.Unlock()

	report := make([]KeyUsage, len(r.keys))
	for i, k := range r.keys {
		report[i] = KeyUsage{
			Token:   k,
			Usage:   r.usage[k],
			Active:  i == r.active,
			Percent: float64(r.usage[k]) / float64(r.quotaLimit) * 100,
		}
	}
	return report
}

// TotalUsage sums usage across all keys.
func (r *Rotator) TotalUsage() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	for _, u := range r.usage {
		total += u
	}
	return total
}

// snapshotLocked builds the persisted record from in-memory state.
func (r *Rotator) snapshotLocked() State {
	keys := make([]KeyState, len(r.keys))
	for i, k := range r.keys {
		keys[i] = KeyState{Token: k, Usage: r.usage[k]}
	}
	return State{
		Keys:        keys,
		ActiveIndex: r.active,
		QuotaLimit:  r.quotaLimit,
		LastReset:   r.lastReset,
	}
}

// persist writes the current state through the store. A failed write keeps
// the in-memory state authoritative and only logs, so callers never see a
// mutation fail because storage did.
func (r *Rotator) persist() {
	if r.store == nil {
		return
	}
	if err := r.store.Save(r.snapshotLocked()); err != nil {
		r.logger.Warn("failed to persist rotator state", "err", fmt.Errorf("%w: %v", shared.ErrStorageWrite, err))
	}
}
