// Package player implements audio playback. Two sources share one decode and
// output pipeline: RemoteSource streams a video's audio through the stream
// proxy, LocalSource plays an imported file from the library directory. The
// Controller picks the source per track and the Session drives the queue off
// playback events.
package player

import (
	"context"
	"io"
	"math"
	"sync"
	"time"

	"github.com/Batman1190/Spirify/internal/models"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

const (
	speakerBuffer       = time.Millisecond * 250
	volumeCurveExponent = 0.5
	minVolumeGain       = -10.0
	// DefaultVolume is the starting volume when none is configured.
	DefaultVolume = 80
)

// State is the playback lifecycle of a single load attempt.
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StatePaused
	StateEnded
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// Event reports a state transition for a track. Err is set only when State is
// StateError.
type Event struct {
	Track models.Track
	State State
	Err   error
}

// Source is a playback backend. Ended and Error are terminal for a load
// attempt; a new Load restarts the cycle at Loading.
type Source interface {
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

// DecodeFunc turns a raw audio body into a sample stream.
type DecodeFunc func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

// Output is the audio sink. The default implementation drives the beep
// speaker; tests substitute an in-memory one.
type Output interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

// SpeakerOutput plays through the system audio device. The speaker is a
// process-wide singleton, so re-initialization only happens when the sample
// rate changes.
type SpeakerOutput struct {
	mu   sync.Mutex
	rate beep.SampleRate
	init bool
}

func NewSpeakerOutput() *SpeakerOutput {
	return &SpeakerOutput{}
}

func (o *SpeakerOutput) Init(rate beep.SampleRate, bufferSize int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.init && rate == o.rate {
		return nil
	}
	if err := speaker.Init(rate, bufferSize); err != nil {
		return err
	}
	o.rate = rate
	o.init = true
	return nil
}

func (o *SpeakerOutput) Play(s beep.Streamer) { speaker.Play(s) }
func (o *SpeakerOutput) Clear()               { speaker.Clear() }
func (o *SpeakerOutput) Lock()                { speaker.Lock() }
func (o *SpeakerOutput) Unlock()              { speaker.Unlock() }

// percentToGain maps a 0-100 volume to a beep gain exponent. The square root
// curve matches perceived loudness better than a linear map; 0 is handled by
// the Silent flag, not the gain.
func percentToGain(percent int) float64 {
	if percent <= 0 {
		return minVolumeGain
	}
	if percent >= 100 {
		return 0
	}

	adjusted := math.Pow(float64(percent)/100.0, volumeCurveExponent)
	return (1.0 - adjusted) * minVolumeGain
}
