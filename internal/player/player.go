// Package player implements the playback controller.
//
// The [Controller] owns what the rest of the client treats as playback truth:
// which song is current and whether it is playing. Audio output goes through a
// [Backend]; backend and stream resolution failures are logged but never block
// a state change, so the UI stays responsive when the platform or the audio
// device misbehaves.
package player

import (
	"context"
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/justmusik/jmk/internal/models"
	"github.com/justmusik/jmk/internal/shared"
)

// Backend is the audio transport the controller drives. Implementations are
// expected to be cheap to call; the controller holds its lock across calls.
type Backend interface {
	// Load prepares the stream at url for playback.
	Load(url string) error
	Play() error
	Pause() error
	// Seek moves the playhead to an absolute position in seconds.
	Seek(seconds float64) error
	// SetVolume takes a level in [0, 1].
	SetVolume(v float64) error
	Close() error
}

// StreamResolver turns a song ID into a playable stream URL.
// [services.SongService] satisfies it.
type StreamResolver interface {
	StreamURL(ctx context.Context, id string) (string, error)
}

// NullBackend is a Backend that only logs. It is the default when no audio
// transport is configured, keeping playback state usable headlessly.
type NullBackend struct {
	logger *log.Logger
}

// NewNullBackend creates a NullBackend logging through the given logger.
func NewNullBackend(logger *log.Logger) *NullBackend {
	return &NullBackend{logger: logger}
}

func (b *NullBackend) Load(url string) error {
	b.logger.Debug("null backend: load", "url", url)
	return nil
}

func (b *NullBackend) Play() error {
	b.logger.Debug("null backend: play")
	return nil
}

func (b *NullBackend) Pause() error {
	b.logger.Debug("null backend: pause")
	return nil
}

func (b *NullBackend) Seek(seconds float64) error {
	b.logger.Debug("null backend: seek", "seconds", seconds)
	return nil
}

func (b *NullBackend) SetVolume(v float64) error {
	b.logger.Debug("null backend: volume", "level", v)
	return nil
}

func (b *NullBackend) Close() error { return nil }

// Controller tracks the current song and play state and drives a Backend.
type Controller struct {
	backend  Backend
	resolver StreamResolver
	logger   *log.Logger

	current *models.Song
	playing bool
}

// NewController creates a Controller over the given backend and stream
// resolver. A nil backend falls back to [NullBackend].
func NewController(backend Backend, resolver StreamResolver, logger *log.Logger) *Controller {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if backend == nil {
		backend = NewNullBackend(logger)
	}
	return &Controller{backend: backend, resolver: resolver, logger: logger}
}

// Select is the single entry point for picking a song. Selecting the current
// song toggles play/pause; selecting a different song switches to it and
// starts playing.
func (c *Controller) Select(ctx context.Context, song models.Song) {
	if c.current != nil && c.current.ID == song.ID {
		c.Toggle()
		return
	}

	c.current = &song
	c.playing = true
	c.logger.Info("now playing", "song", song.Title, "artist", song.Artist)

	if c.resolver == nil {
		return
	}

	url, err := c.resolver.StreamURL(ctx, song.ID)
	if err != nil {
		c.logger.Error("failed to resolve stream url", "song", song.ID, "error", err)
		return
	}
	if err := c.backend.Load(url); err != nil {
		c.logger.Error("backend failed to load stream", "song", song.ID, "error", err)
		return
	}
	if err := c.backend.Play(); err != nil {
		c.logger.Error("backend failed to start playback", "song", song.ID, "error", err)
	}
}

// Play resumes playback of the current song. A no-op with nothing selected.
func (c *Controller) Play() {
	if c.current == nil {
		return
	}
	c.playing = true
	if err := c.backend.Play(); err != nil {
		c.logger.Error("backend failed to play", "error", err)
	}
}

// Pause pauses playback, keeping the current song.
func (c *Controller) Pause() {
	if c.current == nil {
		return
	}
	c.playing = false
	if err := c.backend.Pause(); err != nil {
		c.logger.Error("backend failed to pause", "error", err)
	}
}

// Toggle flips between play and pause for the current song.
func (c *Controller) Toggle() {
	if c.playing {
		c.Pause()
	} else {
		c.Play()
	}
}

// Seek moves the playhead to an absolute position in seconds.
func (c *Controller) Seek(seconds float64) {
	if c.current == nil {
		return
	}
	if err := c.backend.Seek(seconds); err != nil {
		c.logger.Error("backend failed to seek", "seconds", seconds, "error", err)
	}
}

// SetVolume sets the playback volume, clamped into [0, 1].
func (c *Controller) SetVolume(v float64) {
	v = math.Max(0, math.Min(1, v))
	if err := c.backend.SetVolume(v); err != nil {
		c.logger.Error("backend failed to set volume", "level", v, "error", err)
	}
}

// TrackEnded marks playback stopped while keeping the song selected, so the
// UI still shows what just finished.
func (c *Controller) TrackEnded() {
	c.playing = false
}

// Clear drops the current song and stops playback.
func (c *Controller) Clear() {
	if c.current != nil && c.playing {
		c.Pause()
	}
	c.current = nil
	c.playing = false
}

// ClearIf clears playback only when the given song is current. Used after a
// delete so removing an unrelated song leaves playback alone.
func (c *Controller) ClearIf(id string) {
	if c.current != nil && c.current.ID == id {
		c.Clear()
	}
}

// Current returns the selected song, or nil when nothing is selected.
func (c *Controller) Current() *models.Song { return c.current }

// IsPlaying reports whether the current song is playing.
func (c *Controller) IsPlaying() bool { return c.playing }

// Close releases the backend.
func (c *Controller) Close() error {
	return c.backend.Close()
}

// FormatTime renders a duration in seconds as "m:ss" for the player bar.
// Absent or unparseable durations render as "0:00" rather than an error.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || seconds <= 0 {
		return "0:00"
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
