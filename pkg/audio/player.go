// Package audio plays announcement clips through the system speaker.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"

	"draftreveal/pkg/tracker"
)

const targetSampleRate = beep.SampleRate(48000)

// PlaybackError reports a clip that could not be decoded or played.
type PlaybackError struct {
	Path string
	Op   string // "decode" or "device"
	Err  error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("audio %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }

// Service is the playback contract used by the reveal sequencer.
type Service interface {
	// Play blocks until the clip at path has finished. A missing file is
	// a no-op.
	Play(ctx context.Context, path string) error
	// Stop interrupts the current clip, unblocking Play.
	Stop()
}

// Player implements Service on top of gopxl/beep. Clips are played one at a
// time; the speaker is opened on first use and reused afterwards.
type Player struct {
	mu                 sync.Mutex
	volume             float64
	speakerInitialized bool
	streamer           *effects.Volume
	cancel             context.CancelFunc
	tracker            *tracker.Tracker
}

// NewPlayer creates a Player at the given linear volume (0..1).
func NewPlayer(volume float64, t *tracker.Tracker) *Player {
	return &Player{
		volume:  clampVolume(volume),
		tracker: t,
	}
}

// Play decodes and plays path, returning when the clip ends, when Stop is
// called, or when ctx is cancelled. Cancellation clears the speaker before
// returning ctx.Err().
func (p *Player) Play(ctx context.Context, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		slog.Debug("Audio: clip missing, skipping", "path", path)
		return nil
	}

	streamer, format, err := DecodeMedia(path)
	if err != nil {
		p.tracker.TrackPlaybackFailure(tracker.ComponentAudio)
		return &PlaybackError{Path: path, Op: "decode", Err: err}
	}
	defer streamer.Close()

	playCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.mu.Lock()
	p.stopLocked()
	if err := p.ensureSpeakerInitialized(); err != nil {
		p.mu.Unlock()
		p.tracker.TrackPlaybackFailure(tracker.ComponentAudio)
		return &PlaybackError{Path: path, Op: "device", Err: err}
	}

	resampled := beep.Resample(3, format.SampleRate, targetSampleRate, streamer)
	vol := &effects.Volume{
		Streamer: resampled,
		Base:     2,
		Volume:   volumeToPower(p.volume),
		Silent:   p.volume <= silentThreshold,
	}
	p.streamer = vol
	p.cancel = cancel

	done := make(chan struct{})
	speaker.Play(beep.Seq(vol, beep.Callback(func() {
		close(done)
	})))
	p.mu.Unlock()

	slog.Debug("Audio: playing", "path", path, "length", format.SampleRate.D(streamer.Len()))

	select {
	case <-done:
	case <-playCtx.Done():
		speaker.Clear()
	}

	p.mu.Lock()
	if p.streamer == vol {
		p.streamer = nil
		p.cancel = nil
	}
	p.mu.Unlock()

	return ctx.Err()
}

// Stop interrupts the current clip.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.streamer != nil {
		speaker.Clear()
		p.streamer = nil
	}
}

func (p *Player) ensureSpeakerInitialized() error {
	if p.speakerInitialized {
		return nil
	}
	if err := speaker.Init(targetSampleRate, targetSampleRate.N(time.Second/10)); err != nil {
		slog.Error("Audio: failed to initialize speaker", "error", err)
		return err
	}
	p.speakerInitialized = true
	return nil
}

// Shutdown stops playback and releases the output device.
func (p *Player) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	if p.speakerInitialized {
		speaker.Close()
		p.speakerInitialized = false
	}
}

// SetVolume sets playback volume (0.0 to 1.0), updating a clip in flight.
func (p *Player) SetVolume(vol float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	vol = clampVolume(vol)
	p.volume = vol

	if p.streamer != nil {
		speaker.Lock()
		p.streamer.Volume = volumeToPower(vol)
		p.streamer.Silent = vol <= silentThreshold
		speaker.Unlock()
	}
}

// Volume returns the current volume level.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

var _ Service = (*Player)(nil)
