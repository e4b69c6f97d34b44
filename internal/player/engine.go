package player

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/waves/internal/models"
	"github.com/desertthunder/waves/internal/services"
	"github.com/desertthunder/waves/internal/shared"
)

// DefaultVolume is the initial preview volume in percent.
const DefaultVolume = 50

// DeviceProvider reports the registered Connect device, or "" when none is ready.
type DeviceProvider interface {
	DeviceID() string
}

// Engine owns the queue and the single live playback session.
//
// Operations are serialized by opMu; source and remote signals only touch state under mu.
type Engine struct {
	factory SourceFactory
	remote  services.Remote
	device  DeviceProvider
	creds   services.Credentials
	logger  *log.Logger

	opMu sync.Mutex

	mu      sync.Mutex
	queue   *Queue
	source  AudioSource
	session Session
	gen     uint64
	volume  int

	updates chan Update
}

// EngineOption customizes an [Engine].
type EngineOption func(*Engine)

// WithVolume sets the initial preview volume.
func WithVolume(percent int) EngineOption {
	return func(e *Engine) { e.volume = clampPercent(percent) }
}

// WithUpdateBuffer sets the capacity of the updates channel.
func WithUpdateBuffer(n int) EngineOption {
	return func(e *Engine) { e.updates = make(chan Update, n) }
}

// NewEngine creates an idle engine. remote and device may be nil, which disables the full path.
//
// A remote call rejected with 401 clears creds, which turns the full path off.
func NewEngine(factory SourceFactory, remote services.Remote, device DeviceProvider, creds services.Credentials, logger *log.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	e := &Engine{
		factory: factory,
		remote:  remote,
		device:  device,
		creds:   creds,
		logger:  logger,
		queue:   NewQueue(nil),
		volume:  DefaultVolume,
		updates: make(chan Update, 32),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.session = Session{Index: -1, Volume: e.volume}
	return e
}

// Updates delivers a snapshot after every transition. Sends never block; a full buffer drops the update.
func (e *Engine) Updates() <-chan Update {
	return e.updates
}

// Session returns the current session snapshot.
func (e *Engine) Session() Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// Queue returns a copy of the queue contents.
func (e *Engine) Queue() []models.Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Tracks()
}

// SetQueue replaces the queue. The live session keeps playing but is no longer selected.
func (e *Engine) SetQueue(tracks []models.Track) {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	e.queue.Set(tracks)
	e.session.Index = -1
	s := e.session
	e.mu.Unlock()

	e.publish(Update{Session: s})
}

// PlayTrack plays queue entry index, replacing any live session.
func (e *Engine) PlayTrack(ctx context.Context, index int) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()
	return e.play(ctx, index)
}

func (e *Engine) play(ctx context.Context, index int) error {
	e.mu.Lock()
	track, err := e.queue.At(index)
	e.mu.Unlock()
	if err != nil {
		return err
	}

	full := e.fullPathAvailable(track)
	remoteLive := e.teardown(ctx, full)

	e.mu.Lock()
	_ = e.queue.Select(index)
	e.gen++
	gen := e.gen
	e.mu.Unlock()

	if full {
		deviceID := e.device.DeviceID()
		err := e.remote.Play(ctx, deviceID, track.URI)
		if err == nil {
			e.begin(gen, track, index, SDKPlaying, PathFull, nil)
			e.logger.Info("playing full track", "track", track.String(), "device", deviceID)
			return nil
		}
		e.logger.Warn("remote play failed, falling back to preview", "track", track.String(), "error", err)
		e.guard(ctx, err)
		if remoteLive {
			e.pauseRemote(ctx, deviceID)
		}
	}

	return e.playPreview(ctx, gen, track, index)
}

func (e *Engine) playPreview(ctx context.Context, gen uint64, track models.Track, index int) error {
	if !track.HasPreview() {
		e.idle(gen, track, index, NoticeNoPreview)
		return fmt.Errorf("%w: %s", shared.ErrNoPreview, track.String())
	}

	src, err := e.factory.Open(ctx, track.Preview(), e.listener(gen))
	if err != nil {
		e.logger.Error("failed to open preview", "track", track.String(), "error", err)
		e.idle(gen, track, index, NoticeCannotPlay)
		return fmt.Errorf("failed to open preview: %w", err)
	}

	e.mu.Lock()
	volume := e.volume
	e.mu.Unlock()
	src.SetVolume(volume)

	if err := src.Start(); err != nil {
		src.Stop()
		e.logger.Error("failed to start preview", "track", track.String(), "error", err)
		e.idle(gen, track, index, NoticeCannotPlay)
		return fmt.Errorf("failed to start preview: %w", err)
	}

	e.begin(gen, track, index, Previewing, PathPreview, src)
	e.logger.Info("playing preview", "track", track.String())
	return nil
}

func (e *Engine) fullPathAvailable(track models.Track) bool {
	if e.remote == nil || e.device == nil || e.creds == nil {
		return false
	}
	return e.creds.Authenticated() && !track.Demo && e.device.DeviceID() != ""
}

// teardown stops the live source and detaches its listeners. A remote session is paused unless the
// next session replaces it on the device; it reports whether the device was left playing.
func (e *Engine) teardown(ctx context.Context, nextFull bool) bool {
	e.mu.Lock()
	src := e.source
	e.source = nil
	prev := e.session
	e.gen++
	e.mu.Unlock()

	if src != nil {
		src.Stop()
	}

	if prev.Mode != SDKPlaying || !prev.Playing {
		return false
	}
	if nextFull {
		return true
	}
	e.pauseRemote(ctx, e.device.DeviceID())
	return false
}

func (e *Engine) pauseRemote(ctx context.Context, deviceID string) {
	if err := e.remote.Pause(ctx, deviceID); err != nil {
		e.logger.Warn("failed to pause remote session", "error", err)
		e.guard(ctx, err)
	}
}

// guard clears the credential when the device rejected it.
func (e *Engine) guard(ctx context.Context, err error) {
	if e.creds == nil || !services.IsUnauthorized(err) {
		return
	}
	e.logger.Warn("credential rejected by remote player, clearing")
	if clearErr := e.creds.Clear(ctx); clearErr != nil {
		e.logger.Error("failed to clear credential", "error", clearErr)
	}
}

func (e *Engine) begin(gen uint64, track models.Track, index int, mode Mode, path Path, src AudioSource) {
	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		if src != nil {
			src.Stop()
		}
		return
	}
	e.source = src
	e.session = Session{
		ID:         shared.GenerateID(),
		Track:      track,
		Index:      index,
		Mode:       mode,
		Path:       path,
		Playing:    true,
		DurationMS: track.Duration * 1000,
		Volume:     e.volume,
	}
	s := e.session
	e.mu.Unlock()

	e.publish(Update{Session: s})
}

func (e *Engine) idle(gen uint64, track models.Track, index int, notice string) {
	e.mu.Lock()
	if gen == e.gen {
		e.session = Session{Track: track, Index: index, Volume: e.volume}
	}
	s := e.session
	e.mu.Unlock()

	e.publish(Update{Session: s, Notice: notice})
}

func (e *Engine) listener(gen uint64) Listener {
	return Listener{
		OnTime: func(positionMS, durationMS int) {
			e.mu.Lock()
			if gen != e.gen || e.session.Mode != Previewing {
				e.mu.Unlock()
				return
			}
			e.session.PositionMS = positionMS
			if durationMS > 0 {
				e.session.DurationMS = durationMS
			}
			s := e.session
			e.mu.Unlock()

			e.publish(Update{Session: s})
		},
		OnEnded: func() {
			e.advance(gen)
		},
	}
}

// advance moves to the next queue entry when session gen finished playing.
func (e *Engine) advance(gen uint64) {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		return
	}
	next, ok := e.queue.Next()
	e.mu.Unlock()

	if !ok {
		e.stop(context.Background())
		return
	}

	e.logger.Debug("track ended, advancing", "next", next)
	if err := e.play(context.Background(), next); err != nil && !errors.Is(err, shared.ErrNoPreview) {
		e.logger.Warn("auto-advance failed", "error", err)
	}
}

// HandleRemoteState applies a Connect state change to the full-path session.
//
// States for other tracks are ignored. A paused state at position zero after playing means the
// track finished, which advances the queue.
func (e *Engine) HandleRemoteState(state services.PlaybackState) {
	e.mu.Lock()
	if e.session.Mode != SDKPlaying || state.TrackURI != e.session.Track.URI {
		e.mu.Unlock()
		return
	}

	finished := e.session.Playing && !state.Playing && state.ProgressMS == 0 && e.session.PositionMS > 0
	e.session.Playing = state.Playing
	e.session.PositionMS = state.ProgressMS
	if state.DurationMS > 0 {
		e.session.DurationMS = state.DurationMS
	}
	gen := e.gen
	s := e.session
	e.mu.Unlock()

	e.publish(Update{Session: s})
	if finished {
		go e.advance(gen)
	}
}

// TogglePlayback pauses or resumes the live session. It is a no-op when idle.
func (e *Engine) TogglePlayback(ctx context.Context) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	s := e.session
	src := e.source
	e.mu.Unlock()

	switch s.Mode {
	case Previewing:
		if s.Playing {
			src.Pause()
		} else {
			src.Resume()
		}
	case SDKPlaying:
		var err error
		if s.Playing {
			err = e.remote.Pause(ctx, e.device.DeviceID())
		} else {
			err = e.remote.Resume(ctx, e.device.DeviceID())
		}
		if err != nil {
			e.guard(ctx, err)
			return fmt.Errorf("failed to toggle remote playback: %w", err)
		}
	default:
		return nil
	}

	e.mu.Lock()
	e.session.Playing = !s.Playing
	s = e.session
	e.mu.Unlock()

	e.publish(Update{Session: s})
	return nil
}

// Next plays the following queue entry, wrapping at the end. No-op on an empty queue.
func (e *Engine) Next(ctx context.Context) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	i, ok := e.queue.Next()
	e.mu.Unlock()
	if !ok {
		return nil
	}
	return e.play(ctx, i)
}

// Previous plays the preceding queue entry, wrapping at the start. No-op on an empty queue.
func (e *Engine) Previous(ctx context.Context) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	i, ok := e.queue.Previous()
	e.mu.Unlock()
	if !ok {
		return nil
	}
	return e.play(ctx, i)
}

// SetVolume sets the preview volume; it is remembered for later previews. The remote device
// volume is not changed.
func (e *Engine) SetVolume(percent int) {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	e.volume = clampPercent(percent)
	e.session.Volume = e.volume
	src := e.source
	volume := e.volume
	s := e.session
	e.mu.Unlock()

	if src != nil {
		src.SetVolume(volume)
	}
	e.publish(Update{Session: s})
}

// Volume returns the preview volume.
func (e *Engine) Volume() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// Seek jumps the preview to the position clicked at offsetX on a bar barWidth wide.
// It is a no-op on the full path and when idle.
func (e *Engine) Seek(offsetX, barWidth float64) error {
	e.opMu.Lock()
	defer e.opMu.Unlock()

	e.mu.Lock()
	s := e.session
	src := e.source
	e.mu.Unlock()

	if s.Mode != Previewing || src == nil {
		return nil
	}

	target := SeekTarget(offsetX, barWidth, s.DurationMS)
	if err := src.Seek(target); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	e.mu.Lock()
	e.session.PositionMS = target
	s = e.session
	e.mu.Unlock()

	e.publish(Update{Session: s})
	return nil
}

// Stop ends the live session and returns to idle.
func (e *Engine) Stop(ctx context.Context) {
	e.opMu.Lock()
	defer e.opMu.Unlock()
	e.stop(ctx)
}

func (e *Engine) stop(ctx context.Context) {
	e.teardown(ctx, false)

	e.mu.Lock()
	e.session = Session{Index: e.queue.Index(), Volume: e.volume}
	s := e.session
	e.mu.Unlock()

	e.publish(Update{Session: s})
}

func (e *Engine) publish(u Update) {
	select {
	case e.updates <- u:
	default:
		e.logger.Debug("update dropped, buffer full")
	}
}

func clampPercent(p int) int {
	return min(max(p, 0), 100)
}
