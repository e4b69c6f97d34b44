package player

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/waves/internal/shared"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

const (
	speakerSampleRate = beep.SampleRate(44100)
	speakerBuffer     = time.Second / 10
	resampleQuality   = 4
	timeUpdateEvery   = 250 * time.Millisecond
	maxPreviewBytes   = 8 << 20
)

var (
	speakerOnce sync.Once
	speakerErr  error
)

func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(speakerSampleRate, speakerSampleRate.N(speakerBuffer))
	})
	return speakerErr
}

// BeepFactory opens preview clips over HTTP and plays them through the beep speaker.
type BeepFactory struct {
	client *http.Client
	logger *log.Logger
}

var _ SourceFactory = (*BeepFactory)(nil)

// NewBeepFactory creates a factory. client defaults to a client with a 15 second timeout.
func NewBeepFactory(client *http.Client, logger *log.Logger) *BeepFactory {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &BeepFactory{client: client, logger: logger}
}

// Open downloads and decodes the clip at url. The clip is held in memory so it can be seeked.
func (f *BeepFactory) Open(ctx context.Context, url string, l Listener) (AudioSource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create preview request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch preview: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: preview returned status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPreviewBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read preview: %w", err)
	}

	streamer, format, err := mp3.Decode(seekableBody{bytes.NewReader(data)})
	if err != nil {
		return nil, fmt.Errorf("failed to decode preview: %w", err)
	}

	f.logger.Debug("preview decoded", "url", url, "rate", format.SampleRate, "samples", streamer.Len())
	return newBeepSource(streamer, format, l), nil
}

type seekableBody struct {
	*bytes.Reader
}

func (seekableBody) Close() error { return nil }

// BeepSource plays one decoded clip.
type BeepSource struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume

	mu       sync.Mutex
	listener Listener
	stopped  bool
	done     chan struct{}
}

func newBeepSource(streamer beep.StreamSeekCloser, format beep.Format, l Listener) *BeepSource {
	s := &BeepSource{
		streamer: streamer,
		format:   format,
		listener: l,
		done:     make(chan struct{}),
	}

	var out beep.Streamer = streamer
	if format.SampleRate != speakerSampleRate {
		out = beep.Resample(resampleQuality, format.SampleRate, speakerSampleRate, streamer)
	}

	s.volume = &effects.Volume{Streamer: out, Base: 2}
	s.ctrl = &beep.Ctrl{Streamer: beep.Seq(s.volume, beep.Callback(s.ended))}
	return s
}

// Start begins playback and the time-update ticker.
func (s *BeepSource) Start() error {
	if err := initSpeaker(); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	speaker.Play(s.ctrl)
	go s.tick()
	return nil
}

func (s *BeepSource) Pause()  { s.setPaused(true) }
func (s *BeepSource) Resume() { s.setPaused(false) }

func (s *BeepSource) setPaused(paused bool) {
	speaker.Lock()
	s.ctrl.Paused = paused
	speaker.Unlock()
}

// Stop silences the clip, detaches the listener and releases the decoder.
func (s *BeepSource) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.listener = Listener{}
	close(s.done)
	s.mu.Unlock()

	speaker.Lock()
	s.ctrl.Streamer = nil
	speaker.Unlock()

	s.streamer.Close()
}

// SetVolume maps percent onto a base-2 gain; zero mutes.
func (s *BeepSource) SetVolume(percent int) {
	speaker.Lock()
	s.volume.Volume = percentToGain(percent)
	s.volume.Silent = percent <= 0
	speaker.Unlock()
}

// Seek moves playback to positionMS.
func (s *BeepSource) Seek(positionMS int) error {
	target := s.format.SampleRate.N(time.Duration(positionMS) * time.Millisecond)

	speaker.Lock()
	defer speaker.Unlock()
	target = min(max(target, 0), s.streamer.Len()-1)
	return s.streamer.Seek(target)
}

func (s *BeepSource) position() (int, int) {
	speaker.Lock()
	pos, length := s.streamer.Position(), s.streamer.Len()
	speaker.Unlock()
	return int(s.format.SampleRate.D(pos).Milliseconds()), int(s.format.SampleRate.D(length).Milliseconds())
}

func (s *BeepSource) tick() {
	ticker := time.NewTicker(timeUpdateEvery)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			pos, length := s.position()
			if fn := s.currentListener().OnTime; fn != nil {
				fn(pos, length)
			}
		}
	}
}

// ended runs on the speaker goroutine with the speaker locked, so the listener is called on its own goroutine.
func (s *BeepSource) ended() {
	fn := s.currentListener().OnEnded
	if fn == nil {
		return
	}
	go fn()
}

func (s *BeepSource) currentListener() Listener {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener
}

func percentToGain(percent int) float64 {
	if percent <= 0 {
		return -10
	}
	return math.Log2(float64(min(percent, 100)) / 100)
}
