package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/desertthunder/waves/internal/models"
	"github.com/desertthunder/waves/internal/services"
	"github.com/desertthunder/waves/internal/shared"
)

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string{}, l.events...)
}

func (l *eventLog) count(event string) int {
	n := 0
	for _, e := range l.all() {
		if e == event {
			n++
		}
	}
	return n
}

type fakeSource struct {
	url      string
	log      *eventLog
	listener Listener
	startErr error
	volume   int
	seekedTo int
	playing  bool
	stopped  bool
}

func (s *fakeSource) Start() error {
	s.log.add("start %s", s.url)
	if s.startErr != nil {
		return s.startErr
	}
	s.playing = true
	return nil
}

func (s *fakeSource) Pause()  { s.log.add("pause %s", s.url); s.playing = false }
func (s *fakeSource) Resume() { s.log.add("resume %s", s.url); s.playing = true }

func (s *fakeSource) Stop() {
	s.log.add("stop %s", s.url)
	s.stopped = true
	s.playing = false
	s.listener = Listener{}
}

func (s *fakeSource) SetVolume(percent int) { s.volume = percent }

func (s *fakeSource) Seek(positionMS int) error {
	s.seekedTo = positionMS
	return nil
}

func (s *fakeSource) ended() {
	if s.listener.OnEnded != nil {
		s.listener.OnEnded()
	}
}

type fakeFactory struct {
	log      *eventLog
	openErr  error
	startErr error

	mu      sync.Mutex
	sources []*fakeSource
}

func (f *fakeFactory) Open(ctx context.Context, url string, l Listener) (AudioSource, error) {
	f.log.add("open %s", url)
	if f.openErr != nil {
		return nil, f.openErr
	}
	src := &fakeSource{url: url, log: f.log, listener: l, startErr: f.startErr}
	f.mu.Lock()
	f.sources = append(f.sources, src)
	f.mu.Unlock()
	return src, nil
}

func (f *fakeFactory) last() *fakeSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sources) == 0 {
		return nil
	}
	return f.sources[len(f.sources)-1]
}

func (f *fakeFactory) live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.sources {
		if s.playing && !s.stopped {
			n++
		}
	}
	return n
}

type fakeRemote struct {
	log        *eventLog
	playErr    error
	pauseErr   error
	devicesErr error
	stateErr   error
	devices    []services.Device
	state      *services.PlaybackState
}

func (r *fakeRemote) Play(ctx context.Context, deviceID, trackURI string) error {
	r.log.add("remote play %s on %s", trackURI, deviceID)
	return r.playErr
}

func (r *fakeRemote) Pause(ctx context.Context, deviceID string) error {
	r.log.add("remote pause %s", deviceID)
	return r.pauseErr
}

func (r *fakeRemote) Resume(ctx context.Context, deviceID string) error {
	r.log.add("remote resume %s", deviceID)
	return nil
}

func (r *fakeRemote) SetVolume(ctx context.Context, deviceID string, percent int) error {
	r.log.add("remote volume %s %d", deviceID, percent)
	return nil
}

func (r *fakeRemote) Devices(ctx context.Context) ([]services.Device, error) {
	if r.devicesErr != nil {
		return nil, r.devicesErr
	}
	return r.devices, nil
}

func (r *fakeRemote) State(ctx context.Context) (*services.PlaybackState, error) {
	if r.stateErr != nil {
		return nil, r.stateErr
	}
	if r.state == nil {
		return &services.PlaybackState{}, nil
	}
	return r.state, nil
}

type staticDevice string

func (d staticDevice) DeviceID() string { return string(d) }

type fakeCreds struct {
	mu      sync.Mutex
	authed  bool
	cleared int
}

func (c *fakeCreds) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authed
}

func (c *fakeCreds) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authed = false
	c.cleared++
	return nil
}

func (c *fakeCreds) Cleared() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cleared
}

func previewTrack(id string) models.Track {
	return models.Track{
		ID:         id,
		URI:        "spotify:track:" + id,
		Title:      "Title " + id,
		Artist:     "Artist",
		Duration:   30,
		PreviewURL: models.StringPtr("https://p.scdn.co/mp3-preview/" + id),
	}
}

func noPreviewTrack(id string) models.Track {
	t := previewTrack(id)
	t.PreviewURL = nil
	return t
}

func newTestEngine(t *testing.T, auth bool, device string, remoteErr error) (*Engine, *fakeFactory, *fakeRemote, *eventLog) {
	t.Helper()
	events := &eventLog{}
	factory := &fakeFactory{log: events}
	remote := &fakeRemote{log: events, playErr: remoteErr}
	engine := NewEngine(factory, remote, staticDevice(device), &fakeCreds{authed: auth}, nil, WithUpdateBuffer(256))
	return engine, factory, remote, events
}

func TestQueue(t *testing.T) {
	tracks := []models.Track{previewTrack("a"), previewTrack("b"), previewTrack("c")}

	t.Run("wraparound", func(t *testing.T) {
		q := NewQueue(tracks)

		if i, ok := q.Next(); !ok || i != 0 {
			t.Errorf("expected next from no selection to be 0, got %d", i)
		}
		if i, ok := q.Previous(); !ok || i != 2 {
			t.Errorf("expected previous from no selection to be 2, got %d", i)
		}

		_ = q.Select(2)
		if i, _ := q.Next(); i != 0 {
			t.Errorf("expected next from last to wrap to 0, got %d", i)
		}

		_ = q.Select(0)
		if i, _ := q.Previous(); i != 2 {
			t.Errorf("expected previous from first to wrap to 2, got %d", i)
		}
	})

	t.Run("indices stay in range", func(t *testing.T) {
		for n := 1; n <= 5; n++ {
			list := make([]models.Track, n)
			q := NewQueue(list)
			for i := range n {
				_ = q.Select(i)
				next, _ := q.Next()
				prev, _ := q.Previous()
				if next < 0 || next >= n || prev < 0 || prev >= n {
					t.Errorf("n=%d i=%d: got next=%d prev=%d", n, i, next, prev)
				}
			}
		}
	})

	t.Run("empty queue", func(t *testing.T) {
		q := NewQueue(nil)
		if _, ok := q.Next(); ok {
			t.Error("expected next on empty queue to be a no-op")
		}
		if _, ok := q.Previous(); ok {
			t.Error("expected previous on empty queue to be a no-op")
		}
		if _, err := q.At(0); !errors.Is(err, shared.ErrEmptyQueue) {
			t.Errorf("expected ErrEmptyQueue, got %v", err)
		}
	})

	t.Run("set clears selection and copies", func(t *testing.T) {
		q := NewQueue(tracks)
		_ = q.Select(1)

		replacement := []models.Track{previewTrack("z")}
		q.Set(replacement)
		replacement[0].Title = "mutated"

		if q.Index() != -1 {
			t.Errorf("expected index -1, got %d", q.Index())
		}
		if got, _ := q.At(0); got.Title != "Title z" {
			t.Errorf("expected queue to hold a copy, got %q", got.Title)
		}
		if _, err := q.At(3); !errors.Is(err, shared.ErrIndexOutRange) {
			t.Errorf("expected ErrIndexOutRange, got %v", err)
		}
	})
}

func TestSeekTarget(t *testing.T) {
	tests := []struct {
		name     string
		offset   float64
		width    float64
		duration int
		want     int
	}{
		{"middle", 50, 100, 30000, 15000},
		{"start", 0, 100, 30000, 0},
		{"end", 100, 100, 30000, 30000},
		{"past end", 150, 100, 30000, 30000},
		{"negative", -10, 100, 30000, 0},
		{"zero width", 10, 0, 30000, 0},
		{"unknown duration", 10, 100, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SeekTarget(tt.offset, tt.width, tt.duration); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestSession(t *testing.T) {
	s := Session{PositionMS: 15000, DurationMS: 30000}
	if s.Progress() != 0.5 {
		t.Errorf("expected 0.5, got %v", s.Progress())
	}
	if (Session{PositionMS: 5}).Progress() != 0 {
		t.Error("expected zero progress without a duration")
	}
	if (Session{PositionMS: 40, DurationMS: 30}).Progress() != 1 {
		t.Error("expected progress capped at 1")
	}
}

func TestEnginePreview(t *testing.T) {
	ctx := context.Background()

	t.Run("prior source stops before next starts", func(t *testing.T) {
		engine, factory, _, events := newTestEngine(t, false, "", nil)
		engine.SetQueue([]models.Track{previewTrack("a"), previewTrack("b")})

		if err := engine.PlayTrack(ctx, 0); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := engine.PlayTrack(ctx, 1); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want := []string{
			"open https://p.scdn.co/mp3-preview/a",
			"start https://p.scdn.co/mp3-preview/a",
			"stop https://p.scdn.co/mp3-preview/a",
			"open https://p.scdn.co/mp3-preview/b",
			"start https://p.scdn.co/mp3-preview/b",
		}
		got := events.all()
		if len(got) != len(want) {
			t.Fatalf("expected events %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("event %d: expected %q, got %q", i, want[i], got[i])
			}
		}

		if factory.live() != 1 {
			t.Errorf("expected exactly one live source, got %d", factory.live())
		}

		s := engine.Session()
		if s.Mode != Previewing || s.Path != PathPreview || s.Index != 1 || !s.Playing {
			t.Errorf("unexpected session: %+v", s)
		}
	})

	t.Run("no preview stays idle with a notice", func(t *testing.T) {
		engine, factory, _, _ := newTestEngine(t, false, "", nil)
		engine.SetQueue([]models.Track{noPreviewTrack("x")})
		<-engine.Updates()

		err := engine.PlayTrack(ctx, 0)
		if !errors.Is(err, shared.ErrNoPreview) {
			t.Fatalf("expected ErrNoPreview, got %v", err)
		}
		if factory.last() != nil {
			t.Error("expected no audio source")
		}
		if engine.Session().Mode != Idle {
			t.Errorf("expected idle, got %v", engine.Session().Mode)
		}

		u := <-engine.Updates()
		if u.Notice != NoticeNoPreview {
			t.Errorf("expected notice %q, got %q", NoticeNoPreview, u.Notice)
		}
		select {
		case extra := <-engine.Updates():
			t.Errorf("expected exactly one update, got extra %+v", extra)
		default:
		}
	})

	t.Run("open failure", func(t *testing.T) {
		engine, factory, _, _ := newTestEngine(t, false, "", nil)
		factory.openErr = errors.New("network down")
		engine.SetQueue([]models.Track{previewTrack("a")})
		<-engine.Updates()

		if err := engine.PlayTrack(ctx, 0); err == nil {
			t.Fatal("expected error")
		}
		if u := <-engine.Updates(); u.Notice != NoticeCannotPlay {
			t.Errorf("expected notice %q, got %q", NoticeCannotPlay, u.Notice)
		}
		if engine.Session().Mode != Idle {
			t.Error("expected idle")
		}
	})

	t.Run("start failure releases the source", func(t *testing.T) {
		engine, factory, _, _ := newTestEngine(t, false, "", nil)
		factory.startErr = errors.New("no audio device")
		engine.SetQueue([]models.Track{previewTrack("a")})

		if err := engine.PlayTrack(ctx, 0); err == nil {
			t.Fatal("expected error")
		}
		if !factory.last().stopped {
			t.Error("expected failed source to be stopped")
		}
		if engine.Session().Mode != Idle {
			t.Error("expected idle")
		}
	})

	t.Run("toggle, volume and seek", func(t *testing.T) {
		engine, factory, _, _ := newTestEngine(t, false, "", nil)
		engine.SetQueue([]models.Track{previewTrack("a")})

		if err := engine.TogglePlayback(ctx); err != nil {
			t.Fatalf("expected idle toggle to be a no-op, got %v", err)
		}

		_ = engine.PlayTrack(ctx, 0)
		src := factory.last()
		if src.volume != DefaultVolume {
			t.Errorf("expected default volume applied, got %d", src.volume)
		}

		_ = engine.TogglePlayback(ctx)
		if src.playing || engine.Session().Playing {
			t.Error("expected paused")
		}
		_ = engine.TogglePlayback(ctx)
		if !src.playing || !engine.Session().Playing {
			t.Error("expected resumed")
		}

		engine.SetVolume(130)
		if src.volume != 100 || engine.Volume() != 100 {
			t.Errorf("expected volume clamped to 100, got %d", src.volume)
		}

		if err := engine.Seek(25, 100); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if src.seekedTo != 7500 || engine.Session().PositionMS != 7500 {
			t.Errorf("expected seek to 7500ms, got %d", src.seekedTo)
		}

		_ = engine.Seek(500, 100)
		if src.seekedTo != 30000 {
			t.Errorf("expected seek clamped to duration, got %d", src.seekedTo)
		}
	})

	t.Run("volume is remembered for later previews", func(t *testing.T) {
		engine, factory, _, _ := newTestEngine(t, false, "", nil)
		engine.SetQueue([]models.Track{previewTrack("a")})

		engine.SetVolume(20)
		_ = engine.PlayTrack(ctx, 0)
		if factory.last().volume != 20 {
			t.Errorf("expected 20, got %d", factory.last().volume)
		}
	})

	t.Run("time updates are normalized and stale ones dropped", func(t *testing.T) {
		engine, factory, _, _ := newTestEngine(t, false, "", nil)
		engine.SetQueue([]models.Track{previewTrack("a"), previewTrack("b")})

		_ = engine.PlayTrack(ctx, 0)
		first := factory.last()
		stale := first.listener

		first.listener.OnTime(1200, 29800)
		if s := engine.Session(); s.PositionMS != 1200 || s.DurationMS != 29800 {
			t.Errorf("unexpected position: %+v", s)
		}

		_ = engine.PlayTrack(ctx, 1)
		stale.OnTime(9999, 29800)
		if engine.Session().PositionMS != 0 {
			t.Errorf("expected stale update to be dropped, got %d", engine.Session().PositionMS)
		}
	})

	t.Run("end advances with wraparound", func(t *testing.T) {
		engine, factory, _, _ := newTestEngine(t, false, "", nil)
		engine.SetQueue([]models.Track{previewTrack("a"), previewTrack("b")})

		_ = engine.PlayTrack(ctx, 1)
		factory.last().ended()

		s := engine.Session()
		if s.Index != 0 || s.Track.ID != "a" || s.Mode != Previewing {
			t.Errorf("expected wrap to first track, got %+v", s)
		}
	})

	t.Run("next and previous", func(t *testing.T) {
		engine, _, _, _ := newTestEngine(t, false, "", nil)

		if err := engine.Next(ctx); err != nil {
			t.Errorf("expected empty queue next to be a no-op, got %v", err)
		}

		engine.SetQueue([]models.Track{previewTrack("a"), previewTrack("b"), previewTrack("c")})
		_ = engine.Previous(ctx)
		if engine.Session().Index != 2 {
			t.Errorf("expected 2, got %d", engine.Session().Index)
		}
		_ = engine.Next(ctx)
		if engine.Session().Index != 0 {
			t.Errorf("expected 0, got %d", engine.Session().Index)
		}
	})

	t.Run("stop returns to idle", func(t *testing.T) {
		engine, factory, _, _ := newTestEngine(t, false, "", nil)
		engine.SetQueue([]models.Track{previewTrack("a")})
		_ = engine.PlayTrack(ctx, 0)

		engine.Stop(ctx)
		if engine.Session().Mode != Idle || !factory.last().stopped {
			t.Error("expected idle with stopped source")
		}
	})

	t.Run("replacing the queue keeps the session", func(t *testing.T) {
		engine, _, _, _ := newTestEngine(t, false, "", nil)
		engine.SetQueue([]models.Track{previewTrack("a")})
		_ = engine.PlayTrack(ctx, 0)

		engine.SetQueue([]models.Track{previewTrack("x"), previewTrack("y")})
		s := engine.Session()
		if s.Mode != Previewing || s.Track.ID != "a" || s.Index != -1 {
			t.Errorf("unexpected session after queue swap: %+v", s)
		}
	})
}

func TestEngineFull(t *testing.T) {
	ctx := context.Background()

	t.Run("one remote play command", func(t *testing.T) {
		engine, factory, _, events := newTestEngine(t, true, "dev1", nil)
		engine.SetQueue([]models.Track{previewTrack("a")})

		if err := engine.PlayTrack(ctx, 0); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n := events.count("remote play spotify:track:a on dev1"); n != 1 {
			t.Errorf("expected one remote play, got %d", n)
		}
		if factory.last() != nil {
			t.Error("expected no local source on the full path")
		}

		s := engine.Session()
		if s.Mode != SDKPlaying || s.Path != PathFull || s.DurationMS != 30000 {
			t.Errorf("unexpected session: %+v", s)
		}
	})

	t.Run("remote failure falls back to one preview", func(t *testing.T) {
		engine, factory, _, events := newTestEngine(t, true, "dev1", errors.New("device gone"))
		engine.SetQueue([]models.Track{previewTrack("a")})

		if err := engine.PlayTrack(ctx, 0); err != nil {
			t.Fatalf("expected fallback to succeed, got %v", err)
		}
		if n := events.count("remote play spotify:track:a on dev1"); n != 1 {
			t.Errorf("expected one remote play, got %d", n)
		}
		if n := events.count("open https://p.scdn.co/mp3-preview/a"); n != 1 {
			t.Errorf("expected one fallback preview, got %d", n)
		}
		if factory.live() != 1 || engine.Session().Mode != Previewing {
			t.Errorf("expected previewing, got %+v", engine.Session())
		}
	})

	t.Run("demo tracks, missing device and no credential use the preview", func(t *testing.T) {
		demo := previewTrack("d")
		demo.Demo = true

		cases := []struct {
			name   string
			auth   bool
			device string
			track  models.Track
		}{
			{"demo", true, "dev1", demo},
			{"no device", true, "", previewTrack("a")},
			{"no credential", false, "dev1", previewTrack("a")},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				engine, _, _, events := newTestEngine(t, tc.auth, tc.device, nil)
				engine.SetQueue([]models.Track{tc.track})
				_ = engine.PlayTrack(ctx, 0)

				for _, e := range events.all() {
					if len(e) > 11 && e[:11] == "remote play" {
						t.Errorf("expected no remote play, got %q", e)
					}
				}
				if engine.Session().Mode != Previewing {
					t.Errorf("expected previewing, got %v", engine.Session().Mode)
				}
			})
		}
	})

	t.Run("switching to a preview pauses the device", func(t *testing.T) {
		demo := previewTrack("d")
		demo.Demo = true

		engine, _, _, events := newTestEngine(t, true, "dev1", nil)
		engine.SetQueue([]models.Track{previewTrack("a"), demo})

		_ = engine.PlayTrack(ctx, 0)
		_ = engine.PlayTrack(ctx, 1)

		got := events.all()
		pauseAt, openAt := -1, -1
		for i, e := range got {
			switch e {
			case "remote pause dev1":
				pauseAt = i
			case "open https://p.scdn.co/mp3-preview/d":
				openAt = i
			}
		}
		if pauseAt < 0 || openAt < 0 || pauseAt > openAt {
			t.Errorf("expected remote pause before preview open, got %v", got)
		}
	})

	t.Run("failed switch between full tracks pauses the device", func(t *testing.T) {
		engine, factory, remote, events := newTestEngine(t, true, "dev1", nil)
		engine.SetQueue([]models.Track{previewTrack("a"), previewTrack("b")})

		_ = engine.PlayTrack(ctx, 0)
		remote.playErr = errors.New("device gone")
		if err := engine.PlayTrack(ctx, 1); err != nil {
			t.Fatalf("expected fallback to succeed, got %v", err)
		}

		got := events.all()
		pauseAt, openAt := -1, -1
		for i, e := range got {
			switch e {
			case "remote pause dev1":
				pauseAt = i
			case "open https://p.scdn.co/mp3-preview/b":
				openAt = i
			}
		}
		if pauseAt < 0 || openAt < 0 || pauseAt > openAt {
			t.Errorf("expected remote pause before preview open, got %v", got)
		}
		if factory.live() != 1 || engine.Session().Mode != Previewing {
			t.Errorf("expected one previewing source, got %+v", engine.Session())
		}
	})

	t.Run("failed switch to a track without preview pauses the device", func(t *testing.T) {
		engine, _, remote, events := newTestEngine(t, true, "dev1", nil)
		engine.SetQueue([]models.Track{previewTrack("a"), noPreviewTrack("b")})

		_ = engine.PlayTrack(ctx, 0)
		remote.playErr = errors.New("device gone")
		if err := engine.PlayTrack(ctx, 1); !errors.Is(err, shared.ErrNoPreview) {
			t.Fatalf("expected ErrNoPreview, got %v", err)
		}

		if n := events.count("remote pause dev1"); n != 1 {
			t.Errorf("expected device paused once, got %v", events.all())
		}
		if engine.Session().Mode != Idle {
			t.Errorf("expected idle, got %v", engine.Session().Mode)
		}
	})

	t.Run("rejected credential is cleared", func(t *testing.T) {
		engine, _, _, events := newTestEngine(t, true, "dev1", shared.ErrTokenExpired)
		engine.SetQueue([]models.Track{previewTrack("a"), previewTrack("b")})
		creds := engine.creds.(*fakeCreds)

		if err := engine.PlayTrack(ctx, 0); err != nil {
			t.Fatalf("expected fallback to succeed, got %v", err)
		}
		if creds.Cleared() != 1 || creds.Authenticated() {
			t.Errorf("expected credential cleared once, got %d", creds.Cleared())
		}
		if engine.Session().Mode != Previewing {
			t.Errorf("expected previewing, got %v", engine.Session().Mode)
		}

		_ = engine.PlayTrack(ctx, 1)
		if n := events.count("remote play spotify:track:b on dev1"); n != 0 {
			t.Error("expected no remote play after the credential was cleared")
		}
	})

	t.Run("rejected credential on toggle is cleared", func(t *testing.T) {
		engine, _, remote, _ := newTestEngine(t, true, "dev1", nil)
		engine.SetQueue([]models.Track{previewTrack("a")})
		creds := engine.creds.(*fakeCreds)
		_ = engine.PlayTrack(ctx, 0)

		remote.pauseErr = shared.ErrTokenExpired
		if err := engine.TogglePlayback(ctx); err == nil {
			t.Error("expected toggle error")
		}
		if creds.Cleared() != 1 {
			t.Errorf("expected credential cleared once, got %d", creds.Cleared())
		}
	})

	t.Run("remote toggle", func(t *testing.T) {
		engine, _, _, events := newTestEngine(t, true, "dev1", nil)
		engine.SetQueue([]models.Track{previewTrack("a")})
		_ = engine.PlayTrack(ctx, 0)

		_ = engine.TogglePlayback(ctx)
		_ = engine.TogglePlayback(ctx)
		if events.count("remote pause dev1") != 1 || events.count("remote resume dev1") != 1 {
			t.Errorf("expected pause then resume, got %v", events.all())
		}
	})

	t.Run("remote state feeds the session and advances at the end", func(t *testing.T) {
		engine, _, _, _ := newTestEngine(t, true, "dev1", nil)
		engine.SetQueue([]models.Track{previewTrack("a"), previewTrack("b")})
		_ = engine.PlayTrack(ctx, 0)

		engine.HandleRemoteState(services.PlaybackState{TrackURI: "spotify:track:other", Playing: true, ProgressMS: 5000})
		if engine.Session().PositionMS != 0 {
			t.Error("expected state for another track to be ignored")
		}

		engine.HandleRemoteState(services.PlaybackState{TrackURI: "spotify:track:a", Playing: true, ProgressMS: 29000, DurationMS: 30500})
		if s := engine.Session(); s.PositionMS != 29000 || s.DurationMS != 30500 {
			t.Errorf("unexpected session: %+v", s)
		}

		engine.HandleRemoteState(services.PlaybackState{TrackURI: "spotify:track:a", Playing: false, ProgressMS: 0})

		waitFor(t, func() bool { return engine.Session().Track.ID == "b" })
	})

	t.Run("seek and volume do not touch the device", func(t *testing.T) {
		engine, _, _, events := newTestEngine(t, true, "dev1", nil)
		engine.SetQueue([]models.Track{previewTrack("a")})
		_ = engine.PlayTrack(ctx, 0)

		engine.SetVolume(10)
		_ = engine.Seek(50, 100)
		for _, e := range events.all() {
			if len(e) > 13 && e[:13] == "remote volume" {
				t.Errorf("expected no remote volume change, got %q", e)
			}
		}
		if engine.Session().PositionMS != 0 {
			t.Error("expected seek to be a no-op on the full path")
		}
	})
}
