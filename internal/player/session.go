package player

import "github.com/desertthunder/waves/internal/models"

// Mode is the engine state.
type Mode int

const (
	Idle Mode = iota
	Previewing
	SDKPlaying
)

func (m Mode) String() string {
	switch m {
	case Previewing:
		return "previewing"
	case SDKPlaying:
		return "sdk"
	default:
		return "idle"
	}
}

// Path names the playback route of a session.
type Path string

const (
	PathNone    Path = ""
	PathPreview Path = "preview"
	PathFull    Path = "full"
)

// Session is a snapshot of the live playback session.
type Session struct {
	ID         string
	Track      models.Track
	Index      int
	Mode       Mode
	Path       Path
	Playing    bool
	PositionMS int
	DurationMS int
	Volume     int
}

// Active reports whether a track is loaded on either path.
func (s Session) Active() bool {
	return s.Mode != Idle
}

// Progress returns the played fraction in [0, 1].
func (s Session) Progress() float64 {
	if s.DurationMS <= 0 {
		return 0
	}
	p := float64(s.PositionMS) / float64(s.DurationMS)
	return min(max(p, 0), 1)
}

// Update is published on every engine transition.
type Update struct {
	Session Session
	Notice  string
}

// User-facing notices.
const (
	NoticeNoPreview  = "No preview available for this track"
	NoticeCannotPlay = "Cannot play preview - try another track"
)
