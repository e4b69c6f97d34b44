package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/waves/internal/auth"
	"github.com/desertthunder/waves/internal/models"
	"github.com/desertthunder/waves/internal/player"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlayerUpdate MsgKind = iota
	MsgNotice
	MsgNoticeExpired
	MsgScreenChanged
	MsgPlaylistChoices
	MsgPromptRequest
	MsgGateChecked
)

// playerUpdateMsg is the constructor for [MsgPlayerUpdate]
func playerUpdateMsg(u player.Update) Msg {
	return Msg{kind: MsgPlayerUpdate, data: u}
}

// noticeMsg is the constructor for [MsgNotice]
func noticeMsg(text string) Msg {
	return Msg{kind: MsgNotice, data: text}
}

// noticeExpiredMsg is the constructor for [MsgNoticeExpired]
func noticeExpiredMsg(id int) Msg {
	return Msg{kind: MsgNoticeExpired, data: id}
}

// screenChangedMsg is the constructor for [MsgScreenChanged]
func screenChangedMsg(err error) Msg {
	return Msg{kind: MsgScreenChanged, data: err}
}

type playlistChoices struct {
	playlists []models.Playlist
	track     models.Track
	err       error
}

// playlistChoicesMsg is the constructor for [MsgPlaylistChoices]
func playlistChoicesMsg(playlists []models.Playlist, track models.Track, err error) Msg {
	return Msg{kind: MsgPlaylistChoices, data: playlistChoices{playlists, track, err}}
}

// promptRequestMsg is the constructor for [MsgPromptRequest]
func promptRequestMsg(req promptRequest) Msg {
	return Msg{kind: MsgPromptRequest, data: req}
}

type gateChecked struct {
	capability auth.Capability
	ok         bool
}

// gateCheckedMsg is the constructor for [MsgGateChecked]
func gateCheckedMsg(capability auth.Capability, ok bool) Msg {
	return Msg{kind: MsgGateChecked, data: gateChecked{capability, ok}}
}
