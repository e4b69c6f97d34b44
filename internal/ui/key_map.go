package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the player.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	back      key.Binding
	yes       key.Binding
	no        key.Binding
	search    key.Binding
	toggle    key.Binding
	next      key.Binding
	previous  key.Binding
	volumeUp  key.Binding
	volumeDn  key.Binding
	browse    key.Binding
	playlists key.Binding
	create    key.Binding
	add       key.Binding
	login     key.Binding
	logout    key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play/open")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:       key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "login")),
		no:        key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
		search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		next:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		previous:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
		volumeUp:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		volumeDn:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "volume down")),
		browse:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "featured")),
		playlists: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "playlists")),
		create:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "new playlist")),
		add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add to playlist")),
		login:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "login")),
		logout:    key.NewBinding(key.WithKeys("O"), key.WithHelp("O", "logout")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.search, k.enter, k.toggle, k.next, k.previous, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.search, k.toggle, k.next, k.previous},
		{k.volumeUp, k.volumeDn, k.browse, k.playlists},
		{k.create, k.add, k.login, k.logout, k.quit},
	}
}
