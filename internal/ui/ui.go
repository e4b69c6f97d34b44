package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/waves/internal/app"
	"github.com/desertthunder/waves/internal/auth"
	"github.com/desertthunder/waves/internal/formatter"
	"github.com/desertthunder/waves/internal/models"
	"github.com/desertthunder/waves/internal/player"
	"github.com/desertthunder/waves/internal/shared"
)

// InputMode is what currently receives key presses.
type InputMode int

const (
	BrowseMode InputMode = iota
	SearchMode
	CreateMode
	PickMode
	PromptMode
)

const (
	noticeTTL              = 3 * time.Second
	volumeStep             = 5
	noticeLoginUnavailable = "Login is not configured. Run `waves setup` and add your Spotify client ID."
	noticeNoPlaylists      = "You have no playlists yet. Press c to create one."
)

// Model represents the player TUI state.
type Model struct {
	ctx      context.Context
	ctrl     *app.Controller
	engine   *player.Engine
	prompter *Prompter
	mode     InputMode
	resume   InputMode
	width    int
	height   int

	tracks    list.Model
	playlists list.Model
	picker    list.Model
	search    textinput.Model
	name      textinput.Model
	progress  progress.Model
	spinner   spinner.Model
	help      help.Model
	keys      keyMap

	session  player.Session
	notice   string
	noticeID int
	loading  bool
	prompt   *promptRequest
	pick     models.Track
	barRow   int
	barStart int
}

// NewModel creates the player model. prompter must be the one given to the gate.
func NewModel(ctx context.Context, ctrl *app.Controller, engine *player.Engine, prompter *Prompter) *Model {
	if prompter == nil {
		prompter = NewPrompter()
	}

	search := textinput.New()
	search.Placeholder = "Search for songs or artists"
	search.CharLimit = 100
	search.Width = 40

	name := textinput.New()
	name.Placeholder = "Playlist name"
	name.CharLimit = 100
	name.Width = 40

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := &Model{
		ctx:       ctx,
		ctrl:      ctrl,
		engine:    engine,
		prompter:  prompter,
		tracks:    newList(),
		playlists: newList(),
		picker:    newList(),
		search:    search,
		name:      name,
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		spinner:   s,
		help:      help.New(),
		keys:      newKeyMap(),
		session:   engine.Session(),
	}
	m.syncScreen()
	return m
}

func newList() list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 80, 20)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	return l
}

// Init subscribes to player updates, controller notices and login prompts.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForUpdate(), m.waitForNotice(), m.prompter.wait(m.ctx))
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		return m.handleKeys(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case Msg:
		return m.handleMsg(msg)
	}
	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPlayerUpdate:
		u := msg.data.(player.Update)
		m.session = u.Session
		if u.Session.Active() && u.Session.Index >= 0 && u.Session.Index < len(m.tracks.Items()) {
			m.tracks.Select(u.Session.Index)
		}
		cmds := []tea.Cmd{m.waitForUpdate()}
		if u.Notice != "" {
			cmds = append(cmds, m.showNotice(u.Notice))
		}
		return m, tea.Batch(cmds...)

	case MsgNotice:
		return m, tea.Batch(m.waitForNotice(), m.showNotice(msg.data.(string)))

	case MsgNoticeExpired:
		if msg.data.(int) == m.noticeID {
			m.notice = ""
		}
		return m, nil

	case MsgScreenChanged:
		m.loading = false
		cmd := m.syncScreen()
		if err, _ := msg.data.(error); errors.Is(err, shared.ErrMissingConfig) {
			return m, tea.Batch(cmd, m.showNotice(noticeLoginUnavailable))
		}
		return m, cmd

	case MsgPlaylistChoices:
		m.loading = false
		choices := msg.data.(playlistChoices)
		if choices.err != nil {
			return m, nil
		}
		if len(choices.playlists) == 0 {
			return m, m.showNotice(noticeNoPlaylists)
		}
		m.pick = choices.track
		m.picker.Title = fmt.Sprintf("Add %q to...", choices.track.Title)
		m.mode = PickMode
		return m, m.picker.SetItems(playlistItems(choices.playlists))

	case MsgPromptRequest:
		req := msg.data.(promptRequest)
		m.prompt = &req
		if m.mode != PromptMode {
			m.resume = m.mode
		}
		m.mode = PromptMode
		return m, m.prompter.wait(m.ctx)

	case MsgGateChecked:
		checked := msg.data.(gateChecked)
		if !checked.ok || checked.capability != auth.CapabilityCreatePlaylist {
			return m, nil
		}
		m.mode = CreateMode
		m.name.Reset()
		return m, m.name.Focus()
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case PromptMode:
		return m.handlePromptKeys(msg)
	case SearchMode:
		return m.handleSearchKeys(msg)
	case CreateMode:
		return m.handleCreateKeys(msg)
	case PickMode:
		return m.handlePickKeys(msg)
	}
	return m.handleBrowseKeys(msg)
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		m.answer(auth.DecisionCancel)
		return m, tea.Quit
	case key.Matches(msg, m.keys.yes):
		m.answer(auth.DecisionLogin)
	case key.Matches(msg, m.keys.no):
		m.answer(auth.DecisionCancel)
	}
	return m, nil
}

func (m *Model) answer(d auth.Decision) {
	if m.prompt != nil {
		m.prompt.reply <- d
		m.prompt = nil
	}
	m.mode = m.resume
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.search.Blur()
		m.mode = BrowseMode
		return m, nil
	case "enter":
		query := m.search.Value()
		m.search.Blur()
		m.mode = BrowseMode
		if strings.TrimSpace(query) == "" {
			return m, nil
		}
		return m, m.run(func(ctx context.Context) error { return m.ctrl.Search(ctx, query) })
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) handleCreateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.name.Blur()
		m.mode = BrowseMode
		return m, nil
	case "enter":
		name := m.name.Value()
		m.name.Blur()
		m.mode = BrowseMode
		return m, m.run(func(ctx context.Context) error {
			_, err := m.ctrl.CreatePlaylist(ctx, name)
			return err
		})
	}

	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	return m, cmd
}

func (m *Model) handlePickKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.mode = BrowseMode
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.mode = BrowseMode
		selected, ok := m.picker.SelectedItem().(playlistItem)
		if !ok {
			return m, nil
		}
		track := m.pick
		return m, m.run(func(ctx context.Context) error {
			return m.ctrl.AddToPlaylist(ctx, selected.playlist.ID, track)
		})
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search):
		m.mode = SearchMode
		m.search.SetValue("")
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.enter):
		return m, m.activate()
	case key.Matches(msg, m.keys.toggle):
		return m, m.exec(m.ctrl.Toggle)
	case key.Matches(msg, m.keys.next):
		return m, m.exec(m.ctrl.Next)
	case key.Matches(msg, m.keys.previous):
		return m, m.exec(m.ctrl.Previous)
	case key.Matches(msg, m.keys.volumeUp):
		m.ctrl.AdjustVolume(volumeStep)
		return m, nil
	case key.Matches(msg, m.keys.volumeDn):
		m.ctrl.AdjustVolume(-volumeStep)
		return m, nil
	case key.Matches(msg, m.keys.browse):
		m.ctrl.Browse()
		return m, m.syncScreen()
	case key.Matches(msg, m.keys.playlists):
		return m, m.run(func(ctx context.Context) error {
			_, err := m.ctrl.Playlists(ctx)
			return err
		})
	case key.Matches(msg, m.keys.create):
		ctx := m.ctx
		return m, func() tea.Msg {
			return gateCheckedMsg(auth.CapabilityCreatePlaylist, m.ctrl.Ensure(ctx, auth.CapabilityCreatePlaylist))
		}
	case key.Matches(msg, m.keys.add):
		return m, m.choosePlaylist()
	case key.Matches(msg, m.keys.login):
		return m, m.run(m.ctrl.Login)
	case key.Matches(msg, m.keys.logout):
		return m, m.run(m.ctrl.Logout)
	}
	return m.updateLists(msg)
}

// activate opens the highlighted playlist or plays the highlighted track.
func (m *Model) activate() tea.Cmd {
	if m.ctrl.Screen().View == app.ViewPlaylists {
		selected, ok := m.playlists.SelectedItem().(playlistItem)
		if !ok {
			return nil
		}
		return m.run(func(ctx context.Context) error { return m.ctrl.OpenPlaylist(ctx, selected.playlist) })
	}

	if len(m.tracks.Items()) == 0 {
		return nil
	}
	index := m.tracks.Index()
	return m.exec(func(ctx context.Context) error { return m.ctrl.Play(ctx, index) })
}

// choosePlaylist loads the picker for the highlighted track, or the playing one on the playlists view.
func (m *Model) choosePlaylist() tea.Cmd {
	var track models.Track
	if item, ok := m.tracks.SelectedItem().(trackItem); ok && m.ctrl.Screen().View != app.ViewPlaylists {
		track = item.track
	} else if m.session.Active() {
		track = m.session.Track
	} else {
		return nil
	}

	m.loading = true
	ctx := m.ctx
	return tea.Batch(func() tea.Msg {
		playlists, err := m.ctrl.PlaylistChoices(ctx)
		return playlistChoicesMsg(playlists, track, err)
	}, m.spinner.Tick)
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if msg.Y != m.barRow || msg.X < m.barStart || msg.X >= m.barStart+m.progress.Width {
		return m, nil
	}

	offset := float64(msg.X - m.barStart)
	width := float64(m.progress.Width)
	return m, m.exec(func(context.Context) error { return m.ctrl.Seek(offset, width) })
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.mode == PickMode:
		m.picker, cmd = m.picker.Update(msg)
	case m.ctrl.Screen().View == app.ViewPlaylists:
		m.playlists, cmd = m.playlists.Update(msg)
	default:
		m.tracks, cmd = m.tracks.Update(msg)
	}
	return m, cmd
}

// run performs a controller operation off the update loop and then refreshes the screen.
func (m *Model) run(op func(context.Context) error) tea.Cmd {
	m.loading = true
	ctx := m.ctx
	return tea.Batch(func() tea.Msg {
		return screenChangedMsg(op(ctx))
	}, m.spinner.Tick)
}

// exec performs a playback operation off the update loop; its outcome arrives as player updates.
func (m *Model) exec(op func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		_ = op(ctx)
		return nil
	}
}

func (m *Model) showNotice(text string) tea.Cmd {
	m.noticeID++
	m.notice = text
	id := m.noticeID
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return noticeExpiredMsg(id)
	})
}

func (m *Model) waitForUpdate() tea.Cmd {
	updates := m.engine.Updates()
	return func() tea.Msg {
		select {
		case u := <-updates:
			return playerUpdateMsg(u)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) waitForNotice() tea.Cmd {
	notices := m.ctrl.Notices()
	return func() tea.Msg {
		select {
		case n := <-notices:
			return noticeMsg(n)
		case <-m.ctx.Done():
			return nil
		}
	}
}

// syncScreen copies the controller's screen and the engine's queue into the lists.
func (m *Model) syncScreen() tea.Cmd {
	screen := m.ctrl.Screen()
	m.tracks.Title = screen.Title
	m.playlists.Title = screen.Title
	return tea.Batch(
		m.tracks.SetItems(trackItems(m.engine.Queue(), m.ctrl.Authenticated())),
		m.playlists.SetItems(playlistItems(screen.Playlists)),
	)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	listHeight := max(height-12, 4)
	m.tracks.SetSize(width, listHeight)
	m.playlists.SetSize(width, listHeight)
	m.picker.SetSize(width, listHeight)
	m.progress.Width = max(width-24, 10)
	m.help.Width = width
}

// View renders the header, the current list or dialog, the transport and the notice line.
func (m *Model) View() string {
	status := styles.status
	if m.width > 0 {
		status = status.Width(m.width)
	}
	header := status.Render(fmt.Sprintf("%s  %s", styles.title.Render("waves"), m.ctrl.Status()))

	sections := []string{header}
	switch m.mode {
	case SearchMode:
		sections = append(sections, m.search.View())
	case CreateMode:
		sections = append(sections, "New playlist: "+m.name.View())
	}

	sections = append(sections, m.renderBody(), m.renderNowPlaying())
	top := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.barRow = lipgloss.Height(top)
	m.barStart = 0

	return lipgloss.JoinVertical(lipgloss.Left,
		top,
		m.renderBar(),
		m.renderNotice(),
		m.help.View(m.keys),
	)
}

func (m *Model) renderBody() string {
	switch {
	case m.mode == PromptMode && m.prompt != nil:
		answers := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
		return styles.dialog.Render(fmt.Sprintf("%s\n\n%s", m.prompt.message, answers))
	case m.mode == PickMode:
		return m.picker.View()
	case m.ctrl.Screen().View == app.ViewPlaylists:
		return m.playlists.View()
	default:
		return m.tracks.View()
	}
}

func (m *Model) renderNowPlaying() string {
	s := m.session
	if !s.Active() {
		return styles.help.Render("Nothing playing")
	}

	icon := "⏸"
	if s.Playing {
		icon = "▶"
	}
	title := fmt.Sprintf("%s %s", icon, styles.ok.Render(s.Track.Title))
	if s.Path == player.PathPreview {
		title += styles.help.Render(" (preview)")
	}
	return fmt.Sprintf("%s\n%s - %s", title, s.Track.Artist, s.Track.Album)
}

func (m *Model) renderBar() string {
	s := m.session
	clock := fmt.Sprintf("%s / %s", formatter.FormatMillis(s.PositionMS), formatter.FormatMillis(s.DurationMS))
	return fmt.Sprintf("%s %s %s", m.progress.ViewAs(s.Progress()), clock, volumeIcon(m.engine.Volume()))
}

func (m *Model) renderNotice() string {
	if m.loading {
		return m.spinner.View() + " Loading..."
	}
	if m.notice == "" {
		return ""
	}
	if strings.Contains(m.notice, "!") {
		return styles.ok.Render(m.notice)
	}
	return styles.warn.Render(m.notice)
}

func volumeIcon(percent int) string {
	switch {
	case percent == 0:
		return "🔇"
	case percent < 50:
		return fmt.Sprintf("🔉 %d%%", percent)
	default:
		return fmt.Sprintf("🔊 %d%%", percent)
	}
}
