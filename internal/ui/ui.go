package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/justmusik/jmk/internal/catalog"
	"github.com/justmusik/jmk/internal/models"
	"github.com/justmusik/jmk/internal/player"
	"github.com/justmusik/jmk/internal/services"
	"github.com/justmusik/jmk/internal/session"
	"github.com/justmusik/jmk/internal/shared"
	"github.com/justmusik/jmk/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoginView ViewState = iota
	CatalogView
	FavoritesView
	UploadView
)

// uploadReturnDelay keeps the success notice on screen briefly before the form
// hands back to the catalog.
const uploadReturnDelay = 1500 * time.Millisecond

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	session  *session.Store
	songs    *services.SongService
	favSvc   *services.FavoritesService
	catalog  *catalog.View
	player   *player.Controller
	engine   *tasks.Engine
	view     ViewState
	width    int
	height   int
	songList list.Model

	username textinput.Model
	password textinput.Model
	focus    int

	query     textinput.Model
	searching bool

	form      []textinput.Model
	formFocus int
	uploading bool

	favorites map[string]bool
	favSongs  []models.Song

	// gen guards against stale fetch results after a refresh or re-login.
	gen     int
	loading bool
	status  string
	err     error

	help help.Model
	keys keyMap
}

type songsFetchedMsg struct {
	gen   int
	songs []models.Song
	err   error
}

type favoritesFetchedMsg struct {
	gen   int
	songs []models.Song
	err   error
}

type loginResultMsg struct {
	err error
}

type favoriteToggledMsg struct {
	songID string
	added  bool
	err    error
}

type uploadResultMsg struct {
	song *models.Song
	err  error
}

type uploadReturnMsg struct{}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, store *session.Store, songs *services.SongService, favs *services.FavoritesService, ctrl *player.Controller, engine *tasks.Engine) *Model {
	username := textinput.New()
	username.Placeholder = "username"
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword

	query := textinput.New()
	query.Placeholder = "search title, artist, genre, album"

	m := &Model{
		ctx:       ctx,
		session:   store,
		songs:     songs,
		favSvc:    favs,
		catalog:   catalog.NewView(catalog.DefaultPageSize),
		player:    ctrl,
		engine:    engine,
		view:      LoginView,
		username:  username,
		password:  password,
		query:     query,
		favorites: map[string]bool{},
		help:      help.New(),
		keys:      newKeyMap(),
	}
	if store.Authenticated() {
		m.view = CatalogView
	}
	return m
}

// Init fetches the catalog when a session was restored, otherwise the login
// form is shown first.
func (m *Model) Init() tea.Cmd {
	if m.session.Authenticated() {
		return m.fetchAll()
	}
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.songList.Width() != 0 {
			m.songList.SetSize(msg.Width-4, msg.Height-10)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case LoginView:
			return m.handleLoginKeys(msg)
		case UploadView:
			return m.handleUploadKeys(msg)
		default:
			return m.handleBrowseKeys(msg)
		}

	case loginResultMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("Signed in as %s", m.session.Current().Username)
		m.view = CatalogView
		return m, m.fetchAll()

	case songsFetchedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			return m, m.handleFetchError(msg.err)
		}
		m.catalog.SetSongs(msg.songs)
		m.rebuildList()
		return m, nil

	case favoritesFetchedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			return m, m.handleFetchError(msg.err)
		}
		m.favSongs = msg.songs
		m.favorites = make(map[string]bool, len(msg.songs))
		for _, song := range msg.songs {
			m.favorites[song.ID] = true
		}
		m.rebuildList()
		return m, nil

	case favoriteToggledMsg:
		if msg.err != nil {
			// The toggle was optimistic; put the flag and the list back.
			m.favorites[msg.songID] = !msg.added
			if msg.added {
				m.dropFavorite(msg.songID)
			}
			m.status = styles.err.Render(fmt.Sprintf("Favorite update failed: %v", msg.err))
			m.rebuildList()
			return m, m.handleFetchError(msg.err)
		}
		if !msg.added {
			m.dropFavorite(msg.songID)
			// Removing the playing favorite also stops it.
			m.player.ClearIf(msg.songID)
			m.rebuildList()
		}
		return m, nil

	case uploadResultMsg:
		m.uploading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = styles.ok.Render(fmt.Sprintf("Uploaded %s - %s", msg.song.Artist, msg.song.Title))
		return m, tea.Tick(uploadReturnDelay, func(time.Time) tea.Msg {
			return uploadReturnMsg{}
		})

	case uploadReturnMsg:
		if m.view == UploadView {
			m.view = CatalogView
			return m, m.fetchAll()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoginView:
		return m.renderLogin()
	case UploadView:
		return m.renderUpload()
	default:
		return m.renderBrowse()
	}
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "shift+tab", "up", "down":
		m.focus = (m.focus + 1) % 2
		if m.focus == 0 {
			m.password.Blur()
			return m, m.username.Focus()
		}
		m.username.Blur()
		return m, m.password.Focus()
	case "enter":
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.err = nil
		return m, m.login(m.username.Value(), m.password.Value())
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.username, cmd = m.username.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.search):
		if m.view == CatalogView {
			m.searching = true
			return m, m.query.Focus()
		}

	case key.Matches(msg, m.keys.sortKey):
		if m.view == CatalogView {
			m.catalog.SetSort(m.catalog.Sort().Next())
			m.rebuildList()
		}
		return m, nil

	case key.Matches(msg, m.keys.genre):
		if m.view == CatalogView {
			m.cycleGenre()
			m.rebuildList()
		}
		return m, nil

	case key.Matches(msg, m.keys.nextPage):
		if m.view == CatalogView {
			m.catalog.NextPage()
			m.rebuildList()
		}
		return m, nil

	case key.Matches(msg, m.keys.prevPage):
		if m.view == CatalogView {
			m.catalog.PrevPage()
			m.rebuildList()
		}
		return m, nil

	case key.Matches(msg, m.keys.tab):
		if m.view == CatalogView {
			m.view = FavoritesView
		} else {
			m.view = CatalogView
		}
		m.rebuildList()
		return m, nil

	case key.Matches(msg, m.keys.refresh):
		return m, m.fetchAll()

	case key.Matches(msg, m.keys.upload):
		if m.session.Current().IsAdmin() {
			m.openUploadForm()
		}
		return m, textinput.Blink

	case key.Matches(msg, m.keys.favorite):
		return m, m.toggleFavorite()

	case key.Matches(msg, m.keys.enter):
		if item, ok := m.songList.SelectedItem().(songItem); ok {
			m.player.Select(m.ctx, item.song)
			m.rebuildList()
		}
		return m, nil

	case key.Matches(msg, m.keys.back):
		if m.catalog.Query() != "" || m.catalog.Genre() != "" {
			m.query.SetValue("")
			m.catalog.SetQuery("")
			m.catalog.SetGenre("")
			m.rebuildList()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.searching = false
		m.query.Blur()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	m.catalog.SetQuery(m.query.Value())
	m.rebuildList()
	return m, cmd
}

var uploadFields = []string{"title", "artist", "album", "genre", "audio file path"}

// openUploadForm resets the admin upload form and switches to it.
func (m *Model) openUploadForm() {
	m.form = make([]textinput.Model, len(uploadFields))
	for i, name := range uploadFields {
		input := textinput.New()
		input.Placeholder = name
		m.form[i] = input
	}
	m.form[0].Focus()
	m.formFocus = 0
	m.err = nil
	m.status = ""
	m.view = UploadView
}

func (m *Model) handleUploadKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if !m.uploading {
			m.view = CatalogView
			m.err = nil
		}
		return m, nil
	case "tab", "down":
		return m, m.focusUploadField(m.formFocus + 1)
	case "shift+tab", "up":
		return m, m.focusUploadField(m.formFocus - 1)
	case "enter":
		if m.uploading {
			return m, nil
		}
		m.uploading = true
		m.err = nil
		return m, m.submitUpload()
	}

	var cmds []tea.Cmd
	for i := range m.form {
		var cmd tea.Cmd
		m.form[i], cmd = m.form[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) focusUploadField(next int) tea.Cmd {
	n := len(m.form)
	m.form[m.formFocus].Blur()
	m.formFocus = ((next % n) + n) % n
	return m.form[m.formFocus].Focus()
}

// submitUpload validates and sends the form. Validation failures come back
// before any bytes leave the machine, so the form stays up for correction.
func (m *Model) submitUpload() tea.Cmd {
	meta := services.SongMeta{
		Title:  strings.TrimSpace(m.form[0].Value()),
		Artist: strings.TrimSpace(m.form[1].Value()),
		Album:  strings.TrimSpace(m.form[2].Value()),
		Genre:  strings.TrimSpace(m.form[3].Value()),
	}
	path := strings.TrimSpace(m.form[4].Value())

	return func() tea.Msg {
		var audio *services.AudioFile
		if path != "" {
			var err error
			audio, err = tasks.LoadAudioFile(path)
			if err != nil {
				return uploadResultMsg{err: err}
			}
			defer func() {
				if closer, ok := audio.Reader.(io.Closer); ok {
					closer.Close()
				}
			}()
		}

		song, err := m.engine.Create(m.ctx, tasks.SongUpload{Meta: meta, Audio: audio})
		return uploadResultMsg{song: song, err: err}
	}
}

// cycleGenre steps through the catalog's derived genre options, ending back at
// no filter.
func (m *Model) cycleGenre() {
	genres := m.catalog.Genres()
	if len(genres) == 0 {
		return
	}

	current := m.catalog.Genre()
	if current == "" {
		m.catalog.SetGenre(genres[0])
		return
	}
	for i, g := range genres {
		if g == current {
			if i+1 < len(genres) {
				m.catalog.SetGenre(genres[i+1])
			} else {
				m.catalog.SetGenre("")
			}
			return
		}
	}
	m.catalog.SetGenre("")
}

func (m *Model) toggleFavorite() tea.Cmd {
	item, ok := m.songList.SelectedItem().(songItem)
	if !ok {
		return nil
	}

	id := item.song.ID
	added := !m.favorites[id]
	m.favorites[id] = added
	if added {
		m.favSongs = append(m.favSongs, item.song)
	}
	m.rebuildList()

	return func() tea.Msg {
		var err error
		if added {
			err = m.favSvc.Add(m.ctx, id)
		} else {
			err = m.favSvc.Remove(m.ctx, id)
		}
		return favoriteToggledMsg{songID: id, added: added, err: err}
	}
}

// dropFavorite removes a song from the favorites list. Callers rebuild the
// visible list afterwards.
func (m *Model) dropFavorite(id string) {
	kept := m.favSongs[:0]
	for _, song := range m.favSongs {
		if song.ID != id {
			kept = append(kept, song)
		}
	}
	m.favSongs = kept
}

// handleFetchError routes expired sessions back to the login form; everything
// else is shown in place.
func (m *Model) handleFetchError(err error) tea.Cmd {
	if errors.Is(err, shared.ErrUnauthorized) {
		m.view = LoginView
		m.err = fmt.Errorf("session expired, sign in again")
		m.password.SetValue("")
		m.focus = 0
		m.username.Focus()
		return textinput.Blink
	}
	m.err = err
	return nil
}

func (m *Model) fetchAll() tea.Cmd {
	m.gen++
	m.loading = true
	gen := m.gen
	return tea.Batch(
		func() tea.Msg {
			songs, err := m.songs.List(m.ctx)
			return songsFetchedMsg{gen: gen, songs: songs, err: err}
		},
		func() tea.Msg {
			songs, err := m.favSvc.List(m.ctx)
			return favoritesFetchedMsg{gen: gen, songs: songs, err: err}
		},
	)
}

func (m *Model) login(username, password string) tea.Cmd {
	return func() tea.Msg {
		err := m.session.Login(m.ctx, models.Credentials{Username: username, Password: password})
		return loginResultMsg{err: err}
	}
}

// rebuildList refreshes the visible list from the active source: the catalog's
// current page, or the favorites list.
func (m *Model) rebuildList() {
	var songs []models.Song
	var title string
	if m.view == FavoritesView {
		songs = m.favSongs
		title = "Favorites"
	} else {
		songs = m.catalog.Visible()
		title = m.catalogTitle()
	}

	items := make([]list.Item, len(songs))
	for i, song := range songs {
		items[i] = songItem{
			song:     song,
			favorite: m.favorites[song.ID],
			playing:  m.isCurrent(song.ID),
		}
	}

	selected := m.songList.Index()
	m.songList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.songList.Title = title
	m.songList.SetShowHelp(false)
	m.songList.SetFilteringEnabled(false)
	if m.width > 0 {
		m.songList.SetSize(m.width-4, m.height-10)
	}
	if selected < len(items) {
		m.songList.Select(selected)
	}
}

func (m *Model) catalogTitle() string {
	title := fmt.Sprintf("Catalog • page %d/%d", m.catalog.Page(), m.catalog.TotalPages())
	if m.catalog.Genre() != "" {
		title = fmt.Sprintf("%s • %s", title, m.catalog.Genre())
	}
	if m.catalog.Sort() != catalog.SortNone {
		title = fmt.Sprintf("%s • by %s", title, m.catalog.Sort())
	}
	return title
}

func (m *Model) isCurrent(id string) bool {
	current := m.player.Current()
	return current != nil && current.ID == id && m.player.IsPlaying()
}

func (m *Model) renderLogin() string {
	title := styles.title.Render("JustMusik")

	var errLine string
	if m.err != nil {
		errLine = styles.err.Render(fmt.Sprintf("\n%v\n", m.err))
	}

	status := ""
	if m.loading {
		status = "\nSigning in..."
	}

	helpView := m.help.ShortHelpView([]key.Binding{
		key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch field")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "sign in")),
		key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	})

	return fmt.Sprintf("%s\n%s\n%s\n%s%s\n\n%s", title, m.username.View(), m.password.View(), errLine, status, helpView)
}

func (m *Model) renderUpload() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Upload Song"))
	b.WriteString("\n")
	for i := range m.form {
		b.WriteString(m.form[i].View())
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	if m.uploading {
		b.WriteString("Uploading...\n")
	}

	b.WriteString(m.help.ShortHelpView([]key.Binding{
		key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "upload")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}))
	return b.String()
}

func (m *Model) renderBrowse() string {
	if m.loading {
		return styles.title.Render("Loading catalog...")
	}

	var searchLine string
	if m.searching || m.catalog.Query() != "" {
		searchLine = m.query.View() + "\n"
	}

	var errLine string
	if m.err != nil {
		errLine = styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	} else if m.status != "" {
		errLine = m.status + "\n"
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.favorite, m.keys.search, m.keys.sortKey, m.keys.genre, m.keys.tab}
	if m.session.Current().IsAdmin() {
		helpKeys = append(helpKeys, m.keys.upload)
	}
	helpKeys = append(helpKeys, m.keys.quit)
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s%s%s\n%s\n%s", errLine, searchLine, m.songList.View(), m.renderPlayerBar(), helpView)
}

// renderPlayerBar shows the current song and play state under the list.
func (m *Model) renderPlayerBar() string {
	current := m.player.Current()
	if current == nil {
		return styles.help.Render("Nothing playing")
	}

	state := "⏸"
	if m.player.IsPlaying() {
		state = "▶"
	}
	line := fmt.Sprintf("%s %s - %s", state, current.Artist, current.Title)
	if current.Duration > 0 {
		line = fmt.Sprintf("%s (%s)", line, player.FormatTime(float64(current.Duration)))
	}
	return styles.ok.Render(line)
}
