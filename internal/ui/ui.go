package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/Batman1190/Spirify/internal/library"
	"github.com/Batman1190/Spirify/internal/models"
	"github.com/Batman1190/Spirify/internal/player"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistView ViewState = iota
	TrackView
)

// Synthetic collection IDs for the non-playlist shelves.
const (
	likedCollectionID = "builtin_liked"
	localCollectionID = "builtin_local"
)

type collectionsLoadedMsg struct {
	items []list.Item
	err   error
}

type tracksLoadedMsg struct {
	name   string
	tracks []models.Track
	err    error
}

type playbackMsg player.Event

type tickMsg time.Time

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	session *player.Session
	lib     *library.Service

	view           ViewState
	width          int
	height         int
	collectionList list.Model
	trackList      list.Model
	tracks         []models.Track
	collectionName string

	nowPlaying models.Track
	playState  player.State
	volume     int
	err        error

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, session *player.Session, lib *library.Service, volume int) *Model {
	return &Model{
		ctx:     ctx,
		session: session,
		lib:     lib,
		volume:  volume,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init loads the library collections and starts listening for playback
// events.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadCollections(), m.waitForPlayback(), tick())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.collectionList.SetSize(msg.Width-4, msg.Height-8)
		m.trackList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleTransportKeys(msg); handled {
			return m, cmd
		}
		switch m.view {
		case PlaylistView:
			return m.handlePlaylistKeys(msg)
		case TrackView:
			return m.handleTrackKeys(msg)
		}

	case collectionsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.collectionList = list.New(msg.items, list.NewDefaultDelegate(), 0, 0)
		m.collectionList.Title = "Library"
		m.collectionList.SetSize(m.width-4, m.height-8)
		return m, nil

	case tracksLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.tracks = msg.tracks
		m.collectionName = msg.name
		items := make([]list.Item, len(msg.tracks))
		for i, track := range msg.tracks {
			items[i] = trackItem{track: track}
		}
		m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = msg.name
		m.trackList.SetSize(m.width-4, m.height-8)
		m.view = TrackView
		return m, nil

	case playbackMsg:
		ev := player.Event(msg)
		m.nowPlaying = ev.Track
		m.playState = ev.State
		if ev.State == player.StateError {
			m.err = ev.Err
		} else {
			m.err = nil
		}
		return m, m.waitForPlayback()

	case tickMsg:
		return m, tick()
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case PlaylistView:
		body = m.collectionList.View()
	case TrackView:
		body = m.trackList.View()
	}

	return fmt.Sprintf("%s\n\n%s\n%s", body, m.renderTransport(), m.renderHelp())
}

func (m *Model) handleTransportKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.session.Stop()
		return tea.Quit, true
	case " ":
		m.session.TogglePause()
		return nil, true
	case "n":
		m.session.Next(m.ctx)
		return nil, true
	case "b":
		m.session.Previous(m.ctx)
		return nil, true
	case "s":
		m.session.ToggleShuffle()
		return nil, true
	case "r":
		m.session.CycleRepeat()
		return nil, true
	case "+", "=":
		m.setVolume(m.volume + 5)
		return nil, true
	case "-":
		m.setVolume(m.volume - 5)
		return nil, true
	case "l":
		if m.nowPlaying.Valid() {
			m.lib.ToggleLiked(m.nowPlaying)
		}
		return nil, true
	}
	return nil, false
}

func (m *Model) handlePlaylistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		if selected := m.collectionList.SelectedItem(); selected != nil {
			if c, ok := selected.(collectionItem); ok {
				return m, m.loadTracks(c)
			}
		}
	}

	var cmd tea.Cmd
	m.collectionList, cmd = m.collectionList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.view = PlaylistView
		return m, nil
	case "enter":
		if err := m.session.Play(m.ctx, m.tracks, m.trackList.Index()); err != nil {
			m.err = err
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistView:
		m.collectionList, cmd = m.collectionList.Update(msg)
	case TrackView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) setVolume(v int) {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	m.volume = v
	m.session.SetVolume(v)
}

func (m *Model) loadCollections() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.lib.Playlists()
		if err != nil {
			return collectionsLoadedMsg{err: err}
		}

		items := make([]list.Item, 0, len(playlists)+2)
		for _, p := range playlists {
			items = append(items, playlistCollection(p))
		}

		liked, err := m.lib.LikedTracks()
		if err != nil {
			return collectionsLoadedMsg{err: err}
		}
		items = append(items, collectionItem{
			id:     likedCollectionID,
			name:   "Liked Songs",
			tracks: len(liked),
		})

		local, err := m.lib.LocalTracks()
		if err != nil {
			return collectionsLoadedMsg{err: err}
		}
		items = append(items, collectionItem{
			id:     localCollectionID,
			name:   "Local Files",
			desc:   "imported audio",
			tracks: len(local),
		})

		return collectionsLoadedMsg{items: items}
	}
}

func (m *Model) loadTracks(c collectionItem) tea.Cmd {
	return func() tea.Msg {
		switch c.id {
		case likedCollectionID:
			tracks, err := m.lib.LikedTracks()
			return tracksLoadedMsg{name: c.name, tracks: tracks, err: err}
		case localCollectionID:
			tracks, err := m.lib.LocalTracks()
			return tracksLoadedMsg{name: c.name, tracks: tracks, err: err}
		default:
			p, err := m.lib.Playlist(c.id)
			if err != nil {
				return tracksLoadedMsg{err: err}
			}
			tracks := make([]models.Track, 0, len(p.Tracks))
			for _, t := range p.Tracks {
				tracks = append(tracks, t.Track())
			}
			return tracksLoadedMsg{name: p.Name, tracks: tracks}
		}
	}
}

func (m *Model) waitForPlayback() tea.Cmd {
	return func() tea.Msg {
		return playbackMsg(<-m.session.Events())
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) renderTransport() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("✗ %v", m.err))
	}
	if !m.nowPlaying.Valid() {
		return styles.help.Render("Nothing playing")
	}

	var icon string
	switch m.playState {
	case player.StatePlaying:
		icon = "▶"
	case player.StatePaused:
		icon = "⏸"
	case player.StateLoading:
		icon = "…"
	default:
		icon = "■"
	}

	track := fmt.Sprintf("%s %s", icon, m.nowPlaying.Title)
	if m.nowPlaying.Artist != "" {
		track = fmt.Sprintf("%s • %s", track, m.nowPlaying.Artist)
	}

	pos := formatDuration(m.session.Position())
	if total := m.session.Duration(); total > 0 {
		pos = fmt.Sprintf("%s / %s", pos, formatDuration(total))
	}

	flags := ""
	if m.session.Queue().Shuffle() {
		flags += " ⤨"
	}
	if mode := m.session.Queue().Repeat(); mode.String() != "off" {
		flags += fmt.Sprintf(" ⟳%s", mode)
	}

	return fmt.Sprintf("%s  %s  vol %d%%%s",
		styles.ok.Render(track), styles.help.Render(pos), m.volume, styles.warn.Render(flags))
}

func (m *Model) renderHelp() string {
	return m.help.ShortHelpView(m.keys.ShortHelp())
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}
