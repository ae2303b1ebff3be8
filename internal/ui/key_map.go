package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	search   key.Binding
	sortKey  key.Binding
	genre    key.Binding
	nextPage key.Binding
	prevPage key.Binding
	favorite key.Binding
	tab      key.Binding
	refresh  key.Binding
	upload   key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play/pause")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		sortKey:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		genre:    key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "genre")),
		nextPage: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
		prevPage: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
		favorite: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
		tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "catalog/favorites")),
		refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		upload:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.favorite},
		{k.search, k.sortKey, k.genre},
		{k.prevPage, k.nextPage, k.tab},
		{k.refresh, k.back, k.quit},
	}
}
