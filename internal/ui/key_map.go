package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	pause   key.Binding
	next    key.Binding
	prev    key.Binding
	shuffle key.Binding
	repeat  key.Binding
	volUp   key.Binding
	volDown key.Binding
	like    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		pause:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
		next:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		prev:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "previous")),
		shuffle: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shuffle")),
		repeat:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "repeat")),
		volUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "louder")),
		volDown: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "quieter")),
		like:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "like")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.enter, k.pause, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.pause, k.next, k.prev},
		{k.shuffle, k.repeat, k.volUp, k.volDown},
		{k.like, k.quit},
	}
}
