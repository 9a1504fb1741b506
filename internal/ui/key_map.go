package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the console.
type keyMap struct {
	up         key.Binding
	down       key.Binding
	request    key.Binding
	urgent     key.Binding
	distribute key.Binding
	pending    key.Binding
	enter      key.Binding
	back       key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		request:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "request")),
		urgent:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "urgent")),
		distribute: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "distribute")),
		pending:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pending")),
		enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.request, k.urgent, k.distribute, k.pending, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down},
		{k.request, k.urgent, k.distribute, k.pending},
		{k.enter, k.back, k.quit},
	}
}
