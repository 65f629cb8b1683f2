package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	fetchFrom key.Binding
	fetchTo   key.Binding
	transfer  key.Binding
	reload    key.Binding
	focus     key.Binding
	back      key.Binding
	yes       key.Binding
	no        key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		fetchFrom: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fetch from")),
		fetchTo:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "fetch to")),
		transfer:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "transfer")),
		reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload logins")),
		focus:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch panel")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.fetchFrom, k.fetchTo, k.transfer, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.fetchFrom, k.fetchTo, k.transfer},
		{k.reload, k.focus, k.back},
		{k.yes, k.no, k.quit},
	}
}
