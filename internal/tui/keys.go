package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	ToggleSelect  key.Binding
	ToggleFolder  key.Binding
	SelectAll     key.Binding
	SelectNone    key.Binding
	Rescan        key.Binding
	Move          key.Binding
	KeepStructure key.Binding
	AutoRename    key.Binding
	Reset         key.Binding
	Help          key.Binding
	Quit          key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		ToggleSelect: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "select"),
		),
		ToggleFolder: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "with folder"),
		),
		SelectAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select all"),
		),
		SelectNone: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "select none"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Move: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "move selected"),
		),
		KeepStructure: key.NewBinding(
			key.WithKeys("k"),
			key.WithHelp("k", "keep structure"),
		),
		AutoRename: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "auto rename"),
		),
		Reset: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "reset"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ToggleSelect, k.ToggleFolder, k.SelectAll, k.Move, k.Rescan, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ToggleSelect, k.ToggleFolder, k.SelectAll, k.SelectNone},
		{k.Move, k.KeepStructure, k.AutoRename},
		{k.Rescan, k.Reset, k.Help, k.Quit},
	}
}

func (k keyMap) bindings() []key.Binding {
	return []key.Binding{
		k.ToggleSelect, k.ToggleFolder, k.SelectAll, k.SelectNone, k.Rescan, k.Move,
		k.KeepStructure, k.AutoRename, k.Reset, k.Help, k.Quit,
	}
}
