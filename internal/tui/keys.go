package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Save       key.Binding
	DarkMode   key.Binding
	Animations key.Binding
	Export     key.Binding
	Quit       key.Binding
	Help       key.Binding
	PrevPage   key.Binding
	NextPage   key.Binding
	Bold       key.Binding
	Italic     key.Binding
	Heading    key.Binding
	PlainStyle key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		DarkMode:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "dark mode")),
		Animations: key.NewBinding(key.WithKeys("alt+a"), key.WithHelp("alt+a", "animations")),
		Export:     key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "export")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
		Help:       key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
		PrevPage:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "previous page")),
		NextPage:   key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "next page")),
		Bold:       key.NewBinding(key.WithKeys("alt+b"), key.WithHelp("alt+b", "bold")),
		Italic:     key.NewBinding(key.WithKeys("alt+i"), key.WithHelp("alt+i", "italic")),
		Heading:    key.NewBinding(key.WithKeys("alt+1", "alt+2", "alt+3"), key.WithHelp("alt+1..3", "heading")),
		PlainStyle: key.NewBinding(key.WithKeys("alt+0"), key.WithHelp("alt+0", "plain text")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Export, k.DarkMode, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Save, k.Export, k.Quit},
		{k.PrevPage, k.NextPage, k.Help},
		{k.Bold, k.Italic, k.Heading, k.PlainStyle},
		{k.DarkMode, k.Animations},
	}
}
