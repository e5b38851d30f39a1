package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap is the full set of key bindings. It implements help.KeyMap.
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Home       key.Binding
	End        key.Binding
	NextCat    key.Binding
	PrevCat    key.Binding
	PickCat    key.Binding
	Refresh    key.Binding
	Saved      key.Binding
	Fetched    key.Binding
	SwitchView key.Binding
	Favorite   key.Binding
	Theme      key.Binding
	Work       key.Binding
	Open       key.Binding
	Discussion key.Binding
	Copy       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Home:       key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
	End:        key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
	NextCat:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next category")),
	PrevCat:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev category")),
	PickCat:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6"), key.WithHelp("1-6", "category")),
	Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Saved:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "saved")),
	Fetched:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "stories")),
	SwitchView: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "switch view")),
	Favorite:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "favorite")),
	Theme:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	Work:       key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "work log")),
	Open:       key.NewBinding(key.WithKeys("enter", "o"), key.WithHelp("enter", "open")),
	Discussion: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "comments")),
	Copy:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy link")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextCat, k.Refresh, k.Saved, k.Favorite, k.Open, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Home, k.End},
		{k.NextCat, k.PrevCat, k.PickCat, k.Refresh},
		{k.Saved, k.Fetched, k.SwitchView, k.Favorite, k.Theme, k.Work},
		{k.Open, k.Discussion, k.Copy, k.Help, k.Quit},
	}
}
