package tui

import "github.com/charmbracelet/bubbles/key"

type listKeyMap struct {
	Up, Down, Add, Edit, Toggle, Delete, Sort, Reload, Quit key.Binding
}

type formKeyMap struct {
	Next, Prev, Priority, Submit, Cancel key.Binding
}

var keys = listKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Add:    key.NewBinding(key.WithKeys("a", "n"), key.WithHelp("a", "add")),
	Edit:   key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
	Toggle: key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "done")),
	Delete: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
	Sort:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

var formKeys = formKeyMap{
	Next:     key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	Prev:     key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev")),
	Priority: key.NewBinding(key.WithKeys("left", "right", "h", "l", " "), key.WithHelp("←/→", "priority")),
	Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
	Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}

func (k listKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Toggle, k.Delete, k.Sort, k.Reload, k.Quit}
}

func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Priority, k.Submit, k.Cancel}
}
