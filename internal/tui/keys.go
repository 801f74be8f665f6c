package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Quit      key.Binding
	Prev      key.Binding
	Next      key.Binding
	First     key.Binding
	Last      key.Binding
	Strip     key.Binding
	Add       key.Binding
	Remove    key.Binding
	MoveLeft  key.Binding
	MoveRight key.Binding
	Clear     key.Binding
	Save      key.Binding
	Load      key.Binding
}

var chooserHelp = []key.Binding{
	key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "move")),
	key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
	key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add")),
	key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Prev:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev")),
		Next:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next")),
		First:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first")),
		Last:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last")),
		Strip:     key.NewBinding(key.WithKeys("tab", "t"), key.WithHelp("tab", "strip")),
		Add:       key.NewBinding(key.WithKeys("a", "+"), key.WithHelp("a", "add")),
		Remove:    key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		MoveLeft:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move left")),
		MoveRight: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move right")),
		Clear:     key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear")),
		Save:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Load:      key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "load")),
	}
}

// stripHelp lists the actions shown under the thumbnails. Clear only shows
// for a non-empty gallery and load only when something is saved.
func (k keyMap) stripHelp(empty, hasSaved bool) []key.Binding {
	out := []key.Binding{k.Add}
	if !empty {
		out = append(out, k.Remove, k.MoveLeft, k.MoveRight, k.Clear)
	}
	out = append(out, k.Save)
	if hasSaved {
		out = append(out, k.Load)
	}
	return append(out, k.Strip, k.Quit)
}

func renderHelp(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, helpKeyStyle.Render(h.Key)+" "+helpDescStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
