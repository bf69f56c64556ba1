package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/TimelordUK/mfollow/internal/config"
)

// keyMap holds the bindings built from the keybinding config
type keyMap struct {
	Quit        key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Top         key.Binding
	Bottom      key.Binding
	Pause       key.Binding
	Open        key.Binding
	Goto        key.Binding
	LineNumbers key.Binding
	Help        key.Binding
}

func binding(keys []string, desc string) key.Binding {
	helpKey := ""
	if len(keys) > 0 {
		helpKey = keys[0]
	}
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, desc))
}

func newKeyMap(cfg config.KeybindingConfig) keyMap {
	return keyMap{
		Quit:        binding(cfg.Quit, "quit"),
		ScrollUp:    binding(cfg.ScrollUp, "up"),
		ScrollDown:  binding(cfg.ScrollDown, "down"),
		PageUp:      binding(cfg.PageUp, "page up"),
		PageDown:    binding(cfg.PageDown, "page down"),
		Top:         binding(cfg.Top, "top"),
		Bottom:      binding(cfg.Bottom, "bottom/follow"),
		Pause:       binding(cfg.Pause, "pause"),
		Open:        binding(cfg.Open, "open"),
		Goto:        binding(cfg.Goto, "goto"),
		LineNumbers: binding(cfg.LineNumbers, "line numbers"),
		Help:        binding([]string{"?"}, "help"),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Open, k.Bottom, k.Goto, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ScrollUp, k.ScrollDown, k.PageUp, k.PageDown},
		{k.Top, k.Bottom, k.Goto, k.LineNumbers},
		{k.Pause, k.Open, k.Help, k.Quit},
	}
}
