package tui

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	bindings := []struct {
		name    string
		binding key.Binding
	}{
		{"NextTab", km.NextTab},
		{"PrevTab", km.PrevTab},
		{"Search", km.Search},
		{"Add", km.Add},
		{"Pin", km.Pin},
		{"Activate", km.Activate},
		{"Edit", km.Edit},
		{"Delete", km.Delete},
		{"Yank", km.Yank},
		{"Refresh", km.Refresh},
		{"Help", km.Help},
		{"Quit", km.Quit},
		{"Escape", km.Escape},
	}

	for _, b := range bindings {
		if len(b.binding.Keys()) == 0 {
			t.Errorf("%s binding should have keys", b.name)
		}
		if b.binding.Help().Key == "" {
			t.Errorf("%s binding should have help key", b.name)
		}
		if b.binding.Help().Desc == "" {
			t.Errorf("%s binding should have help description", b.name)
		}
	}
}

func TestTableKeyMap_FreesActionKeys(t *testing.T) {
	km := tableKeyMap()
	actions := DefaultKeyMap()

	nav := []key.Binding{km.LineUp, km.LineDown, km.PageUp, km.PageDown, km.HalfPageUp, km.HalfPageDown, km.GotoTop, km.GotoBottom}
	used := map[string]bool{}
	for _, b := range []key.Binding{actions.Add, actions.Pin, actions.Edit, actions.Delete, actions.Yank, actions.Refresh} {
		for _, k := range b.Keys() {
			used[k] = true
		}
	}
	for _, b := range nav {
		for _, k := range b.Keys() {
			if used[k] {
				t.Errorf("table navigation key %q collides with an action", k)
			}
		}
	}
}
