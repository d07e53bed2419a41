package tui

import (
	"slices"
	"testing"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

func TestKeyMapBindings(t *testing.T) {
	k := newKeyMap()

	if got := k.quit.Keys(); !slices.Equal(got, []string{"q", "ctrl+c"}) {
		t.Fatalf("unexpected quit keys: %v", got)
	}
	if got := k.moveTaskRight.Keys(); !slices.Equal(got, []string{"]"}) {
		t.Fatalf("unexpected move-right keys: %v", got)
	}
	// Shifted letters arrive either as the capital rune or as shift+<r>,
	// so both spellings are registered.
	if got := k.reorderUp.Keys(); !slices.Equal(got, []string{"K", "shift+k"}) {
		t.Fatalf("unexpected reorder-up keys: %v", got)
	}
	if got := k.stats.Keys(); !slices.Equal(got, []string{"S", "shift+s"}) {
		t.Fatalf("unexpected stats keys: %v", got)
	}

	if !key.Matches(tea.KeyPressMsg{Code: 'J', Text: "J"}, k.reorderDown) {
		t.Fatal("expected capital J to match reorder down")
	}
	if key.Matches(tea.KeyPressMsg{Code: 'j', Text: "j"}, k.reorderDown) {
		t.Fatal("expected lowercase j to stay on task navigation")
	}
}

func TestKeyMapHelp(t *testing.T) {
	k := newKeyMap()

	short := k.ShortHelp()
	if len(short) == 0 {
		t.Fatal("expected short help bindings")
	}
	rows := k.FullHelp()
	if len(rows) != 3 {
		t.Fatalf("expected 3 full-help rows, got %d", len(rows))
	}
	for _, row := range rows {
		for _, binding := range row {
			if binding.Help().Key == "" || binding.Help().Desc == "" {
				t.Fatalf("binding %v missing help text", binding.Keys())
			}
		}
	}
}
