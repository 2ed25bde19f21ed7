package keymap

import (
	"testing"

	"github.com/vmorsell/gesture-control/pkg/model"
)

func TestDefault_Lookup(t *testing.T) {
	tests := []struct {
		action string
		want   model.MediaKey
	}{
		{"play", model.KeyPlayPause},
		{"pause", model.KeyPlayPause},
		{"next", model.KeyNextTrack},
		{"previous", model.KeyPreviousTrack},
		{"vol_up", model.KeyVolumeUp},
		{"vol_down", model.KeyVolumeDown},
	}

	table := Default()
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			got, ok := table.Lookup(tt.action)
			if !ok {
				t.Fatalf("Lookup(%q) not found", tt.action)
			}
			if got != tt.want {
				t.Errorf("Lookup(%q) = %q, want %q", tt.action, got, tt.want)
			}
		})
	}
}

func TestDefault_LookupUnknown(t *testing.T) {
	table := Default()
	for _, action := range []string{"", "shuffle", "PLAY", " play", "volume-up"} {
		if key, ok := table.Lookup(action); ok {
			t.Errorf("Lookup(%q) = %q, expected miss", action, key)
		}
	}
}

func TestDefault_Actions(t *testing.T) {
	got := Default().Actions()
	want := []model.Action{"next", "pause", "play", "previous", "vol_down", "vol_up"}
	if len(got) != len(want) {
		t.Fatalf("expected %d actions, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("actions[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDefault_Keys(t *testing.T) {
	got := Default().Keys()
	if len(got) != 5 {
		t.Fatalf("expected 5 distinct keys, got %d: %v", len(got), got)
	}
}

func TestNewTable_CopiesSource(t *testing.T) {
	src := map[model.Action]model.MediaKey{model.ActionPlay: model.KeyPlayPause}
	table := newTable(src)
	src[model.ActionPlay] = model.KeyNextTrack

	got, _ := table.Lookup("play")
	if got != model.KeyPlayPause {
		t.Errorf("table changed with its source: got %q", got)
	}
}

func TestZeroTable(t *testing.T) {
	var table Table
	if _, ok := table.Lookup("play"); ok {
		t.Error("zero table should not resolve actions")
	}
	if table.Len() != 0 {
		t.Errorf("expected empty table, got %d entries", table.Len())
	}
}
