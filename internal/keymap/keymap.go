// Package keymap holds the fixed translation from gesture actions to media keys.
package keymap

import (
	"sort"

	"github.com/vmorsell/gesture-control/pkg/model"
)

// Table is an immutable Action to MediaKey mapping. The zero value is empty.
type Table struct {
	keys map[model.Action]model.MediaKey
}

var defaultTable = newTable(map[model.Action]model.MediaKey{
	model.ActionPlay:     model.KeyPlayPause,
	model.ActionPause:    model.KeyPlayPause,
	model.ActionNext:     model.KeyNextTrack,
	model.ActionPrevious: model.KeyPreviousTrack,
	model.ActionVolUp:    model.KeyVolumeUp,
	model.ActionVolDown:  model.KeyVolumeDown,
})

// Default returns the process-wide table.
func Default() Table {
	return defaultTable
}

func newTable(src map[model.Action]model.MediaKey) Table {
	keys := make(map[model.Action]model.MediaKey, len(src))
	for a, k := range src {
		keys[a] = k
	}
	return Table{keys: keys}
}

// Lookup resolves the media key for an action token.
func (t Table) Lookup(action string) (model.MediaKey, bool) {
	key, ok := t.keys[model.Action(action)]
	return key, ok
}

// Actions returns the known actions in sorted order.
func (t Table) Actions() []model.Action {
	actions := make([]model.Action, 0, len(t.keys))
	for a := range t.keys {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}

// Keys returns the distinct media keys referenced by the table in sorted order.
func (t Table) Keys() []model.MediaKey {
	seen := make(map[model.MediaKey]struct{}, len(t.keys))
	keys := make([]model.MediaKey, 0, len(t.keys))
	for _, k := range t.keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (t Table) Len() int {
	return len(t.keys)
}
