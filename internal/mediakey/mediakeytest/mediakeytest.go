// Package mediakeytest provides a recording Dispatcher for tests.
package mediakeytest

import (
	"context"
	"sync"

	"github.com/vmorsell/gesture-control/pkg/model"
)

// Dispatcher records every key it is asked to press. When Err is set it is
// returned from every call instead of recording the key.
type Dispatcher struct {
	mu      sync.Mutex
	pressed []model.MediaKey
	calls   int
	err     error
	hook    func(model.MediaKey)
}

func New() *Dispatcher {
	return &Dispatcher{}
}

// Fail makes subsequent calls return err. Pass nil to recover.
func (d *Dispatcher) Fail(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

// OnDispatch registers fn to run inside every call before it returns.
func (d *Dispatcher) OnDispatch(fn func(model.MediaKey)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hook = fn
}

func (d *Dispatcher) Dispatch(ctx context.Context, key model.MediaKey) error {
	d.mu.Lock()
	d.calls++
	err, hook := d.err, d.hook
	if err == nil {
		d.pressed = append(d.pressed, key)
	}
	d.mu.Unlock()

	if hook != nil {
		hook(key)
	}
	return err
}

// Pressed returns the keys pressed so far.
func (d *Dispatcher) Pressed() []model.MediaKey {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.MediaKey, len(d.pressed))
	copy(out, d.pressed)
	return out
}

// Calls returns the number of Dispatch calls, failed ones included.
func (d *Dispatcher) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}
