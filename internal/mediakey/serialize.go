package mediakey

import (
	"context"

	"github.com/vmorsell/gesture-control/pkg/model"
)

// Serialized runs key presses one at a time.
type Serialized struct {
	next Dispatcher
	sem  chan struct{}
}

// Serialize wraps d so that concurrent Dispatch calls never overlap. Callers
// waiting for their turn give up when their context ends.
func Serialize(d Dispatcher) *Serialized {
	if s, ok := d.(*Serialized); ok {
		return s
	}
	return &Serialized{
		next: d,
		sem:  make(chan struct{}, 1),
	}
}

func (s *Serialized) Dispatch(ctx context.Context, key model.MediaKey) error {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return &DispatchError{Key: key, Reason: ReasonCanceled, Err: ctx.Err()}
	}
	defer func() { <-s.sem }()

	return s.next.Dispatch(ctx, key)
}

func (s *Serialized) Close() error {
	return Close(s.next)
}
