// Package volume reads the host output volume and watches it for changes.
package volume

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultPollInterval = 500 * time.Millisecond

// ErrUnsupported is returned on hosts where the volume cannot be read.
var ErrUnsupported = errors.New("reading volume is not supported on this host")

// Reader reports the output volume as a percentage (0-100).
type Reader interface {
	Current(ctx context.Context) (int, error)
}

type ReaderFunc func(ctx context.Context) (int, error)

func (f ReaderFunc) Current(ctx context.Context) (int, error) {
	return f(ctx)
}

// System reads the volume of the default output device.
type System struct{}

func (System) Current(ctx context.Context) (int, error) {
	return systemVolume(ctx)
}

// Listener polls a Reader and reports changes.
type Listener struct {
	logger   *zap.Logger
	reader   Reader
	interval time.Duration

	mu    sync.Mutex
	last  int
	known bool
}

func NewListener(logger *zap.Logger, reader Reader, interval time.Duration) *Listener {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Listener{
		logger:   logger,
		reader:   reader,
		interval: interval,
	}
}

// Last returns the most recently observed volume.
func (l *Listener) Last() (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last, l.known
}

// Listen returns a channel that emits the volume whenever it changes. The
// initial reading is not emitted. The channel is closed when ctx ends.
func (l *Listener) Listen(ctx context.Context) (<-chan int, error) {
	vol, err := l.reader.Current(ctx)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.last, l.known = vol, true
	l.mu.Unlock()

	ch := make(chan int)
	go func() {
		defer close(ch)

		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			v, err := l.reader.Current(ctx)
			if err != nil {
				l.logger.Debug("failed to read volume", zap.Error(err))
				continue
			}

			l.mu.Lock()
			changed := v != l.last
			l.last = v
			l.mu.Unlock()

			if !changed {
				continue
			}
			select {
			case ch <- v:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
