// Package mediakey synthesizes media key presses on the host.
//
// A Dispatcher presses exactly one key per call. Failures are reported as
// *DispatchError so callers can tell an unsupported host from a broken backend
// without parsing host-specific error text.
package mediakey

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/vmorsell/gesture-control/pkg/model"
	"go.uber.org/zap"
)

const (
	BackendAuto    = "auto"
	BackendNative  = "native"
	BackendXdotool = "xdotool"
	BackendUinput  = "uinput"
	BackendNoop    = "noop"

	DefaultDispatchTimeout = 2 * time.Second
	DefaultUinputDevice    = "/dev/uinput"
)

var (
	// ErrUnsupported is returned when the host has no way to synthesize the key.
	ErrUnsupported = errors.New("media keys not supported on this host")
	// ErrUnknownBackend is returned by New for a backend name it does not know.
	ErrUnknownBackend = errors.New("unknown input backend")
)

// Dispatcher presses a single media key.
type Dispatcher interface {
	Dispatch(ctx context.Context, key model.MediaKey) error
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, key model.MediaKey) error

func (f DispatcherFunc) Dispatch(ctx context.Context, key model.MediaKey) error {
	return f(ctx, key)
}

type Reason string

const (
	ReasonUnsupported Reason = "unsupported"
	ReasonUnavailable Reason = "unavailable"
	ReasonFailed      Reason = "failed"
	ReasonCanceled    Reason = "canceled"
)

func (r Reason) describe() string {
	switch r {
	case ReasonUnsupported:
		return "media keys are not supported on this host"
	case ReasonUnavailable:
		return "input backend unavailable"
	case ReasonCanceled:
		return "key press canceled"
	default:
		return "key press failed"
	}
}

// DispatchError is the failure result of a key press. Err holds the host-level
// cause and is meant for logs, not for callers.
type DispatchError struct {
	Key    model.MediaKey
	Reason Reason
	Err    error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s: %s", e.Key, e.Reason.describe())
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// AsDispatchError normalizes any error returned by a Dispatcher into a
// *DispatchError for key. It returns nil for a nil error.
func AsDispatchError(key model.MediaKey, err error) *DispatchError {
	if err == nil {
		return nil
	}
	var de *DispatchError
	if errors.As(err, &de) {
		return de
	}
	reason := ReasonFailed
	switch {
	case errors.Is(err, ErrUnsupported):
		reason = ReasonUnsupported
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		reason = ReasonCanceled
	}
	return &DispatchError{Key: key, Reason: reason, Err: err}
}

type Options struct {
	Backend      string
	UinputDevice string
	Timeout      time.Duration
}

// New builds the dispatcher for opts.Backend. The result is not serialized;
// wrap it with Serialize before sharing it between requests.
func New(logger *zap.Logger, opts Options) (Dispatcher, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultDispatchTimeout
	}
	if opts.UinputDevice == "" {
		opts.UinputDevice = DefaultUinputDevice
	}

	backend := opts.Backend
	if backend == "" || backend == BackendAuto {
		backend = defaultBackend
	}

	logger = logger.With(zap.String("backend", backend))

	switch backend {
	case BackendNative:
		return newNative(logger, opts)
	case BackendXdotool:
		d := NewXdotool(logger, opts.Timeout)
		if err := d.Available(); err != nil {
			logger.Warn("xdotool not found, key presses will fail until it is installed", zap.Error(err))
		}
		return d, nil
	case BackendUinput:
		return newUinput(logger, opts.UinputDevice)
	case BackendNoop:
		return NewNoop(logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

// Close releases backend resources if d holds any.
func Close(d Dispatcher) error {
	if c, ok := d.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Noop logs key presses without touching the host.
type Noop struct {
	logger *zap.Logger
}

func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) Dispatch(ctx context.Context, key model.MediaKey) error {
	n.logger.Info("dry run key press", zap.String("key", string(key)))
	return nil
}

type unsupported struct{}

func (unsupported) Dispatch(ctx context.Context, key model.MediaKey) error {
	return &DispatchError{Key: key, Reason: ReasonUnsupported, Err: ErrUnsupported}
}
