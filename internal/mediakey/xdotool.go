package mediakey

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/vmorsell/gesture-control/pkg/model"
	"go.uber.org/zap"
)

// X11 keysyms for the media keys.
var xdotoolKeysyms = map[model.MediaKey]string{
	model.KeyPlayPause:     "XF86AudioPlay",
	model.KeyNextTrack:     "XF86AudioNext",
	model.KeyPreviousTrack: "XF86AudioPrev",
	model.KeyVolumeUp:      "XF86AudioRaiseVolume",
	model.KeyVolumeDown:    "XF86AudioLowerVolume",
}

// Command presses keys by running an external tool once per key.
type Command struct {
	logger  *zap.Logger
	binary  string
	args    func(keysym string) []string
	keysyms map[model.MediaKey]string
	timeout time.Duration
}

// NewXdotool returns a dispatcher that shells out to `xdotool key <keysym>`.
func NewXdotool(logger *zap.Logger, timeout time.Duration) *Command {
	return &Command{
		logger:  logger,
		binary:  "xdotool",
		args:    func(keysym string) []string { return []string{"key", keysym} },
		keysyms: xdotoolKeysyms,
		timeout: timeout,
	}
}

// Available reports whether the tool can be found on PATH.
func (c *Command) Available() error {
	if _, err := exec.LookPath(c.binary); err != nil {
		return fmt.Errorf("look up %s: %w", c.binary, err)
	}
	return nil
}

func (c *Command) Dispatch(ctx context.Context, key model.MediaKey) error {
	keysym, ok := c.keysyms[key]
	if !ok {
		return &DispatchError{Key: key, Reason: ReasonUnsupported, Err: fmt.Errorf("no keysym for %q", key)}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, c.binary, c.args(keysym)...).CombinedOutput()
	if err != nil {
		reason := ReasonFailed
		switch {
		case errors.Is(err, exec.ErrNotFound):
			reason = ReasonUnavailable
		case ctx.Err() != nil:
			reason = ReasonCanceled
			err = fmt.Errorf("%w: %w", ctx.Err(), err)
		}
		if msg := strings.TrimSpace(string(out)); msg != "" {
			err = fmt.Errorf("%s %s: %w: %s", c.binary, keysym, err, msg)
		} else {
			err = fmt.Errorf("%s %s: %w", c.binary, keysym, err)
		}
		return &DispatchError{Key: key, Reason: reason, Err: err}
	}

	c.logger.Debug("key pressed", zap.String("key", string(key)), zap.String("keysym", keysym))
	return nil
}
