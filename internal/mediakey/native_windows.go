//go:build windows

package mediakey

import (
	"context"
	"fmt"

	"github.com/vmorsell/gesture-control/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

const defaultBackend = BackendNative

var (
	user32         = windows.NewLazySystemDLL("user32.dll")
	procKeybdEvent = user32.NewProc("keybd_event")
)

const (
	keyeventfExtendedKey = 0x0001
	keyeventfKeyUp       = 0x0002
)

// Virtual-key codes, see winuser.h.
var virtualKeys = map[model.MediaKey]byte{
	model.KeyPlayPause:     0xB3, // VK_MEDIA_PLAY_PAUSE
	model.KeyNextTrack:     0xB0, // VK_MEDIA_NEXT_TRACK
	model.KeyPreviousTrack: 0xB1, // VK_MEDIA_PREV_TRACK
	model.KeyVolumeUp:      0xAF, // VK_VOLUME_UP
	model.KeyVolumeDown:    0xAE, // VK_VOLUME_DOWN
}

type keybdEvent struct {
	logger *zap.Logger
}

func newNative(logger *zap.Logger, opts Options) (Dispatcher, error) {
	return &keybdEvent{logger: logger}, nil
}

func (k *keybdEvent) Dispatch(ctx context.Context, key model.MediaKey) error {
	vk, ok := virtualKeys[key]
	if !ok {
		return &DispatchError{Key: key, Reason: ReasonUnsupported, Err: fmt.Errorf("no virtual key for %q", key)}
	}
	if err := procKeybdEvent.Find(); err != nil {
		return &DispatchError{Key: key, Reason: ReasonUnavailable, Err: fmt.Errorf("load keybd_event: %w", err)}
	}

	// keybd_event has no return value; Call's error is the stale last-error.
	procKeybdEvent.Call(uintptr(vk), 0, keyeventfExtendedKey, 0)
	procKeybdEvent.Call(uintptr(vk), 0, keyeventfExtendedKey|keyeventfKeyUp, 0)

	k.logger.Debug("key pressed", zap.String("key", string(key)), zap.Uint8("vk", vk))
	return nil
}
