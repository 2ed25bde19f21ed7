//go:build linux

package mediakey

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/vmorsell/gesture-control/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// linux/uinput.h and linux/input-event-codes.h
const (
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502

	evSyn     = 0x00
	evKey     = 0x01
	synReport = 0x00

	busVirtual = 0x06

	uinputDeviceName = "gesture-control media keys"

	// udev needs a moment to announce a new device before events reach listeners.
	uinputSettleDelay = 250 * time.Millisecond
)

var uinputKeyCodes = map[model.MediaKey]uint16{
	model.KeyPlayPause:     164, // KEY_PLAYPAUSE
	model.KeyNextTrack:     163, // KEY_NEXTSONG
	model.KeyPreviousTrack: 165, // KEY_PREVIOUSSONG
	model.KeyVolumeUp:      115, // KEY_VOLUMEUP
	model.KeyVolumeDown:    114, // KEY_VOLUMEDOWN
}

// struct uinput_user_dev
type uinputUserDev struct {
	Name         [80]byte
	BusType      uint16
	Vendor       uint16
	Product      uint16
	Version      uint16
	FFEffectsMax uint32
	AbsMax       [64]int32
	AbsMin       [64]int32
	AbsFuzz      [64]int32
	AbsFlat      [64]int32
}

// struct input_event
type inputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// Uinput presses keys through a virtual keyboard. The device is created on the
// first key press and kept until Close.
type Uinput struct {
	logger *zap.Logger
	path   string

	mu sync.Mutex
	fd int
}

func newUinput(logger *zap.Logger, path string) (Dispatcher, error) {
	return &Uinput{logger: logger, path: path, fd: -1}, nil
}

func (u *Uinput) Dispatch(ctx context.Context, key model.MediaKey) error {
	code, ok := uinputKeyCodes[key]
	if !ok {
		return &DispatchError{Key: key, Reason: ReasonUnsupported, Err: fmt.Errorf("no key code for %q", key)}
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if u.fd < 0 {
		fd, err := u.create()
		if err != nil {
			return &DispatchError{Key: key, Reason: ReasonUnavailable, Err: err}
		}
		u.fd = fd
		select {
		case <-time.After(uinputSettleDelay):
		case <-ctx.Done():
			return &DispatchError{Key: key, Reason: ReasonCanceled, Err: ctx.Err()}
		}
	}

	if err := u.press(code); err != nil {
		return &DispatchError{Key: key, Reason: ReasonFailed, Err: err}
	}
	u.logger.Debug("key pressed", zap.String("key", string(key)), zap.Uint16("code", code))
	return nil
}

func (u *Uinput) create() (int, error) {
	fd, err := unix.Open(u.path, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("open %s: %w", u.path, err)
	}

	if err := u.setup(fd); err != nil {
		unix.Close(fd)
		return -1, err
	}

	u.logger.Info("created virtual keyboard", zap.String("device", u.path))
	return fd, nil
}

func (u *Uinput) setup(fd int) error {
	for _, bit := range []int{evKey, evSyn} {
		if err := unix.IoctlSetInt(fd, uiSetEvBit, bit); err != nil {
			return fmt.Errorf("set event bit %d: %w", bit, err)
		}
	}
	for _, code := range uinputKeyCodes {
		if err := unix.IoctlSetInt(fd, uiSetKeyBit, int(code)); err != nil {
			return fmt.Errorf("set key bit %d: %w", code, err)
		}
	}

	dev := uinputUserDev{
		BusType: busVirtual,
		Vendor:  0x1,
		Product: 0x1,
		Version: 1,
	}
	copy(dev.Name[:], uinputDeviceName)

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.NativeEndian, &dev); err != nil {
		return fmt.Errorf("encode device: %w", err)
	}
	if _, err := unix.Write(fd, buf.Bytes()); err != nil {
		return fmt.Errorf("write device: %w", err)
	}

	if err := unix.IoctlSetInt(fd, uiDevCreate, 0); err != nil {
		return fmt.Errorf("create device: %w", err)
	}
	return nil
}

func (u *Uinput) press(code uint16) error {
	events := []inputEvent{
		{Type: evKey, Code: code, Value: 1},
		{Type: evSyn, Code: synReport},
		{Type: evKey, Code: code, Value: 0},
		{Type: evSyn, Code: synReport},
	}

	var buf bytes.Buffer
	for i := range events {
		if err := binary.Write(&buf, binary.NativeEndian, &events[i]); err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
	}
	if _, err := unix.Write(u.fd, buf.Bytes()); err != nil {
		return fmt.Errorf("write events: %w", err)
	}
	return nil
}

func (u *Uinput) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.fd < 0 {
		return nil
	}
	fd := u.fd
	u.fd = -1

	if err := unix.IoctlSetInt(fd, uiDevDestroy, 0); err != nil {
		u.logger.Warn("failed to destroy virtual keyboard", zap.Error(err))
	}
	if err := unix.Close(fd); err != nil {
		return fmt.Errorf("close %s: %w", u.path, err)
	}
	return nil
}
