//go:build darwin

package mediakey

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework AppKit -framework CoreGraphics -framework ApplicationServices

#import <AppKit/AppKit.h>
#include <ApplicationServices/ApplicationServices.h>

bool hasAccessibilityPermissions() {
    return AXIsProcessTrusted();
}

// Media keys are delivered as NSSystemDefined events with subtype 8 and the
// NX key type packed into data1.
void postMediaKey(int keyType) {
    @autoreleasepool {
        for (int down = 1; down >= 0; down--) {
            NSEventModifierFlags flags = down ? 0xa00 : 0xb00;
            NSInteger data1 = (keyType << 16) | ((down ? 0xa : 0xb) << 8);
            NSEvent *ev = [NSEvent otherEventWithType:NSEventTypeSystemDefined
                                             location:NSZeroPoint
                                        modifierFlags:flags
                                            timestamp:0
                                         windowNumber:0
                                              context:nil
                                              subtype:8
                                                data1:data1
                                                data2:-1];
            CGEventPost(kCGHIDEventTap, [ev CGEvent]);
        }
    }
}
*/
import "C"

import (
	"context"
	"errors"
	"fmt"

	"github.com/vmorsell/gesture-control/pkg/model"
	"go.uber.org/zap"
)

const defaultBackend = BackendNative

// NX_KEYTYPE_* from IOKit/hidsystem/ev_keymap.h
var nxKeyTypes = map[model.MediaKey]C.int{
	model.KeyVolumeUp:      0,  // NX_KEYTYPE_SOUND_UP
	model.KeyVolumeDown:    1,  // NX_KEYTYPE_SOUND_DOWN
	model.KeyPlayPause:     16, // NX_KEYTYPE_PLAY
	model.KeyNextTrack:     17, // NX_KEYTYPE_NEXT
	model.KeyPreviousTrack: 18, // NX_KEYTYPE_PREVIOUS
}

var errNotTrusted = errors.New("process is not trusted for accessibility")

type systemDefined struct {
	logger *zap.Logger
}

func newNative(logger *zap.Logger, opts Options) (Dispatcher, error) {
	if !bool(C.hasAccessibilityPermissions()) {
		logger.Warn("accessibility permission missing, grant it in System Settings > Privacy & Security")
	}
	return &systemDefined{logger: logger}, nil
}

func (s *systemDefined) Dispatch(ctx context.Context, key model.MediaKey) error {
	keyType, ok := nxKeyTypes[key]
	if !ok {
		return &DispatchError{Key: key, Reason: ReasonUnsupported, Err: fmt.Errorf("no NX key type for %q", key)}
	}
	if !bool(C.hasAccessibilityPermissions()) {
		return &DispatchError{Key: key, Reason: ReasonUnavailable, Err: errNotTrusted}
	}

	C.postMediaKey(keyType)

	s.logger.Debug("key pressed", zap.String("key", string(key)), zap.Int("nx_key_type", int(keyType)))
	return nil
}
