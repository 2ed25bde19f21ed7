//go:build linux

package mediakey

import (
	"context"
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"

	"github.com/vmorsell/gesture-control/pkg/model"
	"go.uber.org/zap/zaptest"
)

func TestUinputUserDev_Size(t *testing.T) {
	// sizeof(struct uinput_user_dev)
	if got := binary.Size(uinputUserDev{}); got != 1116 {
		t.Errorf("expected 1116 bytes, got %d", got)
	}
}

func TestUinput_MissingDevice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uinput")
	d, err := newUinput(zaptest.NewLogger(t), path)
	if err != nil {
		t.Fatalf("newUinput failed: %v", err)
	}
	defer Close(d)

	err = d.Dispatch(context.Background(), model.KeyPlayPause)
	var de *DispatchError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DispatchError, got %v", err)
	}
	if de.Reason != ReasonUnavailable {
		t.Errorf("expected reason unavailable, got %q", de.Reason)
	}
}

func TestUinput_CloseWithoutDevice(t *testing.T) {
	d, _ := newUinput(zaptest.NewLogger(t), DefaultUinputDevice)
	if err := Close(d); err != nil {
		t.Errorf("Close on unused device failed: %v", err)
	}
}

func TestUinputKeyCodes_CoverAllKeys(t *testing.T) {
	for key := range xdotoolKeysyms {
		if _, ok := uinputKeyCodes[key]; !ok {
			t.Errorf("missing key code for %q", key)
		}
	}
}
