//go:build !linux && !darwin

package volume

import (
	"context"
	"errors"
	"testing"
)

func TestSystem_Unsupported(t *testing.T) {
	if _, err := (System{}).Current(context.Background()); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}
