//go:build !linux

package mediakey

import (
	"fmt"

	"go.uber.org/zap"
)

func newUinput(logger *zap.Logger, path string) (Dispatcher, error) {
	return nil, fmt.Errorf("uinput backend: %w", ErrUnsupported)
}
