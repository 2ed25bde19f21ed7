//go:build linux

package mediakey

import "go.uber.org/zap"

const defaultBackend = BackendXdotool

func newNative(logger *zap.Logger, opts Options) (Dispatcher, error) {
	return newUinput(logger, opts.UinputDevice)
}
