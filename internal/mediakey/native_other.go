//go:build !linux && !windows && !darwin

package mediakey

import "go.uber.org/zap"

const defaultBackend = BackendNative

func newNative(logger *zap.Logger, opts Options) (Dispatcher, error) {
	logger.Warn("no native media key support on this platform")
	return unsupported{}, nil
}
