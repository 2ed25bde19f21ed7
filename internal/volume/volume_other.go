//go:build !linux && !darwin

package volume

import "context"

// systemVolume returns ErrUnsupported; reading volume is not implemented for
// Windows and other platforms.
func systemVolume(ctx context.Context) (int, error) {
	return 0, ErrUnsupported
}
