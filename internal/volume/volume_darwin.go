//go:build darwin

package volume

import (
	"context"
	"fmt"
	"os/exec"
)

func systemVolume(ctx context.Context) (int, error) {
	out, err := exec.CommandContext(ctx, "osascript", "-e", "output volume of (get volume settings)").Output()
	if err != nil {
		return 0, fmt.Errorf("run osascript: %w", err)
	}
	var vol int
	if _, err := fmt.Sscanf(string(out), "%d", &vol); err != nil {
		return 0, fmt.Errorf("parse osascript output: %w", err)
	}
	return vol, nil
}
