//go:build linux

package volume

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
)

var amixerPercent = regexp.MustCompile(`\[(\d+)%\]`)

// systemVolume reads the Master control through amixer.
func systemVolume(ctx context.Context) (int, error) {
	out, err := exec.CommandContext(ctx, "amixer", "get", "Master").Output()
	if err != nil {
		return 0, fmt.Errorf("run amixer: %w", err)
	}
	return parseAmixer(out)
}

func parseAmixer(out []byte) (int, error) {
	matches := amixerPercent.FindSubmatch(out)
	if len(matches) < 2 {
		return 0, fmt.Errorf("could not parse amixer output")
	}
	vol, err := strconv.Atoi(string(matches[1]))
	if err != nil {
		return 0, fmt.Errorf("parse amixer percent: %w", err)
	}
	return vol, nil
}
