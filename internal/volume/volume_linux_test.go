//go:build linux

package volume

import "testing"

func TestParseAmixer(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    int
		wantErr bool
	}{
		{
			name: "stereo",
			out: `Simple mixer control 'Master',0
  Capabilities: pvolume pswitch pswitch-joined
  Playback channels: Front Left - Front Right
  Limits: Playback 0 - 65536
  Mono:
  Front Left: Playback 42597 [65%] [on]
  Front Right: Playback 42597 [65%] [on]`,
			want: 65,
		},
		{
			name: "mono",
			out:  "  Mono: Playback 31 [100%] [0.00dB] [on]",
			want: 100,
		},
		{
			name:    "no percent",
			out:     "amixer: Unable to find simple control 'Master',0",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAmixer([]byte(tt.out))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAmixer error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseAmixer = %d, want %d", got, tt.want)
			}
		})
	}
}
