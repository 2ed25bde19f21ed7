package model

// Action is a caller-supplied media control intent.
type Action string

const (
	ActionPlay     Action = "play"
	ActionPause    Action = "pause"
	ActionNext     Action = "next"
	ActionPrevious Action = "previous"
	ActionVolUp    Action = "vol_up"
	ActionVolDown  Action = "vol_down"
)

// MediaKey identifies a hardware-style media key synthesized on the host.
type MediaKey string

const (
	KeyPlayPause     MediaKey = "play-pause"
	KeyNextTrack     MediaKey = "next-track"
	KeyPreviousTrack MediaKey = "previous-track"
	KeyVolumeUp      MediaKey = "volume-up"
	KeyVolumeDown    MediaKey = "volume-down"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusOnline  = "online"
)

const (
	EventTypeDispatch = "dispatch"
	EventTypeVolume   = "volume"
	EventTypeResult   = "result"
	EventTypeError    = "error"
)

// ControlRequest is the body of POST /control and of inbound WebSocket frames.
// Action is a pointer so that an explicit null and a missing field both decode to nil.
type ControlRequest struct {
	Action *string `json:"action"`
}

type ControlResponse struct {
	Status  string   `json:"status"`
	Action  Action   `json:"action,omitempty"`
	Key     MediaKey `json:"key,omitempty"`
	Message string   `json:"message,omitempty"`
	Reason  string   `json:"reason,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type VolumeResponse struct {
	Status  string `json:"status"`
	Volume  *int   `json:"volume,omitempty"`
	Message string `json:"message,omitempty"`
}

// Event is pushed to WebSocket clients.
type Event struct {
	Type    string   `json:"type"`
	Status  string   `json:"status,omitempty"`
	Action  Action   `json:"action,omitempty"`
	Key     MediaKey `json:"key,omitempty"`
	Volume  *int     `json:"volume,omitempty"`
	Message string   `json:"message,omitempty"`
	Reason  string   `json:"reason,omitempty"`
}
