package installation

import (
	"fmt"
	"time"
)

// MicState is the microphone indicator.
type MicState int

const (
	MicOff MicState = iota
	MicListening
	MicBlocked
)

func (m MicState) String() string {
	switch m {
	case MicOff:
		return "OFF"
	case MicListening:
		return "LISTENING"
	case MicBlocked:
		return "BLOCKED"
	}
	return fmt.Sprintf("MicState(%d)", int(m))
}

// TrackerState is the hand tracker indicator.
type TrackerState int

const (
	TrackerOff TrackerState = iota
	TrackerActive
	TrackerBlocked
)

func (t TrackerState) String() string {
	switch t {
	case TrackerOff:
		return "OFF"
	case TrackerActive:
		return "ACTIVE"
	case TrackerBlocked:
		return "BLOCKED"
	}
	return fmt.Sprintf("TrackerState(%d)", int(t))
}

// Status is the snapshot shown in the window title and pushed to web clients.
type Status struct {
	Shape    string    `json:"shape"`
	Sound    string    `json:"sound"`
	Mic      string    `json:"mic"`
	System   string    `json:"system"`
	Tracker  string    `json:"tracker"`
	Playback string    `json:"playback"`
	Unlocked bool      `json:"unlocked"`
	RotX     float64   `json:"rotX"`
	RotY     float64   `json:"rotY"`
	Zoom     float64   `json:"zoom"`
	Noise    float64   `json:"noiseFloor"`
	Onset    time.Time `json:"lastOnset"`
	Flash    bool      `json:"flash"`
}

func soundLabel(muted bool) string {
	if muted {
		return "MUTED"
	}
	return "NATURE"
}

func systemLabel(tracking bool) string {
	if tracking {
		return "TRACKING"
	}
	return "SEARCHING"
}

// Title renders the status as a single window-title line.
func (s Status) Title() string {
	t := fmt.Sprintf("ambient | %s | SOUND: %s | MIC: %s | SYSTEM: %s | CAM: %s | X:%.1f Y:%.1f %.2fx",
		s.Shape, s.Sound, s.Mic, s.System, s.Tracker, s.RotX, s.RotY, s.Zoom)
	if s.Flash {
		t += " *"
	}
	if !s.Unlocked {
		t += " | click or press space to start"
	}
	return t
}

// sameDisplay reports whether two snapshots would render identically.
func (s Status) sameDisplay(o Status) bool {
	return s.Shape == o.Shape && s.Sound == o.Sound && s.Mic == o.Mic && s.System == o.System &&
		s.Tracker == o.Tracker &&
		s.Playback == o.Playback && s.Unlocked == o.Unlocked && s.Flash == o.Flash &&
		fmt.Sprintf("%.1f %.1f %.2f", s.RotX, s.RotY, s.Zoom) == fmt.Sprintf("%.1f %.1f %.2f", o.RotX, o.RotY, o.Zoom)
}
