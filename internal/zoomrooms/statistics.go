package zoomrooms

import "time"

// Statistics keys for in-call entries.
const (
	StatActiveMeeting = "Meeting Number (Active)"

	ControlMicrophoneMute = "Call Control#Microphone Mute"
	ControlCameraMute     = "Call Control#Video Camera Mute"
	ControlMoveUp         = "Video Camera#Move Up"
	ControlMoveDown       = "Video Camera#Move Down"
	ControlMoveLeft       = "Video Camera#Move Left"
	ControlMoveRight      = "Video Camera#Move Right"
)

// ControlType distinguishes toggles from momentary buttons.
type ControlType string

const (
	Switch ControlType = "switch"
	Button ControlType = "button"
)

// Control is an action a caller may trigger.
type Control struct {
	Name         string      `json:"name"`
	Type         ControlType `json:"type"`
	Value        string      `json:"value"`
	Label        string      `json:"label,omitempty"`
	LabelPressed string      `json:"label_pressed,omitempty"`
	LabelOn      string      `json:"label_on,omitempty"`
	LabelOff     string      `json:"label_off,omitempty"`
}

func newSwitch(name string, on bool) Control {
	value := "0"
	if on {
		value = "1"
	}
	return Control{Name: name, Type: Switch, Value: value, LabelOn: "On", LabelOff: "Off"}
}

func newButton(name, label string) Control {
	return Control{Name: name, Type: Button, Value: "0", Label: label, LabelPressed: label}
}

// EndpointStatistics summarizes the active call.
type EndpointStatistics struct {
	InCall          bool   `json:"in_call"`
	CallID          string `json:"call_id,omitempty"`
	MicrophoneMuted bool   `json:"microphone_muted"`
}

// Snapshot is one complete status poll. It is rebuilt from scratch each time.
type Snapshot struct {
	State       SessionState       `json:"state"`
	Endpoint    EndpointStatistics `json:"endpoint"`
	Statistics  map[string]string  `json:"statistics"`
	Controls    []Control          `json:"controls"`
	CollectedAt time.Time          `json:"collected_at"`
}

// Control returns the named control.
func (s *Snapshot) Control(name string) (Control, bool) {
	for _, c := range s.Controls {
		if c.Name == name {
			return c, true
		}
	}
	return Control{}, false
}
