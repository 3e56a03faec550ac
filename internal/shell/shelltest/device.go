package shelltest

import (
	"fmt"
	"strings"
	"sync"
)

// Call states as the device prints them.
const (
	StatusNotInMeeting = "NOT_IN_MEETING"
	StatusConnecting   = "CONNECTING_MEETING"
	StatusInMeeting    = "IN_MEETING"
)

const (
	blockOK    = "** end\r\n\r\nOK\r\n"
	blockError = "** end\r\n\r\nERROR\r\n"
)

// Device simulates a room's shell well enough to drive the controller.
type Device struct {
	mu sync.Mutex

	Status      string
	MeetingID   string
	MicMuted    bool
	CameraMuted bool

	RejectStart bool
	RejectJoin  bool

	// SettleAfter moves a connecting device to SettleTo after that many
	// status queries. Zero keeps it connecting forever.
	SettleAfter int
	SettleTo    string

	RoomName string
	Version  string

	connectingPolls int
	moves           []string
}

// NewDevice returns an idle room.
func NewDevice() *Device {
	return &Device{
		Status:   StatusNotInMeeting,
		RoomName: "Board Room",
		Version:  "5.17.5 (4006)",
	}
}

// SetStatus changes the call state.
func (d *Device) SetStatus(status, meetingID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Status = status
	d.MeetingID = meetingID
	d.connectingPolls = 0
}

// CurrentStatus returns the call state.
func (d *Device) CurrentStatus() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Status
}

// Mutes returns the microphone and camera mute flags.
func (d *Device) Mutes() (mic, camera bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.MicMuted, d.CameraMuted
}

// Moves returns the camera moves received.
func (d *Device) Moves() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.moves...)
}

// Respond answers one command. It satisfies FakeGateway.Respond.
func (d *Device) Respond(command string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cmd := strings.ToLower(strings.TrimSpace(command))
	key, arg, _ := strings.Cut(cmd, ":")
	arg = strings.TrimSpace(arg)

	switch {
	case cmd == "zstatus call status":
		return d.callStatusLocked(), nil

	case cmd == "zcommand call info":
		return fmt.Sprintf("*r InfoResult Info meeting_id: %s\r\n*r InfoResult Info is_webinar: off\r\n%s",
			d.MeetingID, blockOK), nil

	case key == "zcommand dial start meetingnumber":
		if d.RejectStart {
			return "*r DialStartResult (status=Error):\r\n" + blockError, nil
		}
		d.enterMeetingLocked(meetingNumber(arg))
		return "*r DialStartResult (status=OK):\r\n" + blockOK, nil

	case key == "zcommand dial join meetingnumber":
		if d.RejectJoin {
			return "*r DialJoinResult (status=Error):\r\n" + blockError, nil
		}
		d.enterMeetingLocked(meetingNumber(arg))
		return "*r DialJoinResult (status=OK):\r\n" + blockOK, nil

	case cmd == "zcommand call disconnect", cmd == "zcommand call leave":
		d.Status = StatusNotInMeeting
		d.MeetingID = ""
		return "*r CallDisconnectResult (status=OK):\r\n" + blockOK, nil

	case key == "zconfiguration call microphone mute":
		if arg != "" {
			d.MicMuted = arg == "on"
		}
		return fmt.Sprintf("*c zConfiguration Call Microphone Mute: %s\r\n%s", onOff(d.MicMuted), blockOK), nil

	case key == "zconfiguration call camera mute":
		if arg != "" {
			d.CameraMuted = arg == "on"
		}
		return fmt.Sprintf("*c zConfiguration Call Camera Mute: %s\r\n%s", onOff(d.CameraMuted), blockOK), nil

	case key == "zcommand call cameracontrol id":
		fields := strings.Fields(cmd)
		d.moves = append(d.moves, strings.TrimPrefix(fields[len(fields)-1], "action:"))
		return "*r CameraControl (status=OK):\r\n" + blockOK, nil

	case cmd == "zstatus audio input line":
		return "*s Audio Input Line 1 Alias: Mic\r\n" +
			"*s Audio Input Line 1 Name: Ceiling Mic\r\n" +
			"*s Audio Input Line 1 Selected: on\r\n" +
			"*s Audio Input Line 1 id: {0.0.1.00000000}\r\n" + blockOK, nil

	case cmd == "zstatus audio output line":
		return "*s Audio Output Line 1 Name: Soundbar\r\n" +
			"*s Audio Output Line 1 Selected: on\r\n" + blockOK, nil

	case cmd == "zstatus video camera line":
		return "*s Video Camera Line 1 id: 00#8&2cc2822b&0&0000\r\n" +
			"*s Video Camera Line 1 Name: Logi Rally Camera\r\n" +
			"*s Video Camera Line 1 Selected: on\r\n" +
			"*s Video Camera Line 2 ptzComId: -1\r\n" + blockOK, nil

	case cmd == "zstatus systemunit":
		return fmt.Sprintf("*s SystemUnit room_version: %s\r\n"+
			"*s SystemUnit platform: Windows 10\r\n"+
			"*s SystemUnit meeting_number: 9998887777\r\n"+
			"*s SystemUnit room_info room_name: %s\r\n"+
			"*s SystemUnit room_info account_email: room@example.com\r\n"+
			"*s SystemUnit room_info is_auto_answer_enabled: off\r\n%s",
			d.Version, d.RoomName, blockOK), nil
	}

	return "ERROR\r\n", nil
}

func (d *Device) callStatusLocked() string {
	status := d.Status
	if status == StatusConnecting && d.SettleAfter > 0 {
		d.connectingPolls++
		if d.connectingPolls > d.SettleAfter {
			d.Status = d.SettleTo
			d.connectingPolls = 0
			status = d.Status
		}
	}
	return fmt.Sprintf("*s Call Status: %s\r\n%s", status, blockOK)
}

func (d *Device) enterMeetingLocked(id string) {
	d.Status = StatusInMeeting
	d.MeetingID = id
}

func meetingNumber(arg string) string {
	fields := strings.Fields(arg)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
