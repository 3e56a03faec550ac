package zoomrooms

import (
	"context"
	"errors"
	"testing"

	"github.com/zrctl/internal/shell/shelltest"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		want       SessionState
		recognized bool
	}{
		{"in meeting", "*s Call Status: IN_MEETING\r\n** end\r\n\r\nOK\r\n", InMeeting, true},
		{"connecting", "*s Call Status: CONNECTING_MEETING\r\n** end\r\n\r\nOK\r\n", Connecting, true},
		{"idle", "*s Call Status: NOT_IN_MEETING\r\n** end\r\n\r\nOK\r\n", NotInMeeting, true},
		{"logged out", "*s Call Status: LOGGED_OUT\r\n** end\r\n", NotInMeeting, true},
		{"mixed case", "*s call status: In_Meeting\r\n** end\r\n", InMeeting, true},
		{"unsolicited line first", "*e Sharing: on\r\n*s Call Status: IN_MEETING\r\n** end\r\n", InMeeting, true},
		{"unknown text", "*s Call Status: EN_REUNION\r\n** end\r\n", NotInMeeting, false},
		{"no marker", "** end\r\n\r\nOK\r\n", NotInMeeting, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, recognized := ClassifyStatus(tt.response)
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
			if recognized != tt.recognized {
				t.Errorf("Expected recognized=%v, got %v", tt.recognized, recognized)
			}
		})
	}
}

func TestSessionStateText(t *testing.T) {
	for _, s := range []SessionState{NotInMeeting, Connecting, InMeeting} {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText failed: %v", err)
		}
		var back SessionState
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) failed: %v", text, err)
		}
		if back != s {
			t.Errorf("Expected %v, got %v", s, back)
		}
	}

	var s SessionState
	if err := s.UnmarshalText([]byte("dialing")); err == nil {
		t.Error("Expected error for unknown state")
	}
}

func TestHangupNotInMeetingIsNoop(t *testing.T) {
	session, gw, _ := newTestSession(t, shelltest.NewDevice())

	if err := session.Hangup(context.Background()); err != nil {
		t.Fatalf("Hangup failed: %v", err)
	}
	cmds := gw.Commands()
	if len(cmds) != 1 || cmds[0] != cmdCallStatus {
		t.Errorf("Expected only the status query, got %v", cmds)
	}
}

func TestHangupUsesRoleCommand(t *testing.T) {
	t.Run("host", func(t *testing.T) {
		dev := shelltest.NewDevice()
		session, gw, _ := newTestSession(t, dev)
		if _, err := session.Dial(context.Background(), "123456789@zoomcrc.com"); err != nil {
			t.Fatalf("Dial failed: %v", err)
		}

		if err := session.Hangup(context.Background()); err != nil {
			t.Fatalf("Hangup failed: %v", err)
		}
		if gw.Count(cmdCallDisconnect) != 1 || gw.Count(cmdCallLeave) != 0 {
			t.Errorf("Expected host disconnect, got %v", gw.Commands())
		}
		if session.Role() != Participant {
			t.Errorf("Expected role cleared after hangup, got %v", session.Role())
		}
		if dev.CurrentStatus() != shelltest.StatusNotInMeeting {
			t.Errorf("Expected device idle, got %s", dev.CurrentStatus())
		}
	})

	t.Run("participant", func(t *testing.T) {
		dev := shelltest.NewDevice()
		dev.RejectStart = true
		session, gw, _ := newTestSession(t, dev)
		if _, err := session.Dial(context.Background(), "123456789@zoomcrc.com"); err != nil {
			t.Fatalf("Dial failed: %v", err)
		}

		if err := session.Hangup(context.Background()); err != nil {
			t.Fatalf("Hangup failed: %v", err)
		}
		if gw.Count(cmdCallLeave) != 1 || gw.Count(cmdCallDisconnect) != 0 {
			t.Errorf("Expected participant leave, got %v", gw.Commands())
		}
	})

	t.Run("connecting", func(t *testing.T) {
		dev := shelltest.NewDevice()
		dev.SetStatus(shelltest.StatusConnecting, "")
		session, gw, _ := newTestSession(t, dev)

		if err := session.Hangup(context.Background()); err != nil {
			t.Fatalf("Hangup failed: %v", err)
		}
		if gw.Count(cmdCallLeave) != 1 {
			t.Errorf("Expected leave while connecting, got %v", gw.Commands())
		}
	})
}

func TestMuteRequiresMeeting(t *testing.T) {
	ops := map[string]func(*Session) error{
		"microphone": func(s *Session) error { return s.SetMicrophoneMute(context.Background(), true) },
		"camera":     func(s *Session) error { return s.SetCameraMute(context.Background(), true) },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			session, gw, _ := newTestSession(t, shelltest.NewDevice())

			err := op(session)
			if !errors.Is(err, ErrInvalidState) {
				t.Fatalf("Expected ErrInvalidState, got %v", err)
			}
			if n := gw.Count("zconfiguration"); n != 0 {
				t.Errorf("Expected no configuration commands, got %v", gw.Commands())
			}
		})
	}
}

func TestMuteInMeeting(t *testing.T) {
	dev := shelltest.NewDevice()
	dev.SetStatus(shelltest.StatusInMeeting, "123")
	session, gw, _ := newTestSession(t, dev)
	ctx := context.Background()

	if err := session.SetMicrophoneMute(ctx, true); err != nil {
		t.Fatalf("SetMicrophoneMute failed: %v", err)
	}
	if err := session.SetCameraMute(ctx, true); err != nil {
		t.Fatalf("SetCameraMute failed: %v", err)
	}
	if mic, cam := dev.Mutes(); !mic || !cam {
		t.Errorf("Expected both muted, got mic=%v camera=%v", mic, cam)
	}
	if gw.Count(cmdMicrophoneMute+": on") != 1 {
		t.Errorf("Expected microphone mute command, got %v", gw.Commands())
	}

	state, err := session.MuteState(ctx)
	if err != nil {
		t.Fatalf("MuteState failed: %v", err)
	}
	if state != Muted {
		t.Errorf("Expected muted, got %s", state)
	}

	if err := session.SetMicrophoneMute(ctx, false); err != nil {
		t.Fatalf("SetMicrophoneMute failed: %v", err)
	}
	if state, _ := session.MuteState(ctx); state != Unmuted {
		t.Errorf("Expected unmuted, got %s", state)
	}
	if muted, _ := session.CameraMuted(ctx); !muted {
		t.Error("Expected camera to stay muted")
	}
}

func TestMuteStateUnknownOutsideMeeting(t *testing.T) {
	session, gw, _ := newTestSession(t, shelltest.NewDevice())

	state, err := session.MuteState(context.Background())
	if err != nil {
		t.Fatalf("MuteState failed: %v", err)
	}
	if state != MuteUnknown {
		t.Errorf("Expected unknown, got %s", state)
	}
	if gw.Count("zconfiguration") != 0 {
		t.Errorf("Expected no mute query, got %v", gw.Commands())
	}
}

func TestParseMute(t *testing.T) {
	tests := []struct {
		response string
		want     bool
	}{
		{"*c zConfiguration Call Microphone Mute: on\r\n** end\r\n\r\nOK\r\n", true},
		{"*c zConfiguration Call Microphone Mute: off\r\n** end\r\n\r\nOK\r\n", false},
		{"*c zConfiguration Call Camera Mute: ON\r\n** end\r\n", true},
		{"** end\r\n", false},
	}
	for _, tt := range tests {
		if got := parseMute(tt.response); got != tt.want {
			t.Errorf("parseMute(%q) = %v, want %v", tt.response, got, tt.want)
		}
	}
}

func TestCallStatus(t *testing.T) {
	dev := shelltest.NewDevice()
	session, _, _ := newTestSession(t, dev)
	ctx := context.Background()

	status, err := session.CallStatus(ctx, "abc")
	if err != nil {
		t.Fatalf("CallStatus failed: %v", err)
	}
	if status.State != CallDisconnected || status.CallID != "abc" {
		t.Errorf("Unexpected status %+v", status)
	}

	dev.SetStatus(shelltest.StatusInMeeting, "987654321")
	status, err = session.CallStatus(ctx, "abc")
	if err != nil {
		t.Fatalf("CallStatus failed: %v", err)
	}
	if status.State != CallConnected || status.CallID != "987654321" {
		t.Errorf("Unexpected status %+v", status)
	}
}

func TestMoveCamera(t *testing.T) {
	dev := shelltest.NewDevice()
	session, gw, _ := newTestSession(t, dev)
	ctx := context.Background()

	if err := session.MoveCamera(ctx, Direction("Sideways")); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
	if len(gw.Commands()) != 0 {
		t.Errorf("Expected no commands for invalid direction, got %v", gw.Commands())
	}

	for _, d := range Directions {
		if err := session.MoveCamera(ctx, d); err != nil {
			t.Fatalf("MoveCamera(%s) failed: %v", d, err)
		}
	}
	moves := dev.Moves()
	if len(moves) != 4 || moves[0] != "up" || moves[3] != "right" {
		t.Errorf("Unexpected moves %v", moves)
	}
	if gw.Count(cmdCallStatus) != 0 {
		t.Error("Camera moves should not query call status")
	}
}

func TestMoveCameraSendsCanonicalDirection(t *testing.T) {
	dev := shelltest.NewDevice()
	session, gw, _ := newTestSession(t, dev)

	if err := session.MoveCamera(context.Background(), Direction(" up")); err != nil {
		t.Fatalf("MoveCamera failed: %v", err)
	}
	cmds := gw.Commands()
	if len(cmds) != 1 || cmds[0] != cmdCameraControl+"Up" {
		t.Errorf("Expected %q, got %v", cmdCameraControl+"Up", cmds)
	}
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection(" left ")
	if err != nil || d != Left {
		t.Errorf("Expected Left, got %v (%v)", d, err)
	}
	if _, err := ParseDirection("zoom"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestControlProperty(t *testing.T) {
	dev := shelltest.NewDevice()
	dev.SetStatus(shelltest.StatusInMeeting, "123")
	session, _, _ := newTestSession(t, dev)
	ctx := context.Background()

	err := session.ControlProperties(ctx, []ControlRequest{
		{Name: ControlMicrophoneMute, Value: "1"},
		{Name: ControlCameraMute, Value: "0"},
		{Name: ControlMoveLeft},
	})
	if err != nil {
		t.Fatalf("ControlProperties failed: %v", err)
	}
	if mic, cam := dev.Mutes(); !mic || cam {
		t.Errorf("Expected mic muted and camera live, got mic=%v camera=%v", mic, cam)
	}
	if moves := dev.Moves(); len(moves) != 1 || moves[0] != "left" {
		t.Errorf("Expected one left move, got %v", moves)
	}

	if err := session.ControlProperty(ctx, "Call Control#Volume", "1"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for unknown control, got %v", err)
	}
	if err := session.ControlProperties(ctx, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for empty batch, got %v", err)
	}
}
