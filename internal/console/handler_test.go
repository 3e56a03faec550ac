package console

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/zrctl/internal/monitor"
	"github.com/zrctl/internal/shell/shelltest"
	"github.com/zrctl/internal/zoomrooms"
)

func noSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

func newTestHandler(t *testing.T) (*Handler, *bytes.Buffer, *shelltest.Device, *shelltest.FakeGateway) {
	t.Helper()
	dev := shelltest.NewDevice()
	gw := shelltest.NewFakeGateway(dev.Respond)
	exec := zoomrooms.NewExecutor(gw, zoomrooms.ExecutorConfig{MaxAttempts: 3, Sleep: noSleep})
	session := zoomrooms.NewSession(exec, zoomrooms.SessionConfig{PollAttempts: 5, Sleep: noSleep})
	poller := monitor.NewPoller(zoomrooms.NewAggregator(session), nil, monitor.Config{TTL: time.Minute})

	var out bytes.Buffer
	return NewHandler(session, poller, bufio.NewWriter(&out)), &out, dev, gw
}

func run(t *testing.T, h *Handler, out *bytes.Buffer, line string) string {
	t.Helper()
	out.Reset()
	if err := h.HandleCommand(context.Background(), line); err != nil {
		t.Fatalf("HandleCommand(%q) failed: %v", line, err)
	}
	return out.String()
}

func TestHandleDialAndHangup(t *testing.T) {
	h, out, dev, gw := newTestHandler(t)

	if got := run(t, h, out, "dial 2754909175.013196@zoomcrc.com"); !strings.Contains(got, "in meeting 2754909175") {
		t.Errorf("Unexpected dial output %q", got)
	}
	if dev.CurrentStatus() != shelltest.StatusInMeeting {
		t.Errorf("Expected device in meeting, got %s", dev.CurrentStatus())
	}

	if got := run(t, h, out, "call"); !strings.Contains(got, "connected") || !strings.Contains(got, "2754909175") {
		t.Errorf("Unexpected call output %q", got)
	}

	if got := run(t, h, out, "hangup"); !strings.Contains(got, "[OK]") {
		t.Errorf("Unexpected hangup output %q", got)
	}
	if gw.Count("zCommand Call Disconnect") != 1 {
		t.Errorf("Expected one disconnect, sent %v", gw.Commands())
	}
}

func TestHandleMute(t *testing.T) {
	h, out, dev, _ := newTestHandler(t)

	if got := run(t, h, out, "mute mic on"); !strings.Contains(got, "[ERROR]") {
		t.Errorf("Expected error outside a meeting, got %q", got)
	}
	if got := run(t, h, out, "mute"); !strings.Contains(got, "unknown") {
		t.Errorf("Expected unknown mute state, got %q", got)
	}

	dev.SetStatus(shelltest.StatusInMeeting, "555")
	run(t, h, out, "mute mic on")
	run(t, h, out, "mute camera on")
	if mic, cam := dev.Mutes(); !mic || !cam {
		t.Errorf("Expected both muted, got mic=%v camera=%v", mic, cam)
	}
	if got := run(t, h, out, "mute"); !strings.Contains(got, ": muted") {
		t.Errorf("Expected muted, got %q", got)
	}

	for _, bad := range []string{"mute mic", "mute mic maybe", "mute speaker on"} {
		if got := run(t, h, out, bad); !strings.Contains(got, "[ERROR]") {
			t.Errorf("%q: expected error, got %q", bad, got)
		}
	}
}

func TestHandleCamera(t *testing.T) {
	h, out, dev, _ := newTestHandler(t)

	run(t, h, out, "camera RIGHT")
	if got := run(t, h, out, "camera spin"); !strings.Contains(got, "[ERROR]") {
		t.Errorf("Expected error, got %q", got)
	}
	if moves := dev.Moves(); len(moves) != 1 || moves[0] != "right" {
		t.Errorf("Unexpected moves %v", moves)
	}
}

func TestHandleStatus(t *testing.T) {
	h, out, dev, _ := newTestHandler(t)
	dev.SetStatus(shelltest.StatusInMeeting, "777")

	got := run(t, h, out, "status")
	for _, want := range []string{"in_meeting", "777", "Room Name"} {
		if !strings.Contains(got, want) {
			t.Errorf("Status output missing %q:\n%s", want, got)
		}
	}
}

func TestHandleMisc(t *testing.T) {
	h, out, _, _ := newTestHandler(t)

	if got := run(t, h, out, "help"); !strings.Contains(got, "Available Commands") {
		t.Errorf("Unexpected help output %q", got)
	}
	if got := run(t, h, out, "frobnicate"); !strings.Contains(got, "unknown command") {
		t.Errorf("Unexpected output %q", got)
	}
	if got := run(t, h, out, "   "); got != "" {
		t.Errorf("Expected no output for a blank line, got %q", got)
	}

	out.Reset()
	if err := h.HandleCommand(context.Background(), "quit"); !errors.Is(err, errQuit) {
		t.Errorf("Expected errQuit, got %v", err)
	}
}

func TestCRLFWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &crlfWriter{w: &buf}
	n, err := w.Write([]byte("a\nb\n"))
	if err != nil || n != 4 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if buf.String() != "a\r\nb\r\n" {
		t.Errorf("Unexpected output %q", buf.String())
	}
}
