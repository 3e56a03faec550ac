package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zrctl/internal/monitor"
	"github.com/zrctl/internal/zoomrooms"
)

// errQuit ends the console session.
var errQuit = errors.New("quit")

const helpText = `
Available Commands:
===================

Call Commands:
  dial <meeting[.passcode]@domain>  - Start (or join) a meeting
  hangup                            - Leave or end the current meeting
  call [id]                         - Show whether a call is live

Control Commands:
  mute                              - Show microphone mute state
  mute mic on|off                   - Mute or unmute the microphone
  mute camera on|off                - Turn the camera feed off or on
  camera up|down|left|right         - Nudge the camera one step

Status Commands:
  status [refresh]                  - Show the latest room snapshot

Utility Commands:
  help                              - Show this help
  exit/quit                         - Leave the console
`

// Handler executes console commands against the room.
type Handler struct {
	session   *zoomrooms.Session
	poller    *monitor.Poller
	formatter *Formatter
}

func NewHandler(session *zoomrooms.Session, poller *monitor.Poller, writer *bufio.Writer) *Handler {
	return &Handler{
		session:   session,
		poller:    poller,
		formatter: NewFormatter(writer),
	}
}

// HandleCommand runs one input line. Device errors are printed; only errQuit
// and write failures are returned.
func (h *Handler) HandleCommand(ctx context.Context, input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch command {
	case "help", "?":
		h.formatter.WriteInfo(helpText)
	case "status":
		err = h.handleStatus(ctx, args)
	case "dial":
		err = h.handleDial(ctx, args)
	case "hangup":
		err = h.handleHangup(ctx)
	case "call":
		err = h.handleCall(ctx, args)
	case "mute":
		err = h.handleMute(ctx, args)
	case "camera":
		err = h.handleCamera(ctx, args)
	case "exit", "quit":
		h.formatter.WriteInfo("Goodbye!")
		h.formatter.Flush()
		return errQuit
	default:
		err = fmt.Errorf("unknown command: %s (type 'help' for available commands)", command)
	}

	if err != nil {
		h.formatter.WriteError(err.Error())
	}
	return h.formatter.Flush()
}

func (h *Handler) handleStatus(ctx context.Context, args []string) error {
	var (
		snap *zoomrooms.Snapshot
		err  error
	)
	if len(args) > 0 && strings.EqualFold(args[0], "refresh") {
		snap, err = h.poller.Refresh(ctx)
	} else {
		snap, err = h.poller.Latest(ctx)
	}
	if err != nil {
		return err
	}

	h.formatter.WriteHeader("Room Status")
	h.formatter.WriteKeyValue("State", snap.State.String())
	h.formatter.WriteKeyValue("Collected", snap.CollectedAt.Format("2006-01-02 15:04:05"))
	if snap.Endpoint.InCall {
		h.formatter.WriteKeyValue("Call ID", snap.Endpoint.CallID)
		h.formatter.WriteKeyValue("Microphone Muted", fmt.Sprintf("%t", snap.Endpoint.MicrophoneMuted))
	}
	h.formatter.WriteHeader("Statistics")
	h.formatter.WriteMap(snap.Statistics)
	return nil
}

func (h *Handler) handleDial(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: dial <meeting[.passcode]@domain>")
	}
	id, err := h.session.Dial(ctx, args[0])
	h.poller.Invalidate(ctx)
	if err != nil {
		return err
	}
	h.formatter.WriteSuccess("in meeting " + id)
	return nil
}

func (h *Handler) handleHangup(ctx context.Context) error {
	err := h.session.Hangup(ctx)
	h.poller.Invalidate(ctx)
	if err != nil {
		return err
	}
	h.formatter.WriteSuccess("not in meeting")
	return nil
}

func (h *Handler) handleCall(ctx context.Context, args []string) error {
	var callID string
	if len(args) > 0 {
		callID = args[0]
	}
	status, err := h.session.CallStatus(ctx, callID)
	if err != nil {
		return err
	}
	h.formatter.WriteKeyValue("Call", string(status.State))
	if status.CallID != "" {
		h.formatter.WriteKeyValue("Call ID", status.CallID)
	}
	return nil
}

func (h *Handler) handleMute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		state, err := h.session.MuteState(ctx)
		if err != nil {
			return err
		}
		h.formatter.WriteKeyValue("Microphone", string(state))
		return nil
	}

	if len(args) != 2 {
		return fmt.Errorf("usage: mute mic|camera on|off")
	}
	var muted bool
	switch strings.ToLower(args[1]) {
	case "on":
		muted = true
	case "off":
	default:
		return fmt.Errorf("mute value must be on or off, got %q", args[1])
	}

	var err error
	switch strings.ToLower(args[0]) {
	case "mic", "microphone":
		err = h.session.SetMicrophoneMute(ctx, muted)
	case "camera", "video":
		err = h.session.SetCameraMute(ctx, muted)
	default:
		return fmt.Errorf("unknown mute target %q", args[0])
	}
	h.poller.Invalidate(ctx)
	if err != nil {
		return err
	}
	h.formatter.WriteSuccess(fmt.Sprintf("%s mute %s", strings.ToLower(args[0]), strings.ToLower(args[1])))
	return nil
}

func (h *Handler) handleCamera(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: camera up|down|left|right")
	}
	dir, err := zoomrooms.ParseDirection(args[0])
	if err != nil {
		return err
	}
	if err := h.session.MoveCamera(ctx, dir); err != nil {
		return err
	}
	h.formatter.WriteSuccess("camera moved " + strings.ToLower(string(dir)))
	return nil
}
