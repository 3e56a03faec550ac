package zoomrooms

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/zrctl/internal/logging"
)

// unitField enumerates the system unit values that are reported.
type unitField int

const (
	unitRoomVersion unitField = iota
	unitMeetingNumber
	unitAccountEmail
	unitRoomName
	unitPlatform
	numUnitFields
)

// unitFields maps each reported field to its device key and statistics key.
var unitFields = [numUnitFields]struct{ device, stat string }{
	unitRoomVersion:   {"room_version", "Zoom Rooms Version"},
	unitMeetingNumber: {"meeting_number", "Meeting Number (Personal)"},
	unitAccountEmail:  {"account_email", "Account Email"},
	unitRoomName:      {"room_name", "Room Name"},
	unitPlatform:      {"platform", "Platform"},
}

// lineBlock is a device-level status dump and the statistics group it feeds.
type lineBlock struct {
	command string
	prefix  string
	group   string
	match   string // property key prefix
}

var lineBlocks = []lineBlock{
	{cmdAudioInput, prefixAudioInput, "Audio Settings#", "Audio"},
	{cmdAudioOutput, prefixAudioOutput, "Audio Settings#", "Audio"},
	{cmdCameraLine, prefixCameraLine, "Video Camera Settings#", "Video Camera"},
}

// Aggregator builds status snapshots.
type Aggregator struct {
	session *Session
	logger  *slog.Logger
	now     func() time.Time
}

// NewAggregator creates an aggregator over session.
func NewAggregator(session *Session) *Aggregator {
	return &Aggregator{
		session: session,
		logger:  logging.With("component", "aggregator"),
		now:     time.Now,
	}
}

// Session returns the session controller.
func (a *Aggregator) Session() *Session {
	return a.session
}

// Collect queries the device and builds a fresh snapshot. Device-level blocks
// are always read; in-call statistics and controls appear only in a meeting.
func (a *Aggregator) Collect(ctx context.Context) (*Snapshot, error) {
	start := a.now()
	state, err := a.session.State(ctx)
	if err != nil {
		return nil, fmt.Errorf("call status: %w", err)
	}

	snap := &Snapshot{
		State:      state,
		Statistics: make(map[string]string),
		Controls:   []Control{},
	}

	for _, block := range lineBlocks {
		if err := a.collectLines(ctx, block, snap.Statistics); err != nil {
			return nil, err
		}
	}
	if err := a.collectSystemUnit(ctx, snap.Statistics); err != nil {
		return nil, err
	}

	if state == InMeeting {
		if err := a.collectCall(ctx, snap); err != nil {
			return nil, err
		}
	}

	snap.CollectedAt = a.now()
	a.logger.Debug("Status collected",
		logging.State(state.String()),
		logging.Count("statistics", len(snap.Statistics)),
		logging.Duration("elapsed", snap.CollectedAt.Sub(start)))
	return snap, nil
}

func (a *Aggregator) collectLines(ctx context.Context, block lineBlock, stats map[string]string) error {
	resp, err := a.session.exec.Execute(ctx, block.command)
	if err != nil {
		return fmt.Errorf("%s: %w", block.command, err)
	}
	props := ParseProperties(resp, block.prefix)
	for _, key := range props.Keys() {
		if !strings.HasPrefix(key, block.match) {
			continue
		}
		if strings.HasSuffix(key, "Name") || strings.HasSuffix(key, " Selected") {
			stats[block.group+key] = props[key]
		}
	}
	return nil
}

func (a *Aggregator) collectSystemUnit(ctx context.Context, stats map[string]string) error {
	resp, err := a.session.exec.Execute(ctx, cmdSystemUnit)
	if err != nil {
		return fmt.Errorf("%s: %w", cmdSystemUnit, err)
	}
	props := ParseProperties(resp, prefixSystemUnit)
	for key, value := range props {
		fields := strings.Fields(key)
		name := fields[len(fields)-1]
		for _, f := range unitFields {
			if f.device == name {
				stats[f.stat] = value
				break
			}
		}
	}
	return nil
}

func (a *Aggregator) collectCall(ctx context.Context, snap *Snapshot) error {
	id, err := a.session.MeetingID(ctx)
	if err != nil {
		return fmt.Errorf("call info: %w", err)
	}
	micMuted, err := a.session.MicrophoneMuted(ctx)
	if err != nil {
		return fmt.Errorf("microphone mute: %w", err)
	}
	camMuted, err := a.session.CameraMuted(ctx)
	if err != nil {
		return fmt.Errorf("camera mute: %w", err)
	}

	snap.Endpoint = EndpointStatistics{
		InCall:          true,
		CallID:          id,
		MicrophoneMuted: micMuted,
	}

	snap.Statistics[StatActiveMeeting] = id
	snap.Statistics[ControlMicrophoneMute] = onOff(micMuted)
	snap.Statistics[ControlCameraMute] = onOff(camMuted)
	snap.Controls = append(snap.Controls,
		newSwitch(ControlMicrophoneMute, micMuted),
		newSwitch(ControlCameraMute, camMuted))

	for _, c := range controls {
		if c.move == "" {
			continue
		}
		snap.Statistics[c.name] = ""
		snap.Controls = append(snap.Controls, newButton(c.name, string(c.move)))
	}
	return nil
}
