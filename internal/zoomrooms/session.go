package zoomrooms

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/zrctl/internal/logging"
)

// SessionState is the device's call state.
type SessionState int

const (
	NotInMeeting SessionState = iota
	Connecting
	InMeeting
)

var sessionStateNames = [...]string{
	NotInMeeting: "not_in_meeting",
	Connecting:   "connecting",
	InMeeting:    "in_meeting",
}

func (s SessionState) String() string {
	if s < 0 || int(s) >= len(sessionStateNames) {
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
	return sessionStateNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s SessionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SessionState) UnmarshalText(text []byte) error {
	for i, name := range sessionStateNames {
		if name == string(text) {
			*s = SessionState(i)
			return nil
		}
	}
	return fmt.Errorf("unknown session state %q", text)
}

// Role records how the current session was entered.
type Role int

const (
	Participant Role = iota // joined someone else's meeting; may only leave
	Host                    // started the meeting; may end it
)

func (r Role) String() string {
	if r == Host {
		return "host"
	}
	return "participant"
}

// MuteState is a tri-state mute reading.
type MuteState string

const (
	Muted       MuteState = "muted"
	Unmuted     MuteState = "unmuted"
	MuteUnknown MuteState = "unknown"
)

// CallState is the outcome reported by CallStatus.
type CallState string

const (
	CallConnected    CallState = "connected"
	CallDisconnected CallState = "disconnected"
)

// CallStatus describes a call by id.
type CallStatus struct {
	State  CallState `json:"state"`
	CallID string    `json:"call_id"`
}

// statusTexts maps normalized call status text to a state.
var statusTexts = map[string]SessionState{
	"in meeting":         InMeeting,
	"connecting meeting": Connecting,
	"not in meeting":     NotInMeeting,
	"logged out":         NotInMeeting,
}

// ClassifyStatus extracts the call status text from a status response and
// maps it to a state. Text matching no known state yields NotInMeeting with
// recognized=false.
func ClassifyStatus(response string) (state SessionState, text string, recognized bool) {
	lower := strings.ToLower(response)
	idx := strings.Index(lower, statusMarker)
	if idx < 0 {
		return NotInMeeting, "", false
	}
	rest := lower[idx+len(statusMarker):]
	if end := strings.Index(rest, strings.ToLower(TokenBlockEnd)); end >= 0 {
		rest = rest[:end]
	}
	rest = strings.TrimSpace(rest)
	if nl := strings.IndexAny(rest, "\r\n"); nl >= 0 {
		rest = rest[:nl]
	}
	text = strings.TrimSpace(strings.ReplaceAll(rest, "_", " "))

	state, recognized = statusTexts[text]
	return state, text, recognized
}

// SessionConfig holds the stuck-dial polling settings.
type SessionConfig struct {
	PollAttempts int           // status polls while the device reports connecting
	PollDelay    time.Duration // pause before each poll

	Sleep  SleepFunc
	Logger *slog.Logger
}

// DefaultSessionConfig returns the standard polling settings.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		PollAttempts: 5,
		PollDelay:    time.Second,
	}
}

// Session drives the device's call state through an Executor.
type Session struct {
	exec   *Executor
	config SessionConfig
	logger *slog.Logger

	mu   sync.Mutex
	role Role
}

// NewSession creates a session controller.
func NewSession(exec *Executor, cfg SessionConfig) *Session {
	if cfg.PollAttempts <= 0 {
		cfg.PollAttempts = 5
	}
	if cfg.PollDelay < 0 {
		cfg.PollDelay = 0
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.With("component", "session")
	}
	return &Session{
		exec:   exec,
		config: cfg,
		logger: cfg.Logger,
	}
}

// Executor returns the command executor.
func (s *Session) Executor() *Executor {
	return s.exec
}

// Role returns the role recorded by the last successful dial.
func (s *Session) Role() Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

func (s *Session) setRole(r Role) {
	s.mu.Lock()
	s.role = r
	s.mu.Unlock()
}

// State queries the device's call state.
func (s *Session) State(ctx context.Context) (SessionState, error) {
	resp, err := s.exec.Execute(ctx, cmdCallStatus)
	if err != nil {
		return NotInMeeting, err
	}
	state, text, ok := ClassifyStatus(resp)
	if !ok {
		unrecognizedStatusTotal.Inc()
		s.logger.Warn("Unrecognized call status, treating as not in meeting", slog.String("status", text))
	}
	sessionStateGauge.Set(float64(state))
	return state, nil
}

// MeetingID returns the id of the active meeting.
func (s *Session) MeetingID(ctx context.Context) (string, error) {
	resp, err := s.exec.Execute(ctx, cmdCallInfo)
	if err != nil {
		return "", err
	}
	id := ParseProperties(resp, prefixMeetingID)[keyMeetingID]
	if id == "" {
		return "", &CommandError{Kind: ErrCommandFailure, Command: cmdCallInfo, Response: resp, Attempts: 1,
			Err: fmt.Errorf("no meeting id in call info")}
	}
	return id, nil
}

// CallStatus reports whether callID is live. While in a meeting the active
// meeting id is returned in place of callID.
func (s *Session) CallStatus(ctx context.Context, callID string) (CallStatus, error) {
	state, err := s.State(ctx)
	if err != nil {
		return CallStatus{}, err
	}
	if state != InMeeting {
		return CallStatus{State: CallDisconnected, CallID: callID}, nil
	}
	id, err := s.MeetingID(ctx)
	if err != nil {
		return CallStatus{}, err
	}
	return CallStatus{State: CallConnected, CallID: id}, nil
}

// Hangup leaves or ends the current meeting. It does nothing when the device
// is not in a meeting.
func (s *Session) Hangup(ctx context.Context) error {
	state, err := s.State(ctx)
	if err != nil {
		return err
	}
	if state == NotInMeeting {
		s.logger.Debug("Hangup requested while not in meeting")
		return nil
	}
	return s.disconnect(ctx)
}

// disconnect ends the meeting as host or leaves it as participant.
func (s *Session) disconnect(ctx context.Context) error {
	role := s.Role()
	command := cmdCallLeave
	if role == Host {
		command = cmdCallDisconnect
	}
	if _, err := s.exec.Execute(ctx, command); err != nil {
		return fmt.Errorf("disconnect as %s: %w", role, err)
	}
	s.logger.Info("Disconnected", slog.String("role", role.String()))
	s.setRole(Participant)
	return nil
}

// SetMicrophoneMute mutes or unmutes the room microphone.
func (s *Session) SetMicrophoneMute(ctx context.Context, muted bool) error {
	return s.setMute(ctx, "microphone mute", cmdMicrophoneMute, muted)
}

// SetCameraMute turns the camera feed off or on.
func (s *Session) SetCameraMute(ctx context.Context, muted bool) error {
	return s.setMute(ctx, "camera mute", cmdCameraMute, muted)
}

func (s *Session) setMute(ctx context.Context, op, command string, muted bool) error {
	state, err := s.State(ctx)
	if err != nil {
		return err
	}
	if state != InMeeting {
		return invalidState(op, state)
	}
	_, err = s.exec.Execute(ctx, command+": "+onOff(muted))
	return err
}

// MicrophoneMuted reads the microphone mute configuration.
func (s *Session) MicrophoneMuted(ctx context.Context) (bool, error) {
	return s.readMute(ctx, cmdMicrophoneMute)
}

// CameraMuted reads the camera mute configuration.
func (s *Session) CameraMuted(ctx context.Context) (bool, error) {
	return s.readMute(ctx, cmdCameraMute)
}

// MuteState reports the microphone mute state, or MuteUnknown outside a meeting.
func (s *Session) MuteState(ctx context.Context) (MuteState, error) {
	state, err := s.State(ctx)
	if err != nil {
		return MuteUnknown, err
	}
	if state != InMeeting {
		return MuteUnknown, nil
	}
	muted, err := s.MicrophoneMuted(ctx)
	if err != nil {
		return MuteUnknown, err
	}
	if muted {
		return Muted, nil
	}
	return Unmuted, nil
}

func (s *Session) readMute(ctx context.Context, command string) (bool, error) {
	resp, err := s.exec.Execute(ctx, command)
	if err != nil {
		return false, err
	}
	return parseMute(resp), nil
}

// parseMute reads the value between "mute:" and the last block end.
func parseMute(response string) bool {
	lower := strings.ToLower(response)
	idx := strings.Index(lower, muteMarker)
	if idx < 0 {
		return false
	}
	value := lower[idx+len(muteMarker):]
	if end := strings.LastIndex(value, strings.ToLower(TokenBlockEnd)); end >= 0 {
		value = value[:end]
	}
	return strings.TrimSpace(value) == valueOn
}
