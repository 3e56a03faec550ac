package zoomrooms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/zrctl/internal/logging"
)

// dialPattern accepts meetingNumber[.passcode]@domain.tld.
var dialPattern = regexp.MustCompile(`^(\d+)(\.(\d+))?@([a-z]+\.[a-z]{2,5})$`)

// DialTarget is a parsed dial string.
type DialTarget struct {
	MeetingID string
	Passcode  string // optional
	Domain    string // validated only
}

// ParseDialTarget parses "2754909175.013196@zoomcrc.com".
func ParseDialTarget(dialString string) (DialTarget, error) {
	if strings.TrimSpace(dialString) == "" {
		return DialTarget{}, invalidArgument("empty dial string")
	}
	m := dialPattern.FindStringSubmatch(dialString)
	if m == nil {
		return DialTarget{}, invalidArgument("dial string %q does not match meetingNumber[.passcode]@domain", dialString)
	}
	return DialTarget{
		MeetingID: m[1],
		Passcode:  m[3],
		Domain:    m[4],
	}, nil
}

func (t DialTarget) String() string {
	return t.MeetingID + "@" + t.Domain
}

func (t DialTarget) startCommand() string {
	return cmdDialStart + t.MeetingID + t.passwordSuffix()
}

func (t DialTarget) joinCommand() string {
	return cmdDialJoin + t.MeetingID + t.passwordSuffix()
}

func (t DialTarget) passwordSuffix() string {
	if t.Passcode == "" {
		return ""
	}
	return cmdDialPassword + t.Passcode
}

// Dial connects the room to the meeting named by dialString and returns the
// session id.
//
// A room already in a meeting is not redialed; the active meeting id is
// returned instead. A room stuck connecting is polled and, if it never
// settles, disconnected before dialing. The meeting is first started as host
// and, if the device rejects that, joined as participant.
func (s *Session) Dial(ctx context.Context, dialString string) (string, error) {
	target, err := ParseDialTarget(dialString)
	if err != nil {
		return "", err
	}

	state, err := s.State(ctx)
	if err != nil {
		return "", err
	}

	switch state {
	case InMeeting:
		dialTotal.WithLabelValues("already_in_meeting").Inc()
		s.logger.Info("Already in meeting, not redialing", slog.String("target", target.String()))
		return s.MeetingID(ctx)
	case Connecting:
		settled, err := s.awaitSettled(ctx)
		if err != nil {
			return "", err
		}
		if settled == InMeeting {
			dialTotal.WithLabelValues("already_in_meeting").Inc()
			return s.MeetingID(ctx)
		}
	}

	return s.startOrJoin(ctx, target)
}

// awaitSettled polls while the device reports connecting. It returns InMeeting
// if the call came up, or NotInMeeting once the device cleared itself or was
// forcibly disconnected.
func (s *Session) awaitSettled(ctx context.Context) (SessionState, error) {
	for attempt := 1; attempt <= s.config.PollAttempts; attempt++ {
		if err := s.config.Sleep(ctx, s.config.PollDelay); err != nil {
			return NotInMeeting, err
		}
		state, err := s.State(ctx)
		if err != nil {
			return NotInMeeting, err
		}
		if state != Connecting {
			s.logger.Debug("Connecting state settled", logging.State(state.String()), logging.Attempt(attempt))
			return state, nil
		}
	}

	s.logger.Warn("Device stuck connecting, forcing disconnect", logging.Attempt(s.config.PollAttempts))
	stuckRecoveriesTotal.Inc()
	if err := s.disconnect(ctx); err != nil {
		return NotInMeeting, err
	}
	return NotInMeeting, nil
}

func (s *Session) startOrJoin(ctx context.Context, target DialTarget) (string, error) {
	_, startErr := s.exec.Execute(ctx, target.startCommand())
	if startErr == nil {
		s.setRole(Host)
		dialTotal.WithLabelValues("host").Inc()
		s.logger.Info("Meeting started", slog.String("meeting", target.MeetingID))
		return target.MeetingID, nil
	}
	if !errors.Is(startErr, ErrCommandFailure) {
		return "", startErr
	}

	s.logger.Debug("Start rejected, joining instead", slog.String("meeting", target.MeetingID))
	_, joinErr := s.exec.Execute(ctx, target.joinCommand())
	if joinErr == nil {
		s.setRole(Participant)
		dialTotal.WithLabelValues("participant").Inc()
		s.logger.Info("Meeting joined", slog.String("meeting", target.MeetingID))
		return target.MeetingID, nil
	}

	dialTotal.WithLabelValues("failed").Inc()
	return "", fmt.Errorf("%w: meeting %s: start: %w; join: %w", ErrDialFailure, target.MeetingID, startErr, joinErr)
}
