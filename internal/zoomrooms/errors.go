package zoomrooms

import (
	"errors"
	"fmt"
)

// Error categories returned by the controller. Use errors.Is to test for them.
var (
	// ErrInvalidArgument marks caller input rejected before anything is sent.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState marks an operation whose session precondition is not met.
	ErrInvalidState = errors.New("invalid session state")
	// ErrCommandFailure marks an explicit error literal returned by the device.
	ErrCommandFailure = errors.New("command failed")
	// ErrVerificationTimeout marks a response that never became complete.
	ErrVerificationTimeout = errors.New("response verification timed out")
	// ErrDialFailure marks a dial where both start and join were rejected.
	ErrDialFailure = errors.New("dial failed")
	// ErrTransport marks a channel that could not connect or send.
	ErrTransport = errors.New("transport error")
)

// CommandError carries the command, the last raw response and the number of
// attempts for failures the device (or its silence) caused.
type CommandError struct {
	Kind     error // one of the sentinel errors above
	Command  string
	Response string
	Attempts int
	Err      error // underlying cause, if any
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: %q", e.Kind, e.Command)
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" after %d attempts", e.Attempts)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the category and the cause.
func (e *CommandError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func invalidState(op string, state SessionState) error {
	return fmt.Errorf("%w: %s requires %s, device is %s", ErrInvalidState, op, InMeeting, state)
}

// IsDeviceRejection reports whether err came from the device refusing a command.
func IsDeviceRejection(err error) bool {
	return errors.Is(err, ErrCommandFailure)
}
