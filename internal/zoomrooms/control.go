package zoomrooms

import (
	"context"
	"fmt"
	"strings"
)

// controlKind enumerates the controllable properties.
type controlKind int

const (
	controlMicrophoneMute controlKind = iota
	controlCameraMute
	controlMoveUp
	controlMoveDown
	controlMoveLeft
	controlMoveRight
	numControls
)

// controls maps each kind to its property name; move is set for buttons.
var controls = [numControls]struct {
	name string
	move Direction
}{
	controlMicrophoneMute: {name: ControlMicrophoneMute},
	controlCameraMute:     {name: ControlCameraMute},
	controlMoveUp:         {name: ControlMoveUp, move: Up},
	controlMoveDown:       {name: ControlMoveDown, move: Down},
	controlMoveLeft:       {name: ControlMoveLeft, move: Left},
	controlMoveRight:      {name: ControlMoveRight, move: Right},
}

// ControlRequest sets one controllable property.
type ControlRequest struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ControlProperty applies a control by its property name. Switch values of
// "1" or "on" mean on; anything else means off. Button values are ignored.
func (s *Session) ControlProperty(ctx context.Context, name, value string) error {
	kind, ok := lookupControl(name)
	if !ok {
		return invalidArgument("unknown control %q", name)
	}

	on := value == "1" || strings.EqualFold(value, valueOn)
	switch kind {
	case controlMicrophoneMute:
		return s.SetMicrophoneMute(ctx, on)
	case controlCameraMute:
		return s.SetCameraMute(ctx, on)
	default:
		return s.MoveCamera(ctx, controls[kind].move)
	}
}

// ControlProperties applies controls in order and stops at the first failure.
func (s *Session) ControlProperties(ctx context.Context, reqs []ControlRequest) error {
	if len(reqs) == 0 {
		return invalidArgument("no controls given")
	}
	for _, req := range reqs {
		if err := s.ControlProperty(ctx, req.Name, req.Value); err != nil {
			return fmt.Errorf("control %q: %w", req.Name, err)
		}
	}
	return nil
}

func lookupControl(name string) (controlKind, bool) {
	for kind, c := range controls {
		if c.name == name {
			return controlKind(kind), true
		}
	}
	return 0, false
}
