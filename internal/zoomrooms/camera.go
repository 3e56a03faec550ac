package zoomrooms

import (
	"context"
	"strings"
)

// Direction is a camera pan/tilt direction.
type Direction string

const (
	Up    Direction = "Up"
	Down  Direction = "Down"
	Left  Direction = "Left"
	Right Direction = "Right"
)

// Directions lists the supported camera moves.
var Directions = []Direction{Up, Down, Left, Right}

// ParseDirection accepts a direction name in any case.
func ParseDirection(s string) (Direction, error) {
	for _, d := range Directions {
		if strings.EqualFold(string(d), strings.TrimSpace(s)) {
			return d, nil
		}
	}
	return "", invalidArgument("unknown camera direction %q", s)
}

// MoveCamera nudges the main camera one step. It is permitted in any call
// state; the device rejects moves it cannot perform.
func (s *Session) MoveCamera(ctx context.Context, dir Direction) error {
	canonical, err := ParseDirection(string(dir))
	if err != nil {
		return err
	}
	_, err = s.exec.Execute(ctx, cmdCameraControl+string(canonical))
	return err
}
