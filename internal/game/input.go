package game

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownFighter = errors.New("game: unknown fighter")
	ErrUnknownInput   = errors.New("game: unknown input")
	ErrFighterLimit   = errors.New("game: fighter limit reached")
	ErrCreatureLimit  = errors.New("game: creature limit reached")
	ErrInputQueueFull = errors.New("game: input queue full")
)

// InputKind is a fighter command applied on the next tick
type InputKind uint8

const (
	InputStrike InputKind = iota + 1
	InputBlockPress
	InputBlockRelease
	InputKinetic
	InputMount
	InputDismount
	InputMove
)

var inputNames = map[InputKind]string{
	InputStrike:       "strike",
	InputBlockPress:   "block",
	InputBlockRelease: "release",
	InputKinetic:      "kinetic",
	InputMount:        "mount",
	InputDismount:     "dismount",
	InputMove:         "move",
}

func (k InputKind) String() string {
	if name, ok := inputNames[k]; ok {
		return name
	}
	return "unknown"
}

// appliesWhilePaused reports whether the input is honored during a pause.
// Only the block button is; everything else is dropped.
func (k InputKind) appliesWhilePaused() bool {
	return k == InputBlockPress || k == InputBlockRelease
}

// ParseInputKind parses an input name
func ParseInputKind(s string) (InputKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range inputNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownInput, s)
}

// Input is one queued fighter command. X and Y are used by InputMove.
type Input struct {
	FighterID string
	Kind      InputKind
	X, Y      float64
}
