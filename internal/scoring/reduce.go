package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadScale rejects a scale declaration no spelling matches.
var ErrBadScale = errors.New("unknown response scale")

// ResponseScale names the numeric encoding an answer sheet uses. The three
// encodings overlap value-by-value (a raw 2 is valid in all of them), so the
// scale is declared per sheet rather than guessed per answer.
type ResponseScale string

const (
	// ScaleCentered is the canonical encoding: -2..2, 0 neutral.
	ScaleCentered ResponseScale = "centered"
	// ScaleOneToFive is the classic Likert encoding: 1..5, 3 neutral.
	ScaleOneToFive ResponseScale = "one-to-five"
	// ScaleZeroToFour is the zero-based encoding: 0..4, 2 neutral.
	ScaleZeroToFour ResponseScale = "zero-to-four"
)

// ParseScale resolves a scale declaration, tolerating the short spellings
// that show up in authored sheets. Empty means the canonical default.
func ParseScale(s string) (ResponseScale, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "centered", "-2..2":
		return ScaleCentered, nil
	case "one-to-five", "1-5", "1..5", "1to5":
		return ScaleOneToFive, nil
	case "zero-to-four", "0-4", "0..4", "0to4":
		return ScaleZeroToFour, nil
	default:
		return "", fmt.Errorf("%w %q", ErrBadScale, s)
	}
}

// Centered maps a raw response onto the canonical -2..2 scale and clamps
// out-of-range values instead of rejecting them.
func Centered(scale ResponseScale, raw float64) float64 {
	c := raw
	switch scale {
	case ScaleOneToFive:
		c = raw - 3
	case ScaleZeroToFour:
		c = raw - 2
	}
	if c < -2 {
		c = -2
	}
	if c > 2 {
		c = 2
	}
	return c
}

// Signal is a reduced answer: which side it evidences and how strongly.
// Direction 0 means neutral; it contributes nothing downstream.
type Signal struct {
	Direction int
	Magnitude float64
}

// Reduce extracts direction and magnitude from a centered value. Magnitude
// lands in 0..1 (0.5 for the mild responses, 1 for the strong ones).
func Reduce(centered float64) Signal {
	var dir int
	switch {
	case centered > 0:
		dir = 1
	case centered < 0:
		dir = -1
	}
	mag := centered
	if mag < 0 {
		mag = -mag
	}
	mag /= 2
	if mag > 1 {
		mag = 1
	}
	return Signal{Direction: dir, Magnitude: mag}
}
