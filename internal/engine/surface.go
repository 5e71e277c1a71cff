package engine

import "time"

// Match is the on-screen bounding box of a located image.
type Match struct {
	X, Y          int
	Width, Height int
}

// Center returns the midpoint of the match.
func (m Match) Center() (int, int) {
	return m.X + m.Width/2, m.Y + m.Height/2
}

// InputSurface is the OS input/display capability the executor drives. The
// surface owns pointer, keyboard focus and screen for the duration of a run;
// callers must not inject concurrent input.
type InputSurface interface {
	// MoveTo moves the pointer to absolute screen coordinates.
	MoveTo(x, y int)
	// Position returns the pointer's current coordinates.
	Position() (x, y int)
	// Click issues a press-release at the current pointer location.
	Click()
	// TypeText streams text to the focused target, pausing interval between
	// characters.
	TypeText(text string, interval time.Duration)
	// KeyTap presses and releases a named key, optionally with modifiers
	// held. Unknown key names surface as errors from the input layer.
	KeyTap(key string, modifiers ...string) error
	// Scroll issues one vertical scroll event; positive scrolls up,
	// negative down.
	Scroll(amount int)
	// LocateImage searches the screen for the template image at path,
	// requiring at least the given match confidence. found is false when no
	// region scores high enough; err reports capture or decode failures.
	LocateImage(path string, confidence float64) (match Match, found bool, err error)
}
