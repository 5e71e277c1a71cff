// Package robot implements the engine's InputSurface on top of robotgo.
package robot

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-vgo/robotgo"

	"github.com/ptrgiang/automation-studio/internal/engine"
	"github.com/ptrgiang/automation-studio/internal/vision"
	"github.com/ptrgiang/automation-studio/pkg/utils"
)

// Surface drives the OS pointer, keyboard and screen through robotgo. The
// surface assumes exclusive ownership of the input devices for the duration
// of a run.
type Surface struct {
	mu        sync.Mutex
	templates map[string]image.Image
}

var _ engine.InputSurface = (*Surface)(nil)

// NewSurface returns a robotgo-backed surface.
func NewSurface() *Surface {
	return &Surface{templates: make(map[string]image.Image)}
}

// MoveTo moves the pointer to absolute screen coordinates.
func (s *Surface) MoveTo(x, y int) {
	robotgo.Move(x, y)
}

// Position returns the pointer's current coordinates.
func (s *Surface) Position() (int, int) {
	return robotgo.Location()
}

// Click issues a left press-release at the current pointer location.
func (s *Surface) Click() {
	robotgo.Click("left", false)
}

// TypeText streams text one character at a time, pausing interval between
// characters so target applications keep up.
func (s *Surface) TypeText(text string, interval time.Duration) {
	for _, r := range text {
		robotgo.TypeStr(string(r))
		if interval > 0 {
			time.Sleep(interval)
		}
	}
}

// namedKeys are key names passed to robotgo verbatim. Anything else that is
// longer than one character is typed as literal text, matching how the
// recorder names keys.
var namedKeys = map[string]bool{
	"enter": true, "return": true, "tab": true, "space": true,
	"backspace": true, "delete": true, "escape": true, "esc": true,
	"up": true, "down": true, "left": true, "right": true,
	"home": true, "end": true, "pageup": true, "pagedown": true,
	"page_up": true, "page_down": true,
	"f1": true, "f2": true, "f3": true, "f4": true, "f5": true, "f6": true,
	"f7": true, "f8": true, "f9": true, "f10": true, "f11": true, "f12": true,
}

// KeyTap presses and releases a named key with the given modifiers held.
func (s *Surface) KeyTap(key string, modifiers ...string) error {
	key = normalizeKey(key)

	mods := make([]interface{}, len(modifiers))
	for i, mod := range modifiers {
		mods[i] = normalizeModifier(mod)
	}

	if len(key) == 1 || namedKeys[key] {
		return robotgo.KeyTap(key, mods...)
	}
	robotgo.TypeStr(key)
	return nil
}

// Scroll issues one vertical scroll event; positive scrolls up, negative
// down.
func (s *Surface) Scroll(amount int) {
	robotgo.Scroll(0, amount)
}

// LocateImage captures the screen and searches it for the template stored at
// path, requiring at least the given match confidence.
func (s *Surface) LocateImage(path string, confidence float64) (engine.Match, bool, error) {
	tmpl, err := s.template(path)
	if err != nil {
		return engine.Match{}, false, err
	}

	screen := robotgo.CaptureImg()
	if screen == nil {
		return engine.Match{}, false, fmt.Errorf("screen capture failed")
	}

	result, found := vision.FindTemplate(screen, tmpl, confidence)
	if !found {
		return engine.Match{}, false, nil
	}
	return engine.Match{X: result.X, Y: result.Y, Width: result.Width, Height: result.Height}, true, nil
}

// template loads and caches a decoded template image.
func (s *Surface) template(path string) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if img, ok := s.templates[path]; ok {
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open template image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode template image %q: %w", path, err)
	}
	s.templates[path] = img
	return img, nil
}

func normalizeKey(key string) string {
	switch strings.ToLower(key) {
	case "page_up":
		return "pageup"
	case "page_down":
		return "pagedown"
	default:
		return strings.ToLower(key)
	}
}

// normalizeModifier maps recorder modifier names onto robotgo's. The generic
// "ctrl" modifier becomes the platform's primary modifier so select-all works
// on macOS too.
func normalizeModifier(mod string) string {
	switch strings.ToLower(mod) {
	case "control", "ctrl":
		if utils.GetCurrentOS() == "macos" {
			return "command"
		}
		return "control"
	case "command", "cmd", "super":
		return "command"
	case "alt", "option":
		return "alt"
	case "shift":
		return "shift"
	default:
		return mod
	}
}
