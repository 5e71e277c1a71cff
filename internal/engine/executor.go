package engine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/ptrgiang/automation-studio/internal/model"
)

// ErrImageNotFound reports that a find_image action exhausted every search
// strategy without a match. It aborts the run: the image was presumed
// necessary for the steps that follow, so continuing would operate on an
// unknown screen state.
var ErrImageNotFound = errors.New("image not found on screen")

// Pacing used inside composite and heuristic actions.
const (
	stabilizeDelay  = 100 * time.Millisecond // before the first locate attempt
	selectionSettle = 200 * time.Millisecond // between select-all and delete
	clickSettle     = 300 * time.Millisecond // after a click that changes focus
	backspacePacing = 10 * time.Millisecond
	backspaceCount  = 50
	extremePresses  = 10 // Home/End repetitions for scroll to top/bottom
	extremePacing   = 100 * time.Millisecond
)

// Executor interprets one action record at a time against an InputSurface.
type Executor struct {
	surface InputSurface
	log     zerolog.Logger
	sleep   func(time.Duration)
	stopped func() bool
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExecutorLogger injects a logger.
func WithExecutorLogger(log zerolog.Logger) ExecutorOption {
	return func(e *Executor) { e.log = log }
}

// WithExecutorSleep replaces the sleep function. Tests use this to observe
// pacing without waiting for it.
func WithExecutorSleep(sleep func(time.Duration)) ExecutorOption {
	return func(e *Executor) { e.sleep = sleep }
}

// WithExecutorStopCheck supplies the stop predicate polled during image
// waits, so a stop request interrupts a long poll instead of waiting out the
// timeout.
func WithExecutorStopCheck(stopped func() bool) ExecutorOption {
	return func(e *Executor) { e.stopped = stopped }
}

// NewExecutor constructs an Executor driving the given surface.
func NewExecutor(surface InputSurface, opts ...ExecutorOption) *Executor {
	e := &Executor{
		surface: surface,
		log:     zerolog.Nop(),
		sleep:   time.Sleep,
		stopped: func() bool { return false },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute performs one action record against the surface, substituting
// placeholders from row, then sleeps the record's wait_after delay. The step
// template is never modified.
func (e *Executor) Execute(step model.Step, row model.Row) error {
	var err error
	switch p := step.Params.(type) {
	case model.ClickParams:
		e.click(p.UseCurrentPosition, p.X, p.Y)
	case model.DeleteParams:
		err = e.deleteContents(p.Method)
	case model.TypeParams:
		e.surface.TypeText(Substitute(p.Text, row), secs(p.Interval))
	case model.KeyPressParams:
		err = e.surface.KeyTap(p.Key)
	case model.SetValueParams:
		err = e.setValue(p, row)
	case model.ScrollParams:
		err = e.scroll(p)
	case model.WaitParams:
		e.wait(p)
	case model.FindImageParams:
		err = e.findImage(p)
	case model.MoveMouseParams:
		e.moveMouse(p)
	default:
		err = fmt.Errorf("action %q has no params", step.Type)
	}
	if err != nil {
		return err
	}

	e.sleep(secs(step.WaitAfter))
	return nil
}

func (e *Executor) click(useCurrent bool, x, y int) {
	if !useCurrent {
		e.surface.MoveTo(x, y)
	}
	e.surface.Click()
}

func (e *Executor) deleteContents(method model.DeleteMethod) error {
	switch method {
	case model.DeleteBackspace:
		// Heuristic: enough presses to clear a typical field, unverified.
		for i := 0; i < backspaceCount; i++ {
			if err := e.surface.KeyTap("backspace"); err != nil {
				return err
			}
			e.sleep(backspacePacing)
		}
		return nil
	case model.DeleteTripleClick:
		for i := 0; i < 3; i++ {
			e.surface.Click()
		}
		e.sleep(selectionSettle)
		return e.surface.KeyTap("delete")
	default: // ctrl_a
		if err := e.surface.KeyTap("a", "ctrl"); err != nil {
			return err
		}
		e.sleep(selectionSettle)
		return e.surface.KeyTap("delete")
	}
}

func (e *Executor) setValue(p model.SetValueParams, row model.Row) error {
	e.click(p.UseCurrentPosition, p.X, p.Y)
	e.sleep(clickSettle)

	if err := e.deleteContents(p.Method); err != nil {
		return err
	}
	e.sleep(clickSettle)

	e.surface.TypeText(Substitute(p.Value, row), secs(model.DefaultTypeInterval))
	return nil
}

func (e *Executor) scroll(p model.ScrollParams) error {
	switch p.ScrollType {
	case model.ScrollTop, model.ScrollBottom:
		key := "home"
		if p.ScrollType == model.ScrollBottom {
			key = "end"
		}
		// Heuristic substitute for "scroll to extreme"; a fixed press count
		// regardless of document length, unverified.
		for i := 0; i < extremePresses; i++ {
			if err := e.surface.KeyTap(key); err != nil {
				return err
			}
			e.sleep(extremePacing)
		}
		return nil
	default:
		e.surface.Scroll(p.Amount)
		return nil
	}
}

func (e *Executor) wait(p model.WaitParams) {
	if p.WaitType != model.WaitImage {
		e.sleep(secs(p.Duration))
		return
	}

	var elapsed float64
	for elapsed < p.Timeout {
		if e.stopped() {
			return
		}
		if _, found, err := e.locateWithFallback(p.ImagePath, p.Confidence); err == nil && found {
			e.log.Info().Str("image", p.ImageName).Float64("elapsed", elapsed).
				Msg("wait: image found")
			return
		}
		e.sleep(secs(p.CheckInterval))
		elapsed += p.CheckInterval
	}
	if !e.stopped() {
		// Absence during a wait is a legitimate outcome, not a defect.
		e.log.Warn().Str("image", p.ImageName).Float64("timeout", p.Timeout).
			Msg("wait: image not found before timeout")
	}
}

func (e *Executor) findImage(p model.FindImageParams) error {
	match, found, err := e.locateWithFallback(p.ImagePath, p.Confidence)
	if err != nil {
		return fmt.Errorf("find_image %q: %w", p.ImagePath, err)
	}
	if !found {
		return fmt.Errorf("find_image %q: %w", p.ImagePath, ErrImageNotFound)
	}

	cx, cy := match.Center()
	e.surface.MoveTo(cx, cy)
	e.log.Info().Str("image", p.ImageName).Int("x", cx).Int("y", cy).Msg("image found")

	if p.ClickAfter {
		e.sleep(clickSettle)
		e.surface.Click()
	}
	return nil
}

func (e *Executor) moveMouse(p model.MoveMouseParams) {
	x, y := e.surface.Position()
	switch p.Direction {
	case model.DirUp:
		y -= p.Distance
	case model.DirDown:
		y += p.Distance
	case model.DirLeft:
		x -= p.Distance
	case model.DirRight:
		x += p.Distance
	}
	e.surface.MoveTo(x, y)
}

// locateWithFallback searches for the image at three confidence tiers: the
// requested threshold, a more tolerant one, then a stricter one. Screen
// rendering (font smoothing, compositing, partial redraws) makes a single
// fixed threshold unreliable; widening then narrowing avoids both false
// negatives and false positives on similar-looking chrome.
func (e *Executor) locateWithFallback(path string, confidence float64) (Match, bool, error) {
	// Let transient rendering artifacts clear before the first attempt.
	e.sleep(stabilizeDelay)

	tiers := []float64{
		confidence,
		math.Max(0.5, confidence-0.2),
		math.Min(0.95, confidence+0.1),
	}
	var lastErr error
	for _, tier := range tiers {
		match, found, err := e.surface.LocateImage(path, tier)
		if err != nil {
			lastErr = err
			e.log.Debug().Err(err).Float64("confidence", tier).Str("image", path).
				Msg("locate attempt failed")
			continue
		}
		if found {
			return match, true, nil
		}
	}
	return Match{}, false, lastErr
}

func secs(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
