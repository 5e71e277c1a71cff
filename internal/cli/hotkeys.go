package cli

import (
	"sync/atomic"

	hook "github.com/robotn/gohook"
)

// playControl is the stop/pause state a playback run polls. Stop is one-way
// for the duration of a run; pause toggles.
type playControl struct {
	stop  atomic.Bool
	pause atomic.Bool
}

func (c *playControl) ShouldStop() bool { return c.stop.Load() }
func (c *playControl) IsPaused() bool   { return c.pause.Load() }
func (c *playControl) RequestStop()     { c.stop.Store(true) }
func (c *playControl) TogglePause()     { c.pause.Store(!c.pause.Load()) }

// listenHotkeys installs a global keyboard hook for the playback hotkeys:
// "s" requests a stop, "p" toggles pause. The returned function removes the
// hook.
func listenHotkeys(ctrl *playControl) func() {
	done := make(chan struct{})

	go func() {
		evChan := hook.Start()
		defer hook.End()

		for {
			select {
			case ev, ok := <-evChan:
				if !ok {
					return
				}
				if ev.Kind != hook.KeyDown {
					continue
				}
				switch ev.Keychar {
				case 's', 'S':
					ctrl.RequestStop()
				case 'p', 'P':
					ctrl.TogglePause()
				}
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }
}
