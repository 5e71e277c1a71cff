package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ptrgiang/automation-studio/internal/model"
)

// DefaultBatchDelay is the settle time between batch rows, for applications
// that need it (page reloads and the like).
const DefaultBatchDelay = 2 * time.Second

// DefaultPausePoll bounds how long a pause or stop request can go unnoticed
// while a run is suspended.
const DefaultPausePoll = 100 * time.Millisecond

// ActionExecutor executes a single action record. Satisfied by *Executor.
type ActionExecutor interface {
	Execute(step model.Step, row model.Row) error
}

// Callbacks are the caller-owned capabilities a run reports through. Stop and
// pause are polled predicates, never pushed events, which keeps the engine
// independent of the caller's threading model. Any of them may be nil.
type Callbacks struct {
	// ShouldStop is polled before each step, during pauses and during image
	// waits. Once it returns true the run terminates and does not resume.
	ShouldStop func() bool
	// IsPaused is polled before each step; while true the run blocks without
	// skipping or repeating a step.
	IsPaused func() bool
	// Status receives fire-and-forget human-readable status text.
	Status func(message string)
	// Progress receives the formatted current and upcoming step once per
	// executed step.
	Progress func(currentStep, nextStep string)
}

// BatchResult aggregates a batch run. TotalCount counts rows attempted;
// SuccessCount counts rows whose run completed.
type BatchResult struct {
	SuccessCount int `json:"success_count"`
	TotalCount   int `json:"total_count"`
}

// Runner drives an ordered action sequence through an executor, honoring
// cooperative stop/pause signaling. Runs execute strictly in record order on
// whatever goroutine calls them; each action is presumed to depend on screen
// state left by the previous one.
type Runner struct {
	exec      ActionExecutor
	cb        Callbacks
	log       zerolog.Logger
	sleep     func(time.Duration)
	pausePoll time.Duration
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger injects a logger.
func WithRunnerLogger(log zerolog.Logger) RunnerOption {
	return func(r *Runner) { r.log = log }
}

// WithRunnerSleep replaces the sleep function, for tests.
func WithRunnerSleep(sleep func(time.Duration)) RunnerOption {
	return func(r *Runner) { r.sleep = sleep }
}

// WithPausePoll overrides the pause poll interval.
func WithPausePoll(interval time.Duration) RunnerOption {
	return func(r *Runner) { r.pausePoll = interval }
}

// NewRunner constructs a Runner delegating to exec.
func NewRunner(exec ActionExecutor, cb Callbacks, opts ...RunnerOption) *Runner {
	r := &Runner{
		exec:      exec,
		cb:        cb,
		log:       zerolog.Nop(),
		sleep:     time.Sleep,
		pausePoll: DefaultPausePoll,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) stoppedNow() bool {
	return r.cb.ShouldStop != nil && r.cb.ShouldStop()
}

func (r *Runner) pausedNow() bool {
	return r.cb.IsPaused != nil && r.cb.IsPaused()
}

func (r *Runner) status(message string) {
	if r.cb.Status != nil {
		r.cb.Status(message)
	}
}

// waitWhilePaused blocks until the pause predicate clears or a stop request
// fires. This is the run's only suspension point.
func (r *Runner) waitWhilePaused() {
	for r.pausedNow() && !r.stoppedNow() {
		r.sleep(r.pausePoll)
	}
}

// ExecuteSimulation runs the sequence once with row as substitution context.
// It returns true on completion, false when stopped or when a step fails.
func (r *Runner) ExecuteSimulation(steps []model.Step, row model.Row) (completed bool) {
	runID := uuid.NewString()
	log := r.log.With().Str("run_id", runID).Logger()
	log.Info().Int("steps", len(steps)).Msg("starting run")

	defer func() {
		if rec := recover(); rec != nil {
			r.status(fmt.Sprintf("Error: %v", rec))
			log.Error().Interface("panic", rec).Msg("run aborted by panic")
			completed = false
		}
	}()

	total := len(steps)
	r.status("Playing simulation... (press s to stop, p to pause)")

	for i, step := range steps {
		n := i + 1

		if r.pausedNow() {
			r.waitWhilePaused()
		}
		if r.stoppedNow() {
			r.status(fmt.Sprintf("Simulation stopped at step %d/%d", n, total))
			log.Info().Int("step", n).Msg("run stopped")
			return false
		}

		// Disabled steps keep their number for status text but cost nothing.
		if !step.Enabled {
			r.status(fmt.Sprintf("[%d/%d] SKIPPED (disabled): %s", n, total, stepLabel(step)))
			continue
		}

		r.status(fmt.Sprintf("[%d/%d] %s: %s", n, total, stepLabel(step), step.Description))
		if r.cb.Progress != nil {
			current := fmt.Sprintf("Step %d/%d: %s %s", n, total, stepLabel(step), describeStep(step, row))
			next := "Finish"
			if n < total {
				upcoming := steps[n]
				next = fmt.Sprintf("Next: %s %s", stepLabel(upcoming), describeStep(upcoming, row))
			}
			r.cb.Progress(current, next)
		}

		log.Debug().Int("step", n).Str("type", string(step.Type)).Msg("executing action")
		if err := r.exec.Execute(step, row); err != nil {
			r.status(fmt.Sprintf("Error: %v", err))
			log.Error().Err(err).Int("step", n).Msg("run failed")
			return false
		}
	}

	r.status("Completed")
	log.Info().Msg("run completed")
	return true
}

// ExecuteBatch runs the sequence once per row, substituting each row in
// turn. Every row runs against a fresh copy of the template so earlier rows
// can never leak substituted values into later ones. Between rows (not after
// the last) the runner sleeps delayBetween; a stop issued during that gap is
// observed at the top of the next row.
func (r *Runner) ExecuteBatch(steps []model.Step, rows []model.Row, delayBetween time.Duration) BatchResult {
	successCount := 0

	for i, row := range rows {
		n := i + 1
		if r.stoppedNow() {
			r.status(fmt.Sprintf("Batch stopped at item %d/%d", n, len(rows)))
			return BatchResult{SuccessCount: successCount, TotalCount: n - 1}
		}

		r.status(fmt.Sprintf("Batch [%d/%d]", n, len(rows)))
		if r.ExecuteSimulation(model.CloneSteps(steps), row) {
			successCount++
		}

		if r.stoppedNow() {
			return BatchResult{SuccessCount: successCount, TotalCount: n}
		}
		if n < len(rows) {
			r.sleep(delayBetween)
		}
	}

	r.status(fmt.Sprintf("Batch complete: %d/%d successful", successCount, len(rows)))
	return BatchResult{SuccessCount: successCount, TotalCount: len(rows)}
}
