package engine

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptrgiang/automation-studio/internal/model"
)

// scriptedExecutor records executed steps and fails on demand.
type scriptedExecutor struct {
	executed []model.Step
	rows     []model.Row
	failAt   int // 1-indexed call number that errors, 0 = never
	onCall   func(call int)
}

func (s *scriptedExecutor) Execute(step model.Step, row model.Row) error {
	s.executed = append(s.executed, step)
	s.rows = append(s.rows, row)
	call := len(s.executed)
	if s.onCall != nil {
		s.onCall(call)
	}
	if s.failAt != 0 && call == s.failAt {
		return errors.New("injected failure")
	}
	return nil
}

func enabledStep(desc string) model.Step {
	return model.Step{
		Type:        model.ActionKeyPress,
		Enabled:     true,
		WaitAfter:   model.DefaultWaitAfter,
		Description: desc,
		Params:      model.KeyPressParams{Key: "enter"},
	}
}

func disabledStep(desc string) model.Step {
	s := enabledStep(desc)
	s.Enabled = false
	return s
}

func TestExecuteSimulationRunsAllSteps(t *testing.T) {
	exec := &scriptedExecutor{}
	var statuses []string
	r := NewRunner(exec, Callbacks{Status: func(m string) { statuses = append(statuses, m) }},
		WithRunnerSleep(func(time.Duration) {}))

	ok := r.ExecuteSimulation([]model.Step{enabledStep("a"), enabledStep("b")}, nil)

	assert.True(t, ok)
	assert.Len(t, exec.executed, 2)
	assert.Equal(t, "Completed", statuses[len(statuses)-1])
}

func TestExecuteSimulationSkipsDisabledButKeepsNumbering(t *testing.T) {
	exec := &scriptedExecutor{}
	slept := 0
	var statuses []string
	r := NewRunner(exec, Callbacks{Status: func(m string) { statuses = append(statuses, m) }},
		WithRunnerSleep(func(time.Duration) { slept++ }))

	steps := []model.Step{enabledStep("one"), disabledStep("two"), enabledStep("three")}
	ok := r.ExecuteSimulation(steps, nil)

	assert.True(t, ok)
	// The disabled step reached neither the executor nor a sleep.
	assert.Len(t, exec.executed, 2)
	assert.Zero(t, slept)
	assert.Contains(t, statuses, "[2/3] SKIPPED (disabled): KEY_PRESS")
	assert.Contains(t, statuses, "[3/3] KEY_PRESS: three")
}

func TestExecuteSimulationStopsBeforeStep(t *testing.T) {
	stop := false
	exec := &scriptedExecutor{onCall: func(call int) {
		if call == 2 {
			stop = true
		}
	}}
	var statuses []string
	r := NewRunner(exec, Callbacks{
		ShouldStop: func() bool { return stop },
		Status:     func(m string) { statuses = append(statuses, m) },
	}, WithRunnerSleep(func(time.Duration) {}))

	steps := []model.Step{enabledStep("1"), enabledStep("2"), enabledStep("3"), enabledStep("4")}
	ok := r.ExecuteSimulation(steps, nil)

	assert.False(t, ok)
	// Steps 1 and 2 ran; the stop was observed before step 3.
	assert.Len(t, exec.executed, 2)
	assert.Contains(t, statuses, "Simulation stopped at step 3/4")
}

func TestExecuteSimulationPauseBlocksThenResumesSameStep(t *testing.T) {
	paused := true
	polls := 0
	exec := &scriptedExecutor{}
	r := NewRunner(exec, Callbacks{IsPaused: func() bool { return paused }},
		WithRunnerSleep(func(time.Duration) {
			polls++
			if polls >= 3 {
				paused = false
			}
		}))

	steps := []model.Step{enabledStep("a"), enabledStep("b")}
	ok := r.ExecuteSimulation(steps, nil)

	assert.True(t, ok)
	// The pause held for three poll intervals, then both steps ran exactly
	// once, in order.
	assert.Equal(t, 3, polls)
	require.Len(t, exec.executed, 2)
	assert.Equal(t, "a", exec.executed[0].Description)
	assert.Equal(t, "b", exec.executed[1].Description)
}

func TestExecuteSimulationPauseYieldsToStop(t *testing.T) {
	stop := false
	polls := 0
	exec := &scriptedExecutor{}
	r := NewRunner(exec, Callbacks{
		IsPaused:   func() bool { return true },
		ShouldStop: func() bool { return stop },
	}, WithRunnerSleep(func(time.Duration) {
		polls++
		if polls >= 2 {
			stop = true
		}
	}))

	ok := r.ExecuteSimulation([]model.Step{enabledStep("a")}, nil)

	assert.False(t, ok)
	assert.Empty(t, exec.executed)
}

func TestExecuteSimulationErrorAbortsRun(t *testing.T) {
	exec := &scriptedExecutor{failAt: 2}
	var statuses []string
	r := NewRunner(exec, Callbacks{Status: func(m string) { statuses = append(statuses, m) }},
		WithRunnerSleep(func(time.Duration) {}))

	steps := []model.Step{enabledStep("1"), enabledStep("2"), enabledStep("3")}
	ok := r.ExecuteSimulation(steps, nil)

	assert.False(t, ok)
	assert.Len(t, exec.executed, 2)
	assert.Contains(t, statuses, "Error: injected failure")
}

func TestExecuteSimulationProgressText(t *testing.T) {
	exec := &scriptedExecutor{}
	var progress [][2]string
	r := NewRunner(exec, Callbacks{Progress: func(cur, next string) {
		progress = append(progress, [2]string{cur, next})
	}}, WithRunnerSleep(func(time.Duration) {}))

	steps := []model.Step{
		{Type: model.ActionClick, Enabled: true, Params: model.ClickParams{X: 1, Y: 2}},
		{Type: model.ActionTypeText, Enabled: true, Params: model.TypeParams{Text: "hi {batch:name}"}},
	}
	ok := r.ExecuteSimulation(steps, model.Row{"name": "Ann"})

	assert.True(t, ok)
	require.Len(t, progress, 2)
	assert.Equal(t, "Step 1/2: CLICK at (1, 2)", progress[0][0])
	assert.Equal(t, `Next: TYPE "hi Ann"`, progress[0][1])
	assert.Equal(t, "Finish", progress[1][1])
}

func TestExecuteBatchAllRowsSucceed(t *testing.T) {
	exec := &scriptedExecutor{}
	r := NewRunner(exec, Callbacks{}, WithRunnerSleep(func(time.Duration) {}))

	rows := []model.Row{{"x": "1"}, {"x": "2"}, {"x": "3"}}
	result := r.ExecuteBatch([]model.Step{enabledStep("a")}, rows, DefaultBatchDelay)

	assert.Equal(t, BatchResult{SuccessCount: 3, TotalCount: 3}, result)
	require.Len(t, exec.rows, 3)
	assert.Equal(t, "1", exec.rows[0]["x"])
	assert.Equal(t, "3", exec.rows[2]["x"])
}

func TestExecuteBatchStopBetweenRows(t *testing.T) {
	stop := false
	exec := &scriptedExecutor{onCall: func(call int) {
		if call == 2 { // after row 2's single step
			stop = true
		}
	}}
	r := NewRunner(exec, Callbacks{ShouldStop: func() bool { return stop }},
		WithRunnerSleep(func(time.Duration) {}))

	rows := []model.Row{{"x": "1"}, {"x": "2"}, {"x": "3"}}
	result := r.ExecuteBatch([]model.Step{enabledStep("a")}, rows, DefaultBatchDelay)

	// Row 3 never started; the tally reflects exactly the rows attempted.
	assert.Equal(t, 2, result.TotalCount)
	assert.LessOrEqual(t, result.SuccessCount, result.TotalCount)
}

func TestExecuteBatchStopBeforeFirstRow(t *testing.T) {
	exec := &scriptedExecutor{}
	r := NewRunner(exec, Callbacks{ShouldStop: func() bool { return true }},
		WithRunnerSleep(func(time.Duration) {}))

	result := r.ExecuteBatch([]model.Step{enabledStep("a")}, []model.Row{{"x": "1"}}, DefaultBatchDelay)

	assert.Equal(t, BatchResult{SuccessCount: 0, TotalCount: 0}, result)
	assert.Empty(t, exec.executed)
}

func TestExecuteBatchFailedRowNotCounted(t *testing.T) {
	exec := &scriptedExecutor{failAt: 2}
	r := NewRunner(exec, Callbacks{}, WithRunnerSleep(func(time.Duration) {}))

	rows := []model.Row{{"x": "1"}, {"x": "2"}, {"x": "3"}}
	result := r.ExecuteBatch([]model.Step{enabledStep("a")}, rows, DefaultBatchDelay)

	assert.Equal(t, BatchResult{SuccessCount: 2, TotalCount: 3}, result)
}

func TestExecuteBatchDelayOnlyBetweenRows(t *testing.T) {
	exec := &scriptedExecutor{}
	var delays []time.Duration
	r := NewRunner(exec, Callbacks{}, WithRunnerSleep(func(d time.Duration) {
		delays = append(delays, d)
	}))

	rows := []model.Row{{"x": "1"}, {"x": "2"}, {"x": "3"}}
	r.ExecuteBatch([]model.Step{enabledStep("a")}, rows, 2*time.Second)

	// Two gaps for three rows, none after the last.
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, delays)
}

// End-to-end through the real Executor: each batch row substitutes against
// the pristine template.
func TestExecuteBatchSubstitutesPerRow(t *testing.T) {
	surface := &fakeSurface{}
	exec := NewExecutor(surface, WithExecutorSleep(func(time.Duration) {}))
	r := NewRunner(exec, Callbacks{}, WithRunnerSleep(func(time.Duration) {}))

	steps := []model.Step{{
		Type: model.ActionTypeText, Enabled: true,
		Params: model.TypeParams{Text: "Hello {batch:name}", Interval: 0.1},
	}}
	rows := []model.Row{{"name": "A"}, {"name": "B"}}
	result := r.ExecuteBatch(steps, rows, time.Second)

	assert.Equal(t, BatchResult{SuccessCount: 2, TotalCount: 2}, result)
	assert.Equal(t, []string{
		`type("Hello A",100ms)`,
		`type("Hello B",100ms)`,
	}, surface.ops)
	assert.Equal(t, "Hello {batch:name}", steps[0].Params.(model.TypeParams).Text)
}

func TestDescribeStepFormats(t *testing.T) {
	cases := []struct {
		step model.Step
		want string
	}{
		{model.Step{Type: model.ActionClick, Params: model.ClickParams{UseCurrentPosition: true}}, "at current position"},
		{model.Step{Type: model.ActionKeyPress, Params: model.KeyPressParams{Key: "enter"}}, "ENTER"},
		{model.Step{Type: model.ActionScroll, Params: model.ScrollParams{ScrollType: model.ScrollAmount, Amount: -300}}, "-300 pixels"},
		{model.Step{Type: model.ActionScroll, Params: model.ScrollParams{ScrollType: model.ScrollBottom}}, "to bottom"},
		{model.Step{Type: model.ActionWait, Params: model.WaitParams{WaitType: model.WaitDuration, Duration: 1.5}}, "1.5s"},
		{model.Step{Type: model.ActionWait, Params: model.WaitParams{WaitType: model.WaitImage, ImageName: "logo"}}, "for logo"},
		{model.Step{Type: model.ActionFindImage, Params: model.FindImageParams{ImageName: "btn"}}, "btn"},
		{model.Step{Type: model.ActionMoveMouse, Params: model.MoveMouseParams{Direction: model.DirUp, Distance: 40}}, "up 40px"},
		{model.Step{Type: model.ActionDelete, Params: model.DeleteParams{Method: model.DeleteCtrlA}}, "(ctrl_a)"},
	}
	for _, tc := range cases {
		t.Run(string(tc.step.Type), func(t *testing.T) {
			assert.Equal(t, tc.want, describeStep(tc.step, nil))
		})
	}
}

func TestDescribeStepTruncatesLongText(t *testing.T) {
	long := ""
	for i := 0; i < 10; i++ {
		long += "0123456789"
	}
	s := model.Step{Type: model.ActionTypeText, Params: model.TypeParams{Text: long}}
	assert.Equal(t, fmt.Sprintf("%q", long[:40]), describeStep(s, nil))
}
