package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ptrgiang/automation-studio/internal/engine"
	"github.com/ptrgiang/automation-studio/internal/robot"
	"github.com/ptrgiang/automation-studio/internal/workflow"
)

func newRunCmd(a *app) *cobra.Command {
	var noHotkeys bool

	cmd := &cobra.Command{
		Use:   "run <workflow.json>",
		Short: "Play a workflow once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := workflow.Load(resolveWorkflowPath(args[0]))
			if err != nil {
				return err
			}
			if engine.HasPlaceholders(wf.Actions) {
				a.log.Warn().Str("workflow", wf.Name).
					Msg("workflow references {batch:...} placeholders but no batch data was supplied; use the batch command")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Executing workflow: %s\n", wf.Name)
			if wf.Description != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Description: %s\n", wf.Description)
			}

			runner, cleanup := a.newRunner(cmd, noHotkeys)
			defer cleanup()

			// Playback runs on its own goroutine: input injection and
			// screen polling block, and the hotkey hook must stay
			// responsive.
			done := make(chan bool, 1)
			go func() {
				done <- runner.ExecuteSimulation(wf.Actions, nil)
			}()

			if !<-done {
				return fmt.Errorf("workflow %q did not complete", wf.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noHotkeys, "no-hotkeys", false, "disable the global s/p stop/pause hotkeys")
	return cmd
}

// newRunner wires the robotgo surface, executor and runner to the playback
// controls and the terminal.
func (a *app) newRunner(cmd *cobra.Command, noHotkeys bool) (*engine.Runner, func()) {
	ctrl := &playControl{}

	var removeHook func()
	if !noHotkeys {
		removeHook = listenHotkeys(ctrl)
	}
	removeSignal := stopOnInterrupt(ctrl)

	exec := engine.NewExecutor(robot.NewSurface(),
		engine.WithExecutorLogger(a.log),
		engine.WithExecutorStopCheck(ctrl.ShouldStop),
	)
	runner := engine.NewRunner(exec, engine.Callbacks{
		ShouldStop: ctrl.ShouldStop,
		IsPaused:   ctrl.IsPaused,
		Status: func(message string) {
			fmt.Fprintln(cmd.OutOrStdout(), message)
		},
		Progress: func(current, next string) {
			a.log.Debug().Str("current", current).Str("next", next).Msg("progress")
		},
	},
		engine.WithRunnerLogger(a.log),
		engine.WithPausePoll(a.cfg.PausePoll),
	)

	cleanup := func() {
		removeSignal()
		if removeHook != nil {
			removeHook()
		}
	}
	return runner, cleanup
}
