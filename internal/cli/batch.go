package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ptrgiang/automation-studio/internal/engine"
	"github.com/ptrgiang/automation-studio/internal/workflow"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		dataPath  string
		delay     time.Duration
		noHotkeys bool
	)

	cmd := &cobra.Command{
		Use:   "batch <workflow.json>",
		Short: "Play a workflow once per row of a CSV data table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := workflow.Load(resolveWorkflowPath(args[0]))
			if err != nil {
				return err
			}
			rows, err := workflow.LoadRows(dataPath)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				return fmt.Errorf("batch data %q has no rows", dataPath)
			}

			if !cmd.Flags().Changed("delay") {
				delay = a.cfg.BatchDelay
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Executing workflow: %s (%d rows)\n", wf.Name, len(rows))

			runner, cleanup := a.newRunner(cmd, noHotkeys)
			defer cleanup()

			done := make(chan engine.BatchResult, 1)
			go func() {
				done <- runner.ExecuteBatch(wf.Actions, rows, delay)
			}()
			result := <-done

			fmt.Fprintf(cmd.OutOrStdout(), "Batch finished: %d/%d rows succeeded (%d attempted)\n",
				result.SuccessCount, len(rows), result.TotalCount)
			if result.SuccessCount != len(rows) {
				return fmt.Errorf("batch incomplete: %d/%d rows succeeded", result.SuccessCount, len(rows))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "CSV file with a header row naming the {batch:...} columns")
	cmd.Flags().DurationVar(&delay, "delay", engine.DefaultBatchDelay, "settle time between rows")
	cmd.Flags().BoolVar(&noHotkeys, "no-hotkeys", false, "disable the global s/p stop/pause hotkeys")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}
