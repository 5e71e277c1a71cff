// Package cli implements the automation-studio command line interface.
package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ptrgiang/automation-studio/internal/config"
	"github.com/ptrgiang/automation-studio/internal/logger"
	"github.com/ptrgiang/automation-studio/pkg/utils"
)

// Version is stamped by the build.
var Version = "dev"

// app carries state shared by every command.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	var logLevel string

	root := &cobra.Command{
		Use:     "automation-studio",
		Short:   "Replay recorded desktop workflows",
		Long:    "automation-studio replays recorded desktop interaction workflows, optionally once per row of a batch data table.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			log, err := logger.New(logger.Options{
				Level:         cfg.LogLevel,
				HumanReadable: !cfg.LogJSON,
			})
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}
			a.cfg = cfg
			a.log = log
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newBatchCmd(a))
	return root
}

// Execute runs the CLI and returns a process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// resolveWorkflowPath falls back to the per-user workflows directory when
// the given path does not exist, so saved workflows can be referenced by
// file name alone.
func resolveWorkflowPath(path string) string {
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if filepath.IsAbs(path) {
		return path
	}
	fallback := filepath.Join(utils.GetWorkflowsDir(), path)
	if _, err := os.Stat(fallback); err == nil {
		return fallback
	}
	return path
}

// stopOnInterrupt maps Ctrl-C onto a stop request so a run terminates at the
// next step boundary instead of mid-action.
func stopOnInterrupt(ctrl *playControl) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		for range ch {
			ctrl.RequestStop()
		}
	}()
	return func() { signal.Stop(ch) }
}
