// ABOUTME: Root Cobra command for the gymlog CLI.
// ABOUTME: Opens and closes the application context via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"os"

	"github.com/harperreed/gymlog/internal/app"
	"github.com/harperreed/gymlog/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	gym *app.App
	cfg *config.Config

	dataDirFlag string
	backendFlag string
	verboseFlag bool
)

// commands that never touch the store
var noStoreCommands = map[string]bool{
	"help":          true,
	"version":       true,
	"install-skill": true,
	"completion":    true,
	"migrate":       true,
}

var rootCmd = &cobra.Command{
	Use:   "gymlog",
	Short: "Local workout log",
	Long: `gymlog keeps a local log of your training and computes statistics from it.

WHAT IT TRACKS:

  Sets        weighted (kg × reps), bodyweight (reps + added kg), timed (minutes, km, m)
  Sessions    named workouts holding exercises with sets, reps, weight and category
  Profile     nickname, body weight history, height, preferred 1RM formula

QUICK START:

  $ gymlog add weighted "Bench Press" 80 8     # Log a weighted set
  $ gymlog add bodyweight "Pull Up" 10         # Log a bodyweight set
  $ gymlog add timed Run 30 --distance 5.2     # Log a timed set
  $ gymlog list                                # See recent sets
  $ gymlog stats records                       # Personal records

SESSIONS:

  $ gymlog session new "Leg Day"               # Start a session
  $ gymlog exercise add abc123 Squat --sets 5 --reps 5 --weight 100
  $ gymlog session stats abc123                # Session totals

MCP INTEGRATION:

  Run 'gymlog mcp' to start the Model Context Protocol server for use with
  Claude Desktop or other MCP-compatible AI assistants. Add to your Claude
  config:

  {
    "mcpServers": {
      "gymlog": { "command": "gymlog", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  Data is stored in SQLite at ~/.local/share/gymlog/gymlog.db by default.
  Set "backend": "badger" in ~/.config/gymlog/config.json to use Badger instead,
  and run 'gymlog migrate --to badger' to copy existing data over.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		if noStoreCommands[cmd.Name()] {
			return nil
		}

		var err error
		gym, err = app.Open(cfg, newLogger())
		if err != nil {
			return fmt.Errorf("failed to open gymlog: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeApp()
	},
}

// closeApp releases the store. PostRun is skipped when a command fails, so
// main calls it again after Execute.
func closeApp() error {
	if gym == nil {
		return nil
	}
	err := gym.Close()
	gym = nil
	return err
}

func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}
	if backendFlag != "" {
		cfg.Backend = backendFlag
	}
	return nil
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	lvl, err := cfg.GetLogLevel()
	if err != nil {
		logger.WithError(err).Warn("using info log level")
	}
	if verboseFlag {
		lvl = logrus.DebugLevel
	}
	logger.SetLevel(lvl)
	return logger
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "storage backend: sqlite or badger (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
}
