// ABOUTME: CLI commands for logging sets.
// ABOUTME: One subcommand per set type: weighted, bodyweight, timed.
package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/setlog"
	"github.com/harperreed/gymlog/internal/stats"
	"github.com/spf13/cobra"
)

var (
	addAt        string
	addAdded     float64
	addDistance  float64
	addElevation float64
)

var addCmd = &cobra.Command{
	Use:     "add",
	Aliases: []string{"a"},
	Short:   "Log a set",
	Long: `Log a set of an exercise. An exercise keeps the type of its first set:
once "Pull Up" is logged as bodyweight it cannot be logged as weighted.

Examples:
  gymlog add weighted "Bench Press" 82.5 8
  gymlog add bodyweight "Pull Up" 10 --added 5
  gymlog add timed Run 30 --distance 5.2 --elevation 40
  gymlog add weighted Squat 100 5 --at "2024-12-14 07:00"`,
}

var addWeightedCmd = &cobra.Command{
	Use:   "weighted <exercise> <weight> <reps>",
	Short: "Log a weighted set (kg × reps)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		weight, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid weight: %s", args[1])
		}
		reps, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid reps: %s", args[2])
		}

		record, err := gym.Sets.CheckNewRecord(cmd.Context(), args[0], weight)
		if err != nil {
			return err
		}
		set, err := logSet(cmd, args[0], models.Weighted{Weight: weight, Reps: reps})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if record != nil {
			cyan.Fprintf(out, "  🏆 New personal record! %g kg → %g kg (+%g kg)\n",
				record.PreviousWeight, record.NewWeight, record.Improvement)
			fmt.Fprintln(out)
			fmt.Fprintln(out, stats.NewRecordShareText(*record, reps))
		}
		if next, ok := stats.SuggestNextWeight(set, reps); ok {
			fmt.Fprintf(out, "  %s\n", faint.Sprintf("next time try %g kg", next))
		}
		return nil
	},
}

var addBodyweightCmd = &cobra.Command{
	Use:   "bodyweight <exercise> <reps>",
	Short: "Log a bodyweight set",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reps, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid reps: %s", args[1])
		}
		bw, err := gym.BodyWeight(cmd.Context())
		if err != nil {
			return err
		}
		_, err = logSet(cmd, args[0], models.Bodyweight{Reps: reps, AddedWeight: addAdded, BodyWeight: bw})
		return err
	},
}

var addTimedCmd = &cobra.Command{
	Use:   "timed <exercise> <minutes>",
	Short: "Log a timed set",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid duration: %s", args[1])
		}
		m := models.Timed{Duration: minutes}
		if cmd.Flags().Changed("distance") {
			m.Distance = &addDistance
		}
		if cmd.Flags().Changed("elevation") {
			m.Elevation = &addElevation
		}
		_, err = logSet(cmd, args[0], m)
		return err
	},
}

func logSet(cmd *cobra.Command, exercise string, m models.Metrics) (*models.Set, error) {
	in := setlog.SetInput{Exercise: exercise, Metrics: m}
	if addAt != "" {
		t, err := parseTime(addAt, gym.Location)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp: %s", addAt)
		}
		in.Timestamp = t
	}

	set, err := gym.Sets.AddSet(cmd.Context(), in)
	if err != nil {
		return nil, fmt.Errorf("failed to add set: %w", err)
	}

	out := cmd.OutOrStdout()
	success(out, "Logged %s", set.Exercise)
	printSetLine(out, set)
	return set, nil
}

func printSetLine(w io.Writer, s *models.Set) {
	fmt.Fprintf(w, "  %s %s\n", faint.Sprint(shortID(s.ID)), describeMetrics(s.Metrics))
}

func init() {
	addCmd.PersistentFlags().StringVar(&addAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")
	addBodyweightCmd.Flags().Float64Var(&addAdded, "added", 0, "extra load in kg")
	addTimedCmd.Flags().Float64Var(&addDistance, "distance", 0, "distance in km")
	addTimedCmd.Flags().Float64Var(&addElevation, "elevation", 0, "elevation gain in meters")

	addCmd.AddCommand(addWeightedCmd, addBodyweightCmd, addTimedCmd)
	rootCmd.AddCommand(addCmd)
}
