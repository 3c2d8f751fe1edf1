// ABOUTME: CLI commands for training statistics.
// ABOUTME: Records, rankings, 1RM estimates, BMI and per-exercise progress.
package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/stats"
	"github.com/spf13/cobra"
)

var (
	statsLimit   int
	statsFormula string
	statsAll     bool
	statsDaily   bool
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"s"},
	Short:   "Training statistics",
	Long: `Statistics computed from your logged sets.

COMMANDS:

  top       Most frequently logged exercises
  records   Best set per exercise
  1rm       One-rep max estimate from weight and reps
  bmi       Body mass index from profile or arguments
  series    Progress of one exercise over time`,
}

var statsTopCmd = &cobra.Command{
	Use:   "top",
	Short: "Most frequently logged exercises",
	RunE: func(cmd *cobra.Command, args []string) error {
		sets, err := gym.Sets.ListSets(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		top := stats.TopExercises(sets, statsLimit)
		if len(top) == 0 {
			fmt.Fprintln(out, "No sets found.")
			return nil
		}
		for i, te := range top {
			fmt.Fprintf(out, "%2d. %s %4d sets  %s\n", i+1, padRight(te.Name, 24), te.Count,
				faint.Sprintf("%g kg volume", stats.Round1(te.TotalVolume)))
		}
		return nil
	},
}

var statsRecordsCmd = &cobra.Command{
	Use:     "records",
	Aliases: []string{"pr"},
	Short:   "Personal records",
	RunE: func(cmd *cobra.Command, args []string) error {
		sets, err := gym.Sets.ListSets(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		records := stats.PersonalRecords(sets)
		if len(records) == 0 {
			fmt.Fprintln(out, "No records yet.")
			return nil
		}
		for _, r := range records {
			fmt.Fprintf(out, "%s %s %s\n",
				padRight(r.Exercise, 24),
				padRight(describeRecord(r), 20),
				faint.Sprint(r.Timestamp.In(gym.Location).Format("2006-01-02")))
		}
		return nil
	},
}

func describeRecord(r stats.PersonalRecord) string {
	switch r.Type {
	case models.SetBodyweight:
		if r.AddedWeight > 0 {
			return fmt.Sprintf("%d reps (+%g kg)", r.Reps, r.AddedWeight)
		}
		return fmt.Sprintf("%d reps", r.Reps)
	case models.SetTimed:
		return fmt.Sprintf("%g min", r.Duration)
	default:
		return fmt.Sprintf("%g kg × %d", r.Weight, r.Reps)
	}
}

var statsOneRMCmd = &cobra.Command{
	Use:   "1rm <weight> <reps>",
	Short: "Estimate a one-rep max",
	Long: `Estimate a one-rep max. Estimates outside 1-10 reps are marked as
low confidence.

FORMULAS:

  epley, brzycki, lombardi, landers, oconner, average

EXAMPLES:

  gymlog stats 1rm 100 5
  gymlog stats 1rm 100 5 --formula brzycki
  gymlog stats 1rm 100 5 --all`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		weight, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid weight: %s", args[0])
		}
		reps, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid reps: %s", args[1])
		}

		var f stats.Formula
		if !statsAll {
			if statsFormula != "" {
				f, err = stats.ParseFormula(statsFormula)
			} else {
				f, err = gym.OneRMFormula(cmd.Context())
			}
			if err != nil {
				return err
			}
		}
		estimates, err := gym.OneRepMax(weight, reps, f, statsAll)
		if errors.Is(err, stats.ErrSingularFormula) {
			return fmt.Errorf("%d reps is outside the range of this formula", reps)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, e := range estimates {
			line := fmt.Sprintf("%s %g kg", padRight(stats.FormulaLabels[e.Formula], 10), stats.Round1(e.Value))
			if e.LowConfidence {
				line += " " + yellow.Sprint("(low confidence)")
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

var statsBMICmd = &cobra.Command{
	Use:   "bmi [weight-kg height-cm]",
	Short: "Body mass index",
	Args:  cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var weight, height float64
		if len(args) == 2 {
			var err error
			if weight, err = strconv.ParseFloat(args[0], 64); err != nil {
				return fmt.Errorf("invalid weight: %s", args[0])
			}
			if height, err = strconv.ParseFloat(args[1], 64); err != nil {
				return fmt.Errorf("invalid height: %s", args[1])
			}
		} else {
			p, err := gym.Profile.Profile(cmd.Context())
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("no profile saved; pass weight and height or run 'gymlog profile set'")
			}
			weight, height = p.Weight, p.Height
		}

		res, err := stats.BMI(weight, height)
		if err != nil {
			return fmt.Errorf("weight and height must be positive: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "BMI %g (%s)\n", res.Value, res.Category)
		return nil
	},
}

var statsSeriesCmd = &cobra.Command{
	Use:   "series <exercise>",
	Short: "Progress of one exercise over time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sets, err := gym.Sets.ListSets(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if statsDaily {
			days := stats.DailyHistory(sets, args[0], gym.Location)
			if len(days) == 0 {
				fmt.Fprintf(out, "No sets for %s.\n", args[0])
				return nil
			}
			for _, d := range days {
				fmt.Fprintf(out, "%s %2d sets  avg %g kg × %g  %s\n",
					faint.Sprint(d.Day.Format("2006-01-02")), d.Sets, d.AvgWeight, d.AvgReps,
					faint.Sprintf("%g min", d.AvgDuration))
			}
			return nil
		}

		f, err := gym.OneRMFormula(ctx)
		if err != nil {
			return err
		}
		points := stats.ExerciseSeries(sets, args[0], f)
		if len(points) == 0 {
			fmt.Fprintf(out, "No sets for %s.\n", args[0])
			return nil
		}
		for _, p := range points {
			ts := faint.Sprint(p.Timestamp.In(gym.Location).Format("2006-01-02 15:04"))
			switch {
			case p.Duration > 0:
				fmt.Fprintf(out, "%s %g min  %g km\n", ts, p.Duration, p.Distance)
			case p.Volume > 0:
				fmt.Fprintf(out, "%s %g kg × %d  volume %g  1RM %g\n", ts, p.Weight, p.Reps, p.Volume, p.OneRM)
			default:
				fmt.Fprintf(out, "%s %d reps  +%g kg\n", ts, p.Reps, p.Weight)
			}
		}
		return nil
	},
}

func init() {
	statsTopCmd.Flags().IntVarP(&statsLimit, "limit", "n", 5, "number of exercises (0 for all)")
	statsOneRMCmd.Flags().StringVarP(&statsFormula, "formula", "f", "", "formula (default from profile or config)")
	statsOneRMCmd.Flags().BoolVar(&statsAll, "all", false, "show every formula")
	statsSeriesCmd.Flags().BoolVar(&statsDaily, "daily", false, "average sets per day")

	statsCmd.AddCommand(statsTopCmd, statsRecordsCmd, statsOneRMCmd, statsBMICmd, statsSeriesCmd)
	rootCmd.AddCommand(statsCmd)
}
