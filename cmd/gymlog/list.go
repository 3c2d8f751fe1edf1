// ABOUTME: CLI commands for listing, editing and deleting sets.
// ABOUTME: Sets are addressed by full ID or an 8-character prefix.
package main

import (
	"fmt"
	"strings"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/setlog"
	"github.com/spf13/cobra"
)

var (
	listExercise string
	listType     string
	listLimit    int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List logged sets",
	Long: `List recent sets, newest first.

OUTPUT FORMAT:

  Each line shows: ID  TIMESTAMP  EXERCISE  METRICS

  The ID is an 8-character prefix you can use with edit and delete.

EXAMPLES:

  gymlog list                         # Last 20 sets
  gymlog list --exercise squat        # Only squats (case-insensitive)
  gymlog list --type timed -n 50      # Last 50 timed sets
  gymlog list --names                 # Exercise names instead of sets`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		var filter *models.SetType
		if listType != "" {
			t, err := models.ParseSetType(listType)
			if err != nil {
				return err
			}
			filter = &t
		}

		sets, err := gym.Sets.ListSets(ctx)
		if err != nil {
			return fmt.Errorf("failed to list sets: %w", err)
		}

		if names, _ := cmd.Flags().GetBool("names"); names {
			list, err := gym.Sets.ExerciseNames(ctx, filter)
			if err != nil {
				return err
			}
			types := make(map[string]models.SetType)
			for _, s := range sets {
				key := strings.ToLower(s.Exercise)
				if _, ok := types[key]; !ok {
					types[key] = s.Type()
				}
			}
			for _, n := range list {
				fmt.Fprintf(out, "%s %s\n", padRight(n, 24), faint.Sprint(models.SetTypeLabels[types[strings.ToLower(n)]]))
			}
			return nil
		}

		shown := 0
		for _, s := range sets {
			if listExercise != "" && !strings.EqualFold(s.Exercise, listExercise) {
				continue
			}
			if filter != nil && s.Type() != *filter {
				continue
			}
			printSet(out, s, gym.Location)
			shown++
			if listLimit > 0 && shown == listLimit {
				break
			}
		}
		if shown == 0 {
			fmt.Fprintln(out, "No sets found.")
		}
		return nil
	},
}

var (
	editExercise  string
	editWeight    float64
	editReps      int
	editAdded     float64
	editDuration  float64
	editDistance  float64
	editElevation float64
	editAt        string
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a logged set",
	Long: `Change fields of a logged set. Only the flags you pass are changed.
Metric flags must match the set's type.

EXAMPLES:

  gymlog edit abc12345 --weight 85
  gymlog edit abc12345 --exercise "Incline Bench" --at "2024-12-14 18:00"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := gym.Sets.ResolveID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("set not found: %s", args[0])
		}
		set, err := gym.Sets.GetSet(ctx, id)
		if err != nil {
			return err
		}
		if set == nil {
			return fmt.Errorf("set not found: %s", args[0])
		}

		var patch setlog.SetPatch
		flags := cmd.Flags()
		if flags.Changed("exercise") {
			patch.Exercise = &editExercise
		}
		if flags.Changed("at") {
			t, err := parseTime(editAt, gym.Location)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", editAt)
			}
			patch.Timestamp = &t
		}

		switch m := set.Metrics.(type) {
		case models.Weighted:
			if flags.Changed("weight") {
				m.Weight = editWeight
			}
			if flags.Changed("reps") {
				m.Reps = editReps
			}
			patch.Metrics = m
		case models.Bodyweight:
			if flags.Changed("reps") {
				m.Reps = editReps
			}
			if flags.Changed("added") {
				m.AddedWeight = editAdded
			}
			patch.Metrics = m
		case models.Timed:
			if flags.Changed("duration") {
				m.Duration = editDuration
			}
			if flags.Changed("distance") {
				m.Distance = &editDistance
			}
			if flags.Changed("elevation") {
				m.Elevation = &editElevation
			}
			patch.Metrics = m
		}

		if _, err := gym.Sets.UpdateSet(ctx, id, patch); err != nil {
			return fmt.Errorf("failed to update set: %w", err)
		}
		updated, err := gym.Sets.GetSet(ctx, id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		success(out, "Updated %s", updated.Exercise)
		printSetLine(out, updated)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a logged set",
	Long: `Delete a set by its ID or ID prefix.

You can use either the full UUID or just the first few characters (prefix).
The ID prefix is shown in the first column of 'gymlog list' output.

EXAMPLES:

  gymlog delete abc12345       # Delete by 8-char prefix
  gymlog rm abc1               # Short prefix (if unique)

CAUTION:

  This permanently deletes the set. There is no undo.
  If the prefix matches multiple sets, an error is returned.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := gym.Sets.ResolveID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("set not found: %w", err)
		}
		set, err := gym.Sets.GetSet(ctx, id)
		if err != nil {
			return err
		}
		if _, err := gym.Sets.DeleteSet(ctx, id); err != nil {
			return fmt.Errorf("failed to delete set: %w", err)
		}

		out := cmd.OutOrStdout()
		removed(out, "Deleted %s", set.Exercise)
		printSetLine(out, set)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listExercise, "exercise", "e", "", "filter by exercise name")
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "filter by set type (weighted, bodyweight, timed)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max number of results (0 for all)")
	listCmd.Flags().Bool("names", false, "list exercise names with their type")

	editCmd.Flags().StringVar(&editExercise, "exercise", "", "new exercise name")
	editCmd.Flags().Float64Var(&editWeight, "weight", 0, "weight in kg")
	editCmd.Flags().IntVar(&editReps, "reps", 0, "repetitions")
	editCmd.Flags().Float64Var(&editAdded, "added", 0, "added weight in kg")
	editCmd.Flags().Float64Var(&editDuration, "duration", 0, "duration in minutes")
	editCmd.Flags().Float64Var(&editDistance, "distance", 0, "distance in km")
	editCmd.Flags().Float64Var(&editElevation, "elevation", 0, "elevation in meters")
	editCmd.Flags().StringVar(&editAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")

	rootCmd.AddCommand(listCmd, editCmd, deleteCmd)
}
