// ABOUTME: CLI commands for exercise entries inside sessions.
// ABOUTME: Also manages categories and saved locations.
package main

import (
	"fmt"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/sessions"
	"github.com/spf13/cobra"
)

var (
	exSets     int
	exReps     int
	exWeight   float64
	exTime     float64
	exNotes    string
	exCategory string
	exDate     string
	exLocation string

	locLat float64
	locLng float64
)

var exerciseCmd = &cobra.Command{
	Use:     "exercise",
	Aliases: []string{"ex"},
	Short:   "Manage exercises within sessions",
	Long: `Exercises are entries in a session with sets, reps, weight, time in
seconds, notes and a category.

EXAMPLES:

  gymlog exercise add abc123 Squat --sets 5 --reps 5 --weight 100 --category Legs
  gymlog exercise add abc123 Plank --time 90 --category Other
  gymlog exercise history Squat
  gymlog exercise categories
  gymlog exercise delete def456`,
}

var exerciseAddCmd = &cobra.Command{
	Use:   "add <session-id> <name>",
	Short: "Add an exercise to a session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sessionID, err := gym.Sessions.ResolveSessionID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("session not found: %w", err)
		}

		in := sessions.ExerciseInput{
			SessionID:    sessionID,
			ExerciseName: args[1],
			Sets:         exSets,
			Reps:         exReps,
			Weight:       exWeight,
			Time:         exTime,
			Notes:        exNotes,
			Category:     exCategory,
		}
		if exDate != "" {
			t, err := parseTime(exDate, gym.Location)
			if err != nil {
				return fmt.Errorf("invalid date: %s", exDate)
			}
			in.Date = t
		}
		if exLocation != "" {
			loc, err := findLocation(cmd, exLocation)
			if err != nil {
				return err
			}
			in.Location = loc
		}

		e, err := gym.Sessions.AddExercise(ctx, in)
		if err != nil {
			return fmt.Errorf("failed to add exercise: %w", err)
		}
		out := cmd.OutOrStdout()
		success(out, "Added %s", e.ExerciseName)
		printExercise(out, e)
		return nil
	},
}

var exerciseEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change an exercise entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := gym.Sessions.ResolveExerciseID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("exercise not found: %w", err)
		}

		flags := cmd.Flags()
		var patch sessions.ExercisePatch
		if flags.Changed("sets") {
			patch.Sets = &exSets
		}
		if flags.Changed("reps") {
			patch.Reps = &exReps
		}
		if flags.Changed("weight") {
			patch.Weight = &exWeight
		}
		if flags.Changed("time") {
			patch.Time = &exTime
		}
		if flags.Changed("notes") {
			patch.Notes = &exNotes
		}
		if flags.Changed("category") {
			patch.Category = &exCategory
		}
		if flags.Changed("date") {
			t, err := parseTime(exDate, gym.Location)
			if err != nil {
				return fmt.Errorf("invalid date: %s", exDate)
			}
			patch.Date = &t
		}

		if _, err := gym.Sessions.UpdateExercise(ctx, id, patch); err != nil {
			return fmt.Errorf("failed to update exercise: %w", err)
		}
		e, err := gym.Sessions.GetExercise(ctx, id)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		success(out, "Updated %s", e.ExerciseName)
		printExercise(out, e)
		return nil
	},
}

var exerciseDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete an exercise entry",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := gym.Sessions.ResolveExerciseID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("exercise not found: %w", err)
		}
		e, err := gym.Sessions.GetExercise(ctx, id)
		if err != nil {
			return err
		}
		if _, err := gym.Sessions.DeleteExercise(ctx, id); err != nil {
			return fmt.Errorf("failed to delete exercise: %w", err)
		}
		removed(cmd.OutOrStdout(), "Deleted %s", e.ExerciseName)
		return nil
	},
}

var exerciseHistoryCmd = &cobra.Command{
	Use:   "history <name>",
	Short: "Every entry of an exercise across sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := gym.Sessions.ExerciseHistory(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintf(out, "No entries for %s.\n", args[0])
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%s ", faint.Sprint(e.Date.In(gym.Location).Format("2006-01-02")))
			printExercise(out, e)
		}
		return nil
	},
}

var exerciseCategoriesCmd = &cobra.Command{
	Use:   "categories [new-category]",
	Short: "List categories or add a custom one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		if len(args) == 1 {
			added, err := gym.Sessions.AddCustomCategory(ctx, args[0])
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintf(out, "Category %s already exists.\n", args[0])
				return nil
			}
			success(out, "Added category %s", args[0])
			return nil
		}

		cats, err := gym.Sessions.Categories(ctx)
		if err != nil {
			return err
		}
		for _, c := range cats {
			fmt.Fprintln(out, c)
		}
		return nil
	},
}

var exerciseLocationsCmd = &cobra.Command{
	Use:   "locations [name]",
	Short: "List saved locations or save a new one",
	Long: `With no argument, list saved locations. With a name, save a location
using --lat and --lng.

EXAMPLES:

  gymlog exercise locations
  gymlog exercise locations "Home Gym" --lat 41.88 --lng -87.63`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		if len(args) == 1 {
			loc, err := gym.Sessions.SaveLocation(ctx, models.Location{
				LocationName: args[0],
				Coords:       models.Coords{Lat: locLat, Lng: locLng},
			})
			if err != nil {
				return fmt.Errorf("failed to save location: %w", err)
			}
			success(out, "Saved %s", loc.LocationName)
			return nil
		}

		locs, err := gym.Sessions.Locations(ctx)
		if err != nil {
			return err
		}
		if len(locs) == 0 {
			fmt.Fprintln(out, "No saved locations.")
			return nil
		}
		for _, l := range locs {
			fmt.Fprintf(out, "%s %s %s\n", faint.Sprint(shortID(l.ID)), padRight(l.LocationName, 24),
				faint.Sprintf("%.5f, %.5f", l.Coords.Lat, l.Coords.Lng))
		}
		return nil
	},
}

// findLocation looks up a saved location by name or ID prefix.
func findLocation(cmd *cobra.Command, key string) (*models.Location, error) {
	locs, err := gym.Sessions.Locations(cmd.Context())
	if err != nil {
		return nil, err
	}
	for _, l := range locs {
		if l.LocationName == key || (len(key) >= 4 && len(l.ID) >= len(key) && l.ID[:len(key)] == key) {
			return l, nil
		}
	}
	return nil, fmt.Errorf("no saved location %q", key)
}

func init() {
	for _, c := range []*cobra.Command{exerciseAddCmd, exerciseEditCmd} {
		c.Flags().IntVar(&exSets, "sets", 0, "number of sets")
		c.Flags().IntVar(&exReps, "reps", 0, "reps per set")
		c.Flags().Float64Var(&exWeight, "weight", 0, "weight in kg")
		c.Flags().Float64Var(&exTime, "time", 0, "time in seconds")
		c.Flags().StringVar(&exNotes, "notes", "", "free-form notes")
		c.Flags().StringVarP(&exCategory, "category", "c", "", "category (see 'gymlog exercise categories')")
		c.Flags().StringVar(&exDate, "date", "", "date (YYYY-MM-DD [HH:MM])")
	}
	exerciseAddCmd.Flags().StringVar(&exLocation, "location", "", "saved location name or ID prefix")
	exerciseLocationsCmd.Flags().Float64Var(&locLat, "lat", 0, "latitude")
	exerciseLocationsCmd.Flags().Float64Var(&locLng, "lng", 0, "longitude")

	exerciseCmd.AddCommand(exerciseAddCmd, exerciseEditCmd, exerciseDeleteCmd, exerciseHistoryCmd,
		exerciseCategoriesCmd, exerciseLocationsCmd)
	rootCmd.AddCommand(exerciseCmd)
}
