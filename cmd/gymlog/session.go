// ABOUTME: CLI commands for workout sessions.
// ABOUTME: Create, list, show, duplicate, delete and total sessions.
package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/stats"
	"github.com/spf13/cobra"
)

var (
	sessionDate   string
	sessionSearch string
	sessionDays   int
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"sess"},
	Short:   "Manage workout sessions",
	Long: `Sessions group exercise entries into a named, dated workout.

EXAMPLES:

  gymlog session new "Leg Day"
  gymlog session list --days 7
  gymlog session show abc123
  gymlog session duplicate abc123
  gymlog session delete abc123`,
}

var sessionNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var name string
		if len(args) == 1 {
			name = args[0]
		}
		var date time.Time
		if sessionDate != "" {
			t, err := parseTime(sessionDate, gym.Location)
			if err != nil {
				return fmt.Errorf("invalid date: %s", sessionDate)
			}
			date = t
		}

		s, err := gym.Sessions.CreateSession(cmd.Context(), name, date)
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		out := cmd.OutOrStdout()
		success(out, "Created session %s", s.SessionName)
		fmt.Fprintf(out, "  %s %s\n", faint.Sprint(shortID(s.ID)), s.Date.In(gym.Location).Format("2006-01-02 15:04"))
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		all, err := gym.Sessions.ListSessions(ctx)
		if err != nil {
			return err
		}

		// --search and --days narrow the counted list by ID
		var keep map[string]bool
		narrow := func(list []*models.Session) {
			ids := make(map[string]bool, len(list))
			for _, s := range list {
				if keep == nil || keep[s.ID] {
					ids[s.ID] = true
				}
			}
			keep = ids
		}
		if sessionSearch != "" {
			found, err := gym.Sessions.SearchSessions(ctx, sessionSearch)
			if err != nil {
				return err
			}
			narrow(found)
		}
		if sessionDays > 0 {
			recent, err := gym.Sessions.RecentSessions(ctx, sessionDays)
			if err != nil {
				return err
			}
			narrow(recent)
		}

		out := cmd.OutOrStdout()
		shown := 0
		for _, s := range all {
			if keep != nil && !keep[s.ID] {
				continue
			}
			fmt.Fprintf(out, "%s %s %s %s\n",
				faint.Sprint(shortID(s.ID)),
				faint.Sprint(s.Date.In(gym.Location).Format("2006-01-02")),
				padRight(truncate(s.SessionName, 30), 30),
				faint.Sprintf("%d exercises", s.ExerciseCount))
			shown++
		}
		if shown == 0 {
			fmt.Fprintln(out, "No sessions found.")
		}
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a session with its exercises",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := gym.Sessions.ResolveSessionID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("session not found: %w", err)
		}
		s, err := gym.Sessions.GetSession(ctx, id)
		if err != nil {
			return err
		}
		exercises, err := gym.Sessions.GetExercisesBySession(ctx, id)
		if err != nil {
			return err
		}
		sort.SliceStable(exercises, func(i, j int) bool {
			return exercises[i].Date.Before(exercises[j].Date)
		})

		out := cmd.OutOrStdout()
		cyan.Fprintf(out, "%s\n", s.SessionName)
		fmt.Fprintf(out, "%s %s\n\n", faint.Sprint(shortID(s.ID)), s.Date.In(gym.Location).Format("Monday, 2006-01-02 15:04"))
		if len(exercises) == 0 {
			fmt.Fprintln(out, "No exercises yet.")
			return nil
		}
		for _, e := range exercises {
			printExercise(out, e)
		}
		fmt.Fprintln(out)
		printSummary(out, stats.SessionStats(exercises))
		return nil
	},
}

var sessionStatsCmd = &cobra.Command{
	Use:   "stats <id>",
	Short: "Totals for a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := gym.Sessions.ResolveSessionID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("session not found: %w", err)
		}
		sum, err := gym.Sessions.SessionStats(ctx, id)
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), *sum)
		return nil
	},
}

var sessionDuplicateCmd = &cobra.Command{
	Use:     "duplicate <id>",
	Aliases: []string{"dup"},
	Short:   "Copy a session and its exercises to today",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := gym.Sessions.ResolveSessionID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("session not found: %w", err)
		}
		dup, err := gym.Sessions.DuplicateSession(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to duplicate session: %w", err)
		}
		out := cmd.OutOrStdout()
		success(out, "Created %s", dup.SessionName)
		fmt.Fprintf(out, "  %s\n", faint.Sprint(shortID(dup.ID)))
		return nil
	},
}

var sessionDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a session and all its exercises",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := gym.Sessions.ResolveSessionID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("session not found: %w", err)
		}
		s, err := gym.Sessions.GetSession(ctx, id)
		if err != nil {
			return err
		}
		if err := gym.Sessions.DeleteSession(ctx, id); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		removed(cmd.OutOrStdout(), "Deleted session %s", s.SessionName)
		return nil
	},
}

func printExercise(w io.Writer, e *models.Exercise) {
	detail := fmt.Sprintf("%d × %d", e.Sets, e.Reps)
	if e.Weight > 0 {
		detail += fmt.Sprintf(" @ %g kg", e.Weight)
	}
	if e.Time > 0 {
		detail += fmt.Sprintf(" %gs", e.Time)
	}
	fmt.Fprintf(w, "  %s %s %s %s\n",
		faint.Sprint(shortID(e.ID)),
		padRight(truncate(e.ExerciseName, 24), 24),
		padRight(detail, 20),
		faint.Sprint(e.Category))
	if e.Notes != "" {
		fmt.Fprintf(w, "           %s\n", faint.Sprint(truncate(e.Notes, 60)))
	}
}

func printSummary(w io.Writer, sum stats.SessionSummary) {
	fmt.Fprintf(w, "Exercises: %d\n", sum.TotalExercises)
	fmt.Fprintf(w, "Sets:      %d\n", sum.TotalSets)
	fmt.Fprintf(w, "Reps:      %d\n", sum.TotalReps)
	fmt.Fprintf(w, "Volume:    %g kg\n", stats.Round1(sum.TotalWeight))
	if sum.TotalTime > 0 {
		fmt.Fprintf(w, "Time:      %gs\n", sum.TotalTime)
	}

	cats := make([]string, 0, len(sum.Categories))
	for c := range sum.Categories {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		fmt.Fprintf(w, "  %s %d\n", padRight(c, 12), sum.Categories[c])
	}
}

func init() {
	sessionNewCmd.Flags().StringVar(&sessionDate, "date", "", "session date (YYYY-MM-DD [HH:MM])")
	sessionListCmd.Flags().StringVarP(&sessionSearch, "search", "s", "", "filter by name")
	sessionListCmd.Flags().IntVar(&sessionDays, "days", 0, "only sessions from the last N days")

	sessionCmd.AddCommand(sessionNewCmd, sessionListCmd, sessionShowCmd, sessionStatsCmd, sessionDuplicateCmd, sessionDeleteCmd)
	rootCmd.AddCommand(sessionCmd)
}
