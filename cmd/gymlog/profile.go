// ABOUTME: CLI commands for the user profile and body-weight history.
// ABOUTME: Every profile save with a weight also appends to the history.
package main

import (
	"fmt"
	"strconv"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/stats"
	"github.com/harperreed/gymlog/internal/store"
	"github.com/spf13/cobra"
)

var (
	profNickname string
	profWeight   float64
	profHeight   float64
	profGender   string
	profAge      int
	profFormula  string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your profile",
	Long: `Show your profile, or update it with 'gymlog profile set'.

EXAMPLES:

  gymlog profile
  gymlog profile set --weight 82.5 --height 180
  gymlog profile set --formula brzycki`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := gym.Profile.Profile(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if p == nil {
			fmt.Fprintln(out, "No profile saved. Run 'gymlog profile set'.")
			return nil
		}

		fmt.Fprintf(out, "Nickname: %s\n", p.Nickname)
		fmt.Fprintf(out, "Weight:   %g kg\n", p.Weight)
		fmt.Fprintf(out, "Height:   %g cm\n", p.Height)
		if p.Gender != "" {
			fmt.Fprintf(out, "Gender:   %s\n", p.Gender)
		}
		if p.Age > 0 {
			fmt.Fprintf(out, "Age:      %d\n", p.Age)
		}
		f, err := gym.OneRMFormula(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "1RM:      %s\n", stats.FormulaLabels[f])
		if res, err := stats.BMI(p.Weight, p.Height); err == nil {
			fmt.Fprintf(out, "BMI:      %g %s\n", res.Value, faint.Sprintf("(%s)", res.Category))
		}
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		current, err := gym.Profile.Profile(ctx)
		if err != nil {
			return err
		}
		var p models.Profile
		if current != nil {
			p = *current
		}

		flags := cmd.Flags()
		if flags.Changed("nickname") {
			p.Nickname = profNickname
		}
		if flags.Changed("weight") {
			p.Weight = profWeight
		}
		if flags.Changed("height") {
			p.Height = profHeight
		}
		if flags.Changed("gender") {
			p.Gender = profGender
		}
		if flags.Changed("age") {
			p.Age = profAge
		}
		if flags.Changed("formula") {
			p.OneRMFormula = profFormula
		}

		saved, err := gym.Profile.SaveProfile(ctx, p)
		if err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
		success(cmd.OutOrStdout(), "Saved profile %s", saved.Nickname)
		return nil
	},
}

var weightCmd = &cobra.Command{
	Use:     "weight",
	Aliases: []string{"w"},
	Short:   "Body-weight history",
	Long: `Record and review body weight.

EXAMPLES:

  gymlog weight add 82.4
  gymlog weight list
  gymlog weight delete abc123`,
}

var weightAddCmd = &cobra.Command{
	Use:   "add <kg>",
	Short: "Record a body weight",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kg, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid weight: %s", args[0])
		}
		e, err := gym.Profile.AddWeight(cmd.Context(), kg)
		if err != nil {
			return fmt.Errorf("failed to add weight: %w", err)
		}
		out := cmd.OutOrStdout()
		success(out, "Recorded %g kg", e.Weight)
		fmt.Fprintf(out, "  %s\n", faint.Sprint(shortID(e.ID)))
		return nil
	},
}

var weightListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List body weights, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := gym.Profile.WeightHistory(cmd.Context(), false)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No weights recorded.")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%s %s %g kg\n",
				faint.Sprint(shortID(e.ID)),
				faint.Sprint(e.Date.In(gym.Location).Format("2006-01-02 15:04")),
				e.Weight)
		}
		return nil
	},
}

var weightDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a body-weight entry",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, err := store.ResolveID(ctx, gym.Store, models.CollectionWeightHistory, args[0])
		if err != nil {
			return fmt.Errorf("weight entry not found: %w", err)
		}
		if _, err := gym.Profile.DeleteWeight(ctx, id); err != nil {
			return fmt.Errorf("failed to delete weight entry: %w", err)
		}
		removed(cmd.OutOrStdout(), "Deleted %s", shortID(id))
		return nil
	},
}

func init() {
	profileSetCmd.Flags().StringVar(&profNickname, "nickname", "", "display name")
	profileSetCmd.Flags().Float64Var(&profWeight, "weight", 0, "body weight in kg")
	profileSetCmd.Flags().Float64Var(&profHeight, "height", 0, "height in cm")
	profileSetCmd.Flags().StringVar(&profGender, "gender", "", "gender")
	profileSetCmd.Flags().IntVar(&profAge, "age", 0, "age in years")
	profileSetCmd.Flags().StringVar(&profFormula, "formula", "", "preferred 1RM formula")

	profileCmd.AddCommand(profileSetCmd)
	weightCmd.AddCommand(weightAddCmd, weightListCmd, weightDeleteCmd)
	rootCmd.AddCommand(profileCmd, weightCmd)
}
