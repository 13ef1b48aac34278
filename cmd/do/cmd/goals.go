package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fitfuel/fitfuel/internal/app"
	"github.com/fitfuel/fitfuel/internal/model"

	"github.com/spf13/cobra"
)

func GoalsCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Inspect and refresh one account's goals",
	}
	cmd.PersistentFlags().StringVar(&email, "email", "", "account email (required)")
	_ = cmd.MarkPersistentFlagRequired("email")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Refresh and print active goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOwner(email, func(ctx context.Context, a *app.App, ownerID string) error {
				list, err := a.GoalService.List(ctx, ownerID)
				if err != nil {
					return err
				}
				printGoals(os.Stdout, list)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Reset goals whose period ended and refresh the rest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOwner(email, func(ctx context.Context, a *app.App, ownerID string) error {
				result, err := a.GoalService.RefreshAll(ctx, ownerID)
				printResult(os.Stdout, result)
				return err
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "force-reset",
		Short: "Re-anchor every active goal to its current period",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOwner(email, func(ctx context.Context, a *app.App, ownerID string) error {
				result, err := a.GoalService.ForceResetAll(ctx, ownerID)
				printResult(os.Stdout, result)
				return err
			})
		},
	})

	return cmd
}

func withOwner(email string, fn func(context.Context, *app.App, string) error) error {
	return withApp(func(ctx context.Context, a *app.App) error {
		user, err := a.Users.ByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
		if err != nil {
			return fmt.Errorf("lookup %s: %w", email, err)
		}
		return fn(ctx, a, user.ID)
	})
}

func printResult(w io.Writer, result *model.RefreshResult) {
	if result == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
}

func printGoals(w io.Writer, list *model.GoalList) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GOAL\tPROGRESS\tPERCENT\tPERIOD START")
	for _, g := range list.Goals {
		start := "-"
		if g.LastResetAt != nil {
			start = g.LastResetAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%g / %g %s\t%.0f%%\t%s\n", g.Title, g.CurrentValue, g.TargetValue, g.Unit, g.Percentage, start)
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "refreshed %s\n", list.RefreshedAt.Local().Format("15:04:05"))
	if list.RefreshError != "" {
		fmt.Fprintf(w, "warning: showing last known values: %s\n", list.RefreshError)
	}
}
