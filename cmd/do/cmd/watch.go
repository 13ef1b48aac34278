package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fitfuel/fitfuel/internal/client"
	"github.com/fitfuel/fitfuel/internal/config"
	"github.com/fitfuel/fitfuel/internal/logger"
	"github.com/fitfuel/fitfuel/internal/model"
	"github.com/fitfuel/fitfuel/internal/period"
	"github.com/fitfuel/fitfuel/internal/realtime"
	"github.com/fitfuel/fitfuel/internal/scheduler"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type watchOptions struct {
	url       string
	email     string
	password  string
	interval  time.Duration
	timeout   time.Duration
	timezone  string
	weekStart string
	verbose   bool
}

// WatchCmd keeps a live goal view in the terminal, the way an app client
// would: periodic checks, refresh after activity, realtime updates.
func WatchCmd() *cobra.Command {
	opts := watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow an account's goals from a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.password == "" {
				opts.password = os.Getenv("FITFUEL_PASSWORD")
			}
			return runWatch(opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.url, "url", "http://localhost:8090", "server base URL")
	f.StringVar(&opts.email, "email", "", "account email (required)")
	f.StringVar(&opts.password, "password", "", "account password (default $FITFUEL_PASSWORD)")
	f.DurationVar(&opts.interval, "interval", time.Minute, "staleness check interval")
	f.DurationVar(&opts.timeout, "timeout", 10*time.Second, "request timeout")
	f.StringVar(&opts.timezone, "timezone", "Local", "IANA timezone used for local staleness checks")
	f.StringVar(&opts.weekStart, "week-start", "sunday", "first day of a weekly period")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runWatch(opts watchOptions) error {
	logger.Init(logger.Options{Dev: opts.verbose, Service: "watch"})

	loc, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}
	weekStart, ok := config.ParseWeekday(opts.weekStart)
	if !ok {
		return fmt.Errorf("invalid week start %q", opts.weekStart)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api, err := client.New(opts.url, opts.timeout)
	if err != nil {
		return err
	}
	if err := api.Login(ctx, opts.email, opts.password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	sched := scheduler.New(api, scheduler.Config{
		Interval: opts.interval,
		Timeout:  opts.timeout,
		Periods:  period.New(loc, weekStart),
	})
	sched.OnUpdate(func(list *model.GoalList) {
		fmt.Println()
		printGoals(os.Stdout, list)
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(ctx)
	})
	g.Go(func() error {
		return api.Subscribe(ctx, func(ev realtime.Event) {
			slog.Debug("realtime event", "type", ev.Type, "kind", ev.Kind)
			if ev.Type == realtime.EventGoalReached && ev.Goal != nil {
				fmt.Printf("goal reached: %s\n", ev.Goal.GoalType.Label())
			}
			sched.HandleEvent(ctx, ev)
		})
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
