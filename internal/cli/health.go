package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rileyhilliard/gridctl/internal/errors"
	"github.com/rileyhilliard/gridctl/internal/health"
	"github.com/rileyhilliard/gridctl/internal/ui"
	"github.com/spf13/cobra"
)

const (
	defaultWatchDelay = 5
	trendWidth        = 30
)

// Health command flags
var (
	getHealthEndpoints  EndpointFlags
	getHealthOutput     string
	getHealthWatch      bool
	getHealthWatchClear bool
	getHealthDelay      int
	getHealthReqTimeout int
	monHealthEndpoints  EndpointFlags
	monHealthTimeout    int
	monHealthPoll       int
	monHealthReqTimeout int
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Display cluster resources",
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch the cluster until something happens",
}

var getHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show the health of every member",
	Long: `Poll the started, live, ready and safe endpoints of every member once and print
the result. 'Refused' means the endpoint could not be reached.

Examples:
  gridctl get health -e host1:6676,host2:6676
  gridctl get health -n ns-host:7574 -o json
  gridctl get health -W -d 2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ValidateFormat(getHealthOutput); err != nil {
			return err
		}
		machineMode = getHealthOutput == health.FormatJSON

		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		delay, err := ParseSeconds("delay", getHealthDelay)
		if err != nil {
			return err
		}
		reqTimeout, err := ParseSeconds("request-timeout", getHealthReqTimeout)
		if err != nil {
			return err
		}
		return runGetHealth(ctx, s, cmd.OutOrStdout(), getHealthOpts{
			endpoints:      getHealthEndpoints,
			format:         getHealthOutput,
			watch:          getHealthWatch || getHealthWatchClear,
			clear:          getHealthWatchClear && ui.IsTerminal(os.Stdout),
			delay:          delay,
			requestTimeout: reqTimeout,
		})
	},
}

var monitorHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Wait until every member is safe",
	Long: `Poll member health until every endpoint reports safe or the timeout passes.

Exit code 0 means all members were safe in time (or no timeout was given and
one report was printed). Exit code 1 means the timeout passed first. Rolling
restart scripts rely on these codes.

Examples:
  gridctl monitor health -e host1:6676,host2:6676 -T 120
  gridctl monitor health -n ns-host:7574 -T 300 --poll 10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.Close()

		deadline, err := ParseSeconds("health-timeout", monHealthTimeout)
		if err != nil {
			return err
		}
		poll, err := ParseSeconds("poll", monHealthPoll)
		if err != nil {
			return err
		}
		reqTimeout, err := ParseSeconds("request-timeout", monHealthReqTimeout)
		if err != nil {
			return err
		}
		return runMonitorHealth(cmd.Context(), s, cmd.OutOrStdout(), cmd.ErrOrStderr(), monitorHealthOpts{
			endpoints:      monHealthEndpoints,
			deadline:       deadline,
			pollInterval:   poll,
			requestTimeout: reqTimeout,
		})
	},
}

func init() {
	AddEndpointFlags(getHealthCmd, &getHealthEndpoints)
	getHealthCmd.Flags().StringVarP(&getHealthOutput, "output", "o", health.FormatTable, "output format: table, json, yaml")
	getHealthCmd.Flags().BoolVarP(&getHealthWatch, "watch", "w", false, "repeat every --delay seconds")
	getHealthCmd.Flags().BoolVarP(&getHealthWatchClear, "watch-clear", "W", false, "like --watch, clearing the screen between reports")
	getHealthCmd.Flags().IntVarP(&getHealthDelay, "delay", "d", defaultWatchDelay, "seconds between reports in watch mode")
	getHealthCmd.Flags().IntVar(&getHealthReqTimeout, "request-timeout", 0, "seconds before a single endpoint request fails (default from config)")

	AddEndpointFlags(monitorHealthCmd, &monHealthEndpoints)
	monitorHealthCmd.Flags().IntVarP(&monHealthTimeout, "health-timeout", "T", 0, "seconds to wait for all members to be safe")
	monitorHealthCmd.Flags().IntVar(&monHealthPoll, "poll", 0, "seconds between polls while waiting (default from config)")
	monitorHealthCmd.Flags().IntVar(&monHealthReqTimeout, "request-timeout", 0, "seconds before a single endpoint request fails (default from config)")

	getCmd.AddCommand(getHealthCmd)
	monitorCmd.AddCommand(monitorHealthCmd)
	rootCmd.AddCommand(getCmd, monitorCmd)
}

type getHealthOpts struct {
	endpoints      EndpointFlags
	format         string
	watch          bool
	clear          bool
	delay          time.Duration
	requestTimeout time.Duration
}

// runGetHealth prints one report, or keeps printing until ctx is done in watch mode.
func runGetHealth(ctx context.Context, s *session, out io.Writer, opts getHealthOpts) error {
	checker, err := s.checker(opts.endpoints, opts.requestTimeout)
	if err != nil {
		return err
	}
	if opts.delay <= 0 {
		opts.delay = defaultWatchDelay * time.Second
	}

	trend := health.NewHistory(trendWidth)
	for {
		snap := checker.Snapshot(ctx)
		if opts.clear {
			ui.ClearScreen(out)
		}
		if err := health.WriteReport(out, snap, opts.format); err != nil {
			return errors.WrapWithCode(err, errors.ErrHealth, "Couldn't write health report", "")
		}
		if !opts.watch {
			return nil
		}
		if opts.format == health.FormatTable {
			trend.Push(snap)
			fmt.Fprintf(out, "Safe trend: %s %d/%d\n", ui.RenderSparkline(trend.Last(trendWidth), trendWidth), snap.SafeCount(), len(snap.Endpoints))
			if !opts.clear {
				fmt.Fprintln(out)
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(opts.delay):
		}
	}
}

type monitorHealthOpts struct {
	endpoints      EndpointFlags
	deadline       time.Duration
	pollInterval   time.Duration
	requestTimeout time.Duration
}

// runMonitorHealth waits for all safe. Without a deadline it prints a single
// report and succeeds.
func runMonitorHealth(ctx context.Context, s *session, out, errOut io.Writer, opts monitorHealthOpts) error {
	checker, err := s.checker(opts.endpoints, opts.requestTimeout)
	if err != nil {
		return err
	}

	if opts.deadline <= 0 {
		return health.WriteReport(out, checker.Snapshot(ctx), health.FormatTable)
	}

	if opts.pollInterval <= 0 {
		opts.pollInterval = s.cfg.Health.PollInterval
	}
	outcome := health.WaitUntilSafe(checker, opts.pollInterval, opts.deadline,
		health.WithProgress(func(snap health.Snapshot) {
			fmt.Fprintf(out, "%s %d/%d safe\n", snap.Timestamp.Format("15:04:05"), snap.SafeCount(), len(snap.Endpoints))
		}))

	elapsed := outcome.Elapsed.Round(time.Second)
	if outcome.ReachedSafe {
		for _, warn := range outcome.Last.Warnings {
			fmt.Fprintf(errOut, "%s %s\n", ui.SymbolWarning, warn)
		}
		fmt.Fprintf(out, "%s All endpoints safe after %s\n", ui.SymbolSuccess, elapsed)
		return nil
	}

	fmt.Fprintf(errOut, "%s Not all endpoints safe after %s\n\n", ui.SymbolFail, elapsed)
	_ = health.WriteReport(errOut, outcome.Last, health.FormatTable)
	return errors.NewExitError(outcome.ExitCode())
}
