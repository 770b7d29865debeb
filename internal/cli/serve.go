package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rileyhilliard/gridctl/internal/errors"
	"github.com/rileyhilliard/gridctl/internal/exporter"
	"github.com/rileyhilliard/gridctl/internal/logger"
	"github.com/spf13/cobra"
)

var (
	serveListen    string
	serveEndpoints EndpointFlags
	servePoll      int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve cluster state over HTTP",
}

var serveHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Poll member health and serve it over HTTP",
	Long: `Poll member health in the background and serve the latest result:

  GET /snapshot   latest snapshot as JSON
  GET /safe       200 when every member is safe, 503 otherwise
  GET /metrics    Prometheus metrics

Examples:
  gridctl serve health -e host1:6676,host2:6676
  gridctl serve health -n ns-host:7574 --listen :9000 --poll 10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.Close()

		poll, err := ParseSeconds("poll", servePoll)
		if err != nil {
			return err
		}
		if poll <= 0 {
			poll = s.cfg.Health.PollInterval
		}
		checker, err := s.checker(serveEndpoints, 0)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := exporter.New(checker, exporter.Options{
			PollInterval: poll,
			Metrics:      s.metrics,
			Logger:       logger.Named(s.log, "exporter"),
		})
		if err := srv.ListenAndServe(ctx, serveListen); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Health exporter stopped",
				"Check that "+serveListen+" is free")
		}
		return nil
	},
}

func init() {
	serveHealthCmd.Flags().StringVar(&serveListen, "listen", exporter.DefaultListen, "address to listen on")
	serveHealthCmd.Flags().IntVar(&servePoll, "poll", 0, "seconds between polls (default from config)")
	AddEndpointFlags(serveHealthCmd, &serveEndpoints)

	serveCmd.AddCommand(serveHealthCmd)
	rootCmd.AddCommand(serveCmd)
}
