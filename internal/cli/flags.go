package cli

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/gridctl/internal/errors"
	"github.com/rileyhilliard/gridctl/internal/health"
	"github.com/spf13/cobra"
)

// EndpointFlags holds the flags that name health endpoints.
type EndpointFlags struct {
	Endpoints string
	NSLookup  string
}

// AddEndpointFlags registers -e/--endpoints and -n/--nslookup on a command.
func AddEndpointFlags(cmd *cobra.Command, flags *EndpointFlags) {
	cmd.Flags().StringVarP(&flags.Endpoints, "endpoints", "e", "", "health endpoints as host:port[,host:port]")
	cmd.Flags().StringVarP(&flags.NSLookup, "nslookup", "n", "", "host:port whose DNS records list the health endpoints")
}

// ParseSeconds converts a whole-seconds flag value into a duration.
// Zero means unset; negative values are rejected.
func ParseSeconds(flag string, seconds int) (time.Duration, error) {
	if seconds < 0 {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("--%s must not be negative (got %d)", flag, seconds),
			"Pass a number of seconds, e.g. 30")
	}
	return time.Duration(seconds) * time.Second, nil
}

// ValidateFormat checks an -o value.
func ValidateFormat(format string) error {
	switch format {
	case health.FormatTable, health.FormatJSON, health.FormatYAML:
		return nil
	}
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("Unknown output format '%s'", format),
		"Use one of: table, json, yaml")
}
