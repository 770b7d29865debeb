// Package cli implements the gridctl command-line interface.
//
// Commands are thin: each one opens a session (config, logging, tracing,
// metrics), builds the collaborators it needs and hands off to the health,
// monitor or exporter packages.
//
// # Command Structure
//
// The root command is "gridctl" with these subcommands:
//
//	gridctl get health        - One health report (table, json or yaml), -w/-W to watch
//	gridctl monitor health    - Wait for all members to be safe (-T seconds)
//	gridctl monitor cluster   - Live multi-panel dashboard
//	gridctl serve health      - HTTP exporter for the latest snapshot and metrics
//	gridctl version           - Build information
//	gridctl completion        - Shell completion scripts
//
// # Exit Codes
//
// 0 on success. 1 when 'monitor health -T' times out before every member is
// safe, or when any command fails. Wait timeouts travel as errors.ExitError
// so Execute can exit without printing anything further.
//
// # Flag Handling
//
// Global flags (--config, --cluster, --log-file, --log-level, --trace-file,
// --no-color) are defined on the root command. Health endpoints come from
// -e/--endpoints or -n/--nslookup (see EndpointFlags), falling back to the
// selected cluster in config. Durations on the command line are whole seconds.
//
// # Machine Output
//
// With -o json, failures are written as a JSONEnvelope on stdout instead of
// the human-readable message on stderr.
package cli
