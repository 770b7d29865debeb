package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rileyhilliard/gridctl/internal/errors"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile       string
	clusterFlag   string
	logFileFlag   string
	logLevelFlag  string
	traceFileFlag string
	noColorFlag   bool
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gridctl",
	Short: "Watch data grid cluster health",
	Long: `gridctl polls the health endpoints of a data grid cluster and shows what it finds.

Use 'get health' for a one-shot report, 'monitor health -T' to block until every
member is safe (exit code 0) or the deadline passes (exit code 1), and
'monitor cluster' for a live multi-panel dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for gridctl.

Examples:
  # Bash
  gridctl completion bash > /etc/bash_completion.d/gridctl

  # Zsh
  gridctl completion zsh > "${fpath[1]}/_gridctl"

  # Fish
  gridctl completion fish > ~/.config/fish/completions/gridctl.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(out)
		default:
			return errors.New(errors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is .gridctl.yaml, then ~/.config/gridctl/config.yaml)")
	pf.StringVar(&clusterFlag, "cluster", "", "cluster from config to use (default is 'current')")
	pf.StringVar(&logFileFlag, "log-file", "", "write logs to this file")
	pf.StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&traceFileFlag, "trace-file", "", "write trace spans to this file")
	pf.BoolVar(&noColorFlag, "no-color", false, "disable colored output")

	rootCmd.AddCommand(completionCmd)
}

// Execute runs the root command and exits with the resulting code.
func Execute() {
	err := rootCmd.Execute()
	os.Exit(exitCode(err, os.Stdout, os.Stderr))
}

// exitCode reports err and maps it to a process exit code. An ExitError
// carries its own code and has already been reported by the command.
func exitCode(err error, stdout, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	if code, ok := errors.GetExitCode(err); ok {
		return code
	}

	if isUnknownCommandError(err) {
		msg := err.Error()
		if name := extractUnknownCommand(err); name != "" {
			msg = fmt.Sprintf("Unknown command '%s'", name)
		}
		err = errors.New(errors.ErrConfig, msg, "Run 'gridctl --help' to see available commands")
	}

	if machineMode {
		_ = WriteJSONFromError(stdout, err)
	} else {
		fmt.Fprintln(stderr, err)
	}
	return 1
}

// isUnknownCommandError checks if the error is cobra's unknown command or flag error.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// extractUnknownCommand pulls the command name out of an error like:
// unknown command "foo" for "gridctl"
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start == -1 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end == -1 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
