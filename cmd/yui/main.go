package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/yui/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "yui",
		Short: "Declarative UI trees with incremental JSON patches",
		Long: `yui builds a live UI tree from JSON (or YAML) layout documents and
keeps it current with incremental patches.

  • render    build a tree and print it as JSON, text or HTML
  • update    apply patches to a rendered tree
  • serve     run the HTTP / WebSocket playground server
  • rpc       expose the engine over JSON-RPC on stdio
  • repl      drive the engine interactively`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Configuration file (default: yui.json found from the working directory)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: text or json")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable coloured output")

	rootCmd.AddCommand(
		renderCmd(a),
		updateCmd(a),
		serveCmd(a),
		rpcCmd(a),
		replCmd(a),
		prefCmd(a),
		themeCmd(a),
		versionCmd(),
	)
	return rootCmd
}

// success prints a success message.
func success(cmd *cobra.Command, format string, args ...any) {
	mark := "✓"
	if colorEnabled {
		mark = "\033[32m✓\033[0m"
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", mark, fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(cmd *cobra.Command, format string, args ...any) {
	mark := "⚠"
	if colorEnabled {
		mark = "\033[33m⚠\033[0m"
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", mark, fmt.Sprintf(format, args...))
}
