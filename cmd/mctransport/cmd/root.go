// Package cmd provides the command-line interface for mctransport.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mctransport",
	Short: "mctransport runs fixed-source Monte Carlo transport problems.",
	Long: `mctransport runs fixed-source Monte Carlo particle transport ` +
		`problems with an event-sorted batch scheduler, records per-round ` +
		`statistics into SQLite, and can serve a monitoring API while ` +
		`running.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info",
		"Log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().String("env", ".env",
		"Environment file with MCT_* overrides")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	name, _ := cmd.Flags().GetString("log-level")

	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", name)
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})), nil
}
