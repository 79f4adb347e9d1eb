package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/kamusis/iconhash-cli/internal/config"
	"github.com/spf13/cobra"
)

var flagDebug bool

var rootCmd = &cobra.Command{
	Use:          "iconhash",
	Short:        "iconhash — find visually similar SVG icons",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `iconhash fingerprints icon collections into a compact local index and
ranks catalog icons by visual similarity to an SVG or a named icon.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Print debug logs to stderr")
}

// logger returns the library logger: debug text on stderr with --debug,
// otherwise warnings only.
func logger() *slog.Logger {
	if flagDebug {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// quietLogger discards everything; used where progress output owns stderr.
func quietLogger() *slog.Logger {
	if flagDebug {
		return logger()
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// loadConfig wraps config.Load with the hint every command shows on failure.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w\nRun 'iconhash init' first.", err)
	}
	return cfg, nil
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
