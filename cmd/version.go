package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/kamusis/iconhash-cli/internal/fingerprint"
	"github.com/kamusis/iconhash-cli/internal/index"
	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/kamusis/iconhash-cli/cmd.version=...".
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

var flagVersionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show iconhash version, build and index format information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		writeVersion(cmd.OutOrStdout(), flagVersionShort)
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&flagVersionShort, "short", false, "Print only the version string")
	rootCmd.AddCommand(versionCmd)
}

func writeVersion(w io.Writer, short bool) {
	if short {
		fmt.Fprintln(w, version)
		return
	}
	rows := [][2]string{
		{"Version", version},
		{"Commit", orNA(commit)},
		{"Build Date", orNA(buildDate)},
		{"Index Format", fmt.Sprintf("v%d, %d-bit fingerprints (%d bytes/icon)", index.FormatVersion, fingerprint.Bits, index.RecordSize)},
		{"Go Version", runtime.Version()},
		{"OS/Arch", runtime.GOOS + "/" + runtime.GOARCH},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-13s %s\n", r[0]+":", r[1])
	}
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
