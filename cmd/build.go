package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/kamusis/iconhash-cli/internal/builder"
	"github.com/kamusis/iconhash-cli/internal/config"
	"github.com/kamusis/iconhash-cli/internal/index"
	"github.com/spf13/cobra"
)

var (
	flagBuildOut       string
	flagBuildBatchSize int
	flagBuildColumns   int
	flagBuildWorkers   int
	flagBuildTimeout   time.Duration
)

var buildCmd = &cobra.Command{
	Use:   "build <icons-dir|collection.json>...",
	Short: "Fingerprint icon sources into the local index",
	Long: `Build an index from one or more icon sources and install it.

A source is either a directory laid out as <prefix>/<identifier>.svg or an
Iconify JSON collection (.json or .json.gz). Icons are rendered in sprite
sheets of --batch-size icons; an icon that cannot be rendered is reported and
left out.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&flagBuildOut, "out", "", "Index directory to write (default: index_dir from config)")
	buildCmd.Flags().IntVar(&flagBuildBatchSize, "batch-size", 0, "Icons per sprite sheet (default: batch_size from config)")
	buildCmd.Flags().IntVar(&flagBuildColumns, "columns", 0, "Sprite sheet columns (default: columns from config)")
	buildCmd.Flags().IntVar(&flagBuildWorkers, "workers", 0, "Concurrent sheets (default: number of CPUs)")
	buildCmd.Flags().DurationVar(&flagBuildTimeout, "lock-timeout", 30*time.Second, "How long to wait for another build or fetch to finish")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := quietLogger()

	var icons []builder.Icon
	seen := make(map[string]string)
	for _, src := range args {
		got, err := loadIconSource(src)
		if err != nil {
			return err
		}
		for _, ic := range got {
			if prev, dup := seen[ic.Name]; dup {
				printWarn(ic.Name, fmt.Sprintf("duplicate in %s, keeping the copy from %s", src, prev))
				continue
			}
			seen[ic.Name] = src
			icons = append(icons, ic)
		}
		printInfo("", fmt.Sprintf("%s: %d icon(s)", src, len(got)))
	}
	if len(icons) == 0 {
		return fmt.Errorf("no icons found in %s", strings.Join(args, ", "))
	}

	outDir := cfg.IndexDir
	if flagBuildOut != "" {
		if outDir, err = config.ExpandPath(flagBuildOut); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	opts := buildOptions(cfg)
	opts.Logger = log
	opts.Observer = builder.ObserverFunc(printBuildProgress)

	res, err := builder.Build(ctx, icons, opts)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}
	for _, d := range res.Report.Dropped {
		printWarn(d.Name, fmt.Sprintf("skipped: %v", d.Err))
	}
	if res.Report.Indexed == 0 {
		return fmt.Errorf("no icon could be fingerprinted")
	}

	if err := writeAndInstall(res, outDir); err != nil {
		return err
	}
	printOK("", fmt.Sprintf("Indexed %d of %d icon(s) in %s (%d sheet(s), %d re-rendered icon by icon)",
		res.Report.Indexed, res.Report.Total, res.Report.Elapsed.Round(time.Millisecond), res.Report.Batches, res.Report.Fallbacks))
	printOK("", fmt.Sprintf("Index written: %s", outDir))
	return nil
}

func buildOptions(cfg *config.Config) builder.Options {
	opts := builder.Options{
		Size:      cfg.Size,
		BatchSize: cfg.BatchSize,
		Columns:   cfg.Columns,
		Workers:   cfg.Workers,
	}
	if flagBuildBatchSize > 0 {
		opts.BatchSize = flagBuildBatchSize
	}
	if flagBuildColumns > 0 {
		opts.Columns = flagBuildColumns
	}
	if flagBuildWorkers > 0 {
		opts.Workers = flagBuildWorkers
	}
	return opts
}

// loadIconSource reads a directory of SVGs or an Iconify collection file.
func loadIconSource(src string) ([]builder.Icon, error) {
	p, err := config.ExpandPath(src)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("cannot read icon source %s: %w", src, err)
	}
	if info.IsDir() {
		return builder.DiscoverSVGDir(p, logger())
	}
	lower := strings.ToLower(p)
	if strings.HasSuffix(lower, ".json") || strings.HasSuffix(lower, ".json.gz") {
		return builder.LoadIconifyCollection(p, logger())
	}
	return nil, fmt.Errorf("unsupported icon source %s (expected a directory or an Iconify .json collection)", src)
}

// writeAndInstall writes the blobs next to outDir and swaps them into place.
func writeAndInstall(res *builder.Result, outDir string) error {
	parent := filepath.Dir(outDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", parent, err)
	}
	tmpDir, err := os.MkdirTemp(parent, ".index-build-*")
	if err != nil {
		return fmt.Errorf("cannot create temp index dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if _, err := index.WriteDir(tmpDir, res.Names, res.Hashes); err != nil {
		return err
	}
	if err := index.Install(tmpDir, outDir, flagBuildTimeout); err != nil {
		return fmt.Errorf("cannot install index: %w", err)
	}
	return nil
}

// printBuildProgress renders a single-line progress indicator to stderr.
func printBuildProgress(processed, total int) {
	pct := float64(processed) / float64(total) * 100
	fmt.Fprintf(os.Stderr, "\rIndexing... %d / %d (%.1f%%)", processed, total, pct)
}
