package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/kamusis/iconhash-cli/internal/config"
	"github.com/kamusis/iconhash-cli/internal/fingerprint"
	"github.com/kamusis/iconhash-cli/internal/index"
	"github.com/kamusis/iconhash-cli/internal/match"
	"github.com/kamusis/iconhash-cli/internal/raster"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight environment checks",
	Long: `Check that iconhash's config, index and renderer are usable.
Run this command when something seems wrong, or before filing a bug report.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorProbe is rendered by the renderer check. The left half is black, so
// every row has exactly one dark-to-light edge.
const doctorProbe = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 33 32"><rect x="0" y="0" width="16" height="32"/></svg>`

func runDoctor(_ *cobra.Command, _ []string) error {
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("iconhash doctor")
	fmt.Println()

	// ── Check 1: runtime ────────────────────────────────────────────────────
	fmt.Println("[ runtime ]")
	printOK("", fmt.Sprintf("iconhash %s, %s %s/%s, %d CPU(s)", version, runtime.Version(), runtime.GOOS, runtime.GOARCH, runtime.NumCPU()))
	fmt.Println()

	// ── Check 2: config ─────────────────────────────────────────────────────
	fmt.Println("[ config.yaml ]")
	cfgPath, _ := config.ConfigPath()
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		printWarn("", "~/.iconhash/config.yaml not found — using defaults (run 'iconhash init')")
	}
	cfg, loadErr := config.Load()
	if loadErr != nil {
		failD("cannot parse config.yaml: %v", loadErr)
	} else {
		printOK("", fmt.Sprintf("size=%d limit=%d threshold=%.3f batch_size=%d columns=%d", cfg.Size, cfg.Limit, cfg.Threshold, cfg.BatchSize, cfg.Columns))
		if err := fingerprint.CheckSize(cfg.Size); err != nil {
			failD("size: %v", err)
		} else if fingerprint.ByteLen(cfg.Size) != index.RecordSize {
			failD("size %d does not produce %d-byte fingerprints", cfg.Size, index.RecordSize)
		}
		if cfg.Threshold < 0 || cfg.Threshold > 1 {
			failD("threshold %v is outside [0, 1]", cfg.Threshold)
		}
		if overrides, err := config.ActiveOverrides(); err != nil {
			failD("cannot read overrides: %v", err)
		} else {
			for _, o := range overrides {
				printInfo(o.Key, fmt.Sprintf("%s (from %s)", o.Value, o.Source))
			}
		}
		if cfg.ResolverURL == "" {
			printWarn("", "resolver_url is empty — named queries must already be in the index")
		} else {
			printOK("", fmt.Sprintf("resolver: %s", cfg.ResolverURL))
		}
	}
	fmt.Println()

	// ── Check 3: index ──────────────────────────────────────────────────────
	fmt.Println("[ index ]")
	if loadErr == nil {
		idx, m, err := index.LoadDir(cfg.IndexDir)
		switch {
		case err != nil:
			failD("cannot load index at %s: %v", cfg.IndexDir, err)
		default:
			printOK("", fmt.Sprintf("%d icon(s) from %d set(s) at %s", idx.Len(), idx.Sets().Len(), cfg.IndexDir))
			if m == nil {
				printWarn("", "no manifest; digests not verified")
			} else if m.HashSize != 0 && m.HashSize != cfg.Size {
				failD("index built with size %d, config uses %d", m.HashSize, cfg.Size)
			}
		}
	} else {
		printWarn("", "skipped (config not loaded)")
	}
	fmt.Println()

	// ── Check 4: renderer ───────────────────────────────────────────────────
	fmt.Println("[ renderer ]")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := checkRenderer(ctx, raster.NewOKSVG()); err != nil {
		failD("%v", err)
	} else {
		printOK("", "oksvg renders and fingerprints a probe icon")
	}
	fmt.Println()

	if !allOK {
		return fmt.Errorf("one or more checks failed")
	}
	printOK("", "all checks passed")
	return nil
}

// checkRenderer fingerprints doctorProbe and expects one set bit per row.
func checkRenderer(ctx context.Context, r raster.Rasterizer) error {
	fp, err := match.Fingerprint(ctx, r, []byte(doctorProbe), fingerprint.DefaultSize)
	if err != nil {
		return fmt.Errorf("renderer failed: %w", err)
	}
	var set int
	for _, b := range fp {
		for ; b != 0; b &= b - 1 {
			set++
		}
	}
	if set != fingerprint.DefaultSize {
		return fmt.Errorf("renderer produced %d edge bits for the probe, want %d", set, fingerprint.DefaultSize)
	}
	return nil
}
