package cmd

import (
	"fmt"
	"os"

	"github.com/kamusis/iconhash-cli/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create ~/.iconhash with a default config",
	Long: `Initialize ~/.iconhash/.

Writes config.yaml with default match and build settings, a .env template for
overrides, and creates the index directory. Existing files are left alone.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	// ── 1. Resolve ~/.iconhash directory ─────────────────────────────────────
	dir, err := config.IconhashDir()
	if err != nil {
		return err
	}
	cfgPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	// ── 2. Create ~/.iconhash/ if it doesn't exist ───────────────────────────
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	printOK("", fmt.Sprintf("iconhash directory ready: %s", dir))

	// ── 3. Write config.yaml if missing ──────────────────────────────────────
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg, err := config.DefaultConfig()
		if err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	} else {
		printSkip("", fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	// ── 4. Write .env template if missing ────────────────────────────────────
	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	envPath, _ := config.DotEnvPath()
	printOK("", fmt.Sprintf("Overrides file ready: %s", envPath))

	// ── 5. Create the index directory ────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return fmt.Errorf("cannot create index directory %s: %w", cfg.IndexDir, err)
	}
	printOK("", fmt.Sprintf("Index directory ready: %s", cfg.IndexDir))

	fmt.Println()
	fmt.Println("  Next: 'iconhash build <icons-dir|collection.json>' or 'iconhash fetch <url>'.")
	return nil
}
