package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kamusis/iconhash-cli/internal/catalog"
	"github.com/kamusis/iconhash-cli/internal/config"
	"github.com/kamusis/iconhash-cli/internal/fingerprint"
	"github.com/kamusis/iconhash-cli/internal/index"
	"github.com/kamusis/iconhash-cli/internal/match"
	"github.com/kamusis/iconhash-cli/internal/raster"
	"github.com/kamusis/iconhash-cli/internal/resolve"
	"github.com/spf13/cobra"
)

var (
	flagFindLimit     int
	flagFindThreshold float64
	flagFindPrefixes  []string
	flagFindPrefer    []string
	flagFindIndex     string
	flagFindResolver  string
	flagFindRemote    bool
	flagFindJSON      bool
	flagFindTimeout   time.Duration
)

var findCmd = &cobra.Command{
	Use:   "find <file.svg|prefix:name|->",
	Short: "Find catalog icons that look like an SVG or a named icon",
	Long: `Rank indexed icons by visual similarity to a query.

The query is an SVG file, '-' for SVG on stdin, or a catalog name such as
mdi:home. A name already in the index is matched by its stored fingerprint;
other names are fetched from resolver_url and rendered.`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

func init() {
	findCmd.Flags().IntVar(&flagFindLimit, "limit", 0, "Maximum number of results (default: limit from config)")
	findCmd.Flags().Float64Var(&flagFindThreshold, "threshold", -1, "Minimum similarity in [0,1] (default: threshold from config)")
	findCmd.Flags().StringSliceVar(&flagFindPrefixes, "prefix", nil, "Only search these icon sets (repeatable)")
	findCmd.Flags().StringSliceVar(&flagFindPrefer, "prefer", nil, "Rank these icon sets first among near-ties (default: prefer from config)")
	findCmd.Flags().StringVar(&flagFindIndex, "index", "", "Index directory (default: index_dir from config)")
	findCmd.Flags().StringVar(&flagFindResolver, "resolver", "", "Icon API base URL or directory for named queries")
	findCmd.Flags().BoolVar(&flagFindRemote, "remote", false, "Always fetch named queries from the resolver")
	findCmd.Flags().BoolVar(&flagFindJSON, "json", false, "Print results as JSON")
	findCmd.Flags().DurationVar(&flagFindTimeout, "timeout", 30*time.Second, "Deadline for fetching and rendering the query")
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), flagFindTimeout)
	defer cancel()

	results, err := findIcons(ctx, cfg, args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	if flagFindJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if results == nil {
			results = []match.Result{}
		}
		return enc.Encode(results)
	}
	printFindResults(cmd.OutOrStdout(), args[0], results)
	return nil
}

// findIcons loads the index, fingerprints the query and ranks the index.
func findIcons(ctx context.Context, cfg *config.Config, query string, stdin io.Reader) ([]match.Result, error) {
	dir := cfg.IndexDir
	if flagFindIndex != "" {
		dir = flagFindIndex
	}
	idx, m, err := index.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot load index %s: %w\nRun 'iconhash build' or 'iconhash fetch' first.", dir, err)
	}

	opts := matchOptions(cfg)
	if m != nil && m.HashSize != 0 && m.HashSize != opts.Size {
		return nil, fmt.Errorf("%w: index was built with size %d, config uses %d", match.ErrInvalidOptions, m.HashSize, opts.Size)
	}

	fp, err := queryFingerprint(ctx, cfg, idx, query, opts.Size, stdin)
	if err != nil {
		return nil, err
	}
	return match.FindMatches(fp, idx, opts)
}

func matchOptions(cfg *config.Config) match.Options {
	opts := match.DefaultOptions()
	if cfg.Size > 0 {
		opts.Size = cfg.Size
	}
	if cfg.Limit > 0 {
		opts.Limit = cfg.Limit
	}
	// Load seeds the default, so a zero here was written by the user.
	opts.Threshold = cfg.Threshold
	opts.Prefer = cfg.Prefer

	if flagFindLimit != 0 {
		opts.Limit = flagFindLimit
	}
	if flagFindThreshold >= 0 {
		opts.Threshold = flagFindThreshold
	}
	if len(flagFindPrefixes) > 0 {
		opts.Prefixes = flagFindPrefixes
	}
	if len(flagFindPrefer) > 0 {
		opts.Prefer = flagFindPrefer
	}
	return opts
}

// queryFingerprint turns the find argument into a fingerprint.
func queryFingerprint(ctx context.Context, cfg *config.Config, idx *index.Index, query string, size int, stdin io.Reader) (fingerprint.Fingerprint, error) {
	r := raster.NewOKSVG()

	if query == "-" {
		svg, err := io.ReadAll(io.LimitReader(stdin, 16<<20))
		if err != nil {
			return nil, fmt.Errorf("cannot read stdin: %w", err)
		}
		return match.Fingerprint(ctx, r, svg, size)
	}

	if info, err := os.Stat(query); err == nil && !info.IsDir() {
		svg, err := os.ReadFile(query)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", query, err)
		}
		return match.Fingerprint(ctx, r, svg, size)
	}

	if !catalog.IsName(query) {
		return nil, fmt.Errorf("%w: %q is neither a readable file nor a prefix:name", catalog.ErrInvalidName, query)
	}
	if !flagFindRemote {
		if i, ok := idx.Lookup(strings.TrimSpace(query)); ok {
			return idx.FingerprintAt(i), nil
		}
	}

	base := cfg.ResolverURL
	if flagFindResolver != "" {
		base = flagFindResolver
	}
	res, err := resolve.NewFromConfig(&resolve.Config{BaseURL: base})
	if err != nil {
		return nil, err
	}
	svg, err := res.Resolve(ctx, query)
	if err != nil {
		return nil, err
	}
	return match.Fingerprint(ctx, r, svg, size)
}

func printFindResults(out io.Writer, query string, results []match.Result) {
	fmt.Fprintf(out, "\niconhash find %q\n\n", query)
	fmt.Fprintf(out, "Results (%d found):\n", len(results))
	if len(results) == 0 {
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, r := range results {
		fmt.Fprintf(w, "  %d.\t[%.3f]\t%s\n", i+1, r.Similarity, r.Name)
	}
	_ = w.Flush()
}
