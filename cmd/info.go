package cmd

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/kamusis/iconhash-cli/internal/catalog"
	"github.com/kamusis/iconhash-cli/internal/index"
	"github.com/spf13/cobra"
)

var (
	flagInfoIndex string
	flagInfoSets  bool
)

var infoCmd = &cobra.Command{
	Use:   "info [prefix:name]...",
	Short: "Show index statistics or stored fingerprints",
	Args:  cobra.ArbitraryArgs,
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().StringVar(&flagInfoIndex, "index", "", "Index directory (default: index_dir from config)")
	infoCmd.Flags().BoolVar(&flagInfoSets, "sets", false, "List every icon set with its icon count")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir := cfg.IndexDir
	if flagInfoIndex != "" {
		dir = flagInfoIndex
	}
	idx, m, err := index.LoadDir(dir)
	if err != nil {
		return fmt.Errorf("cannot load index %s: %w", dir, err)
	}

	out := cmd.OutOrStdout()
	if len(args) > 0 {
		var missing int
		for _, name := range args {
			i, ok := idx.Lookup(name)
			if !ok {
				printMiss(name, "not in index")
				missing++
				continue
			}
			fmt.Fprintf(out, "%s\t%s\n", idx.Name(i), idx.FingerprintAt(i))
		}
		if missing > 0 {
			return fmt.Errorf("%d name(s) not found", missing)
		}
		return nil
	}

	printSection("iconhash info")
	fmt.Fprintln(out)
	printInfo("", fmt.Sprintf("Index:   %s", dir))
	printInfo("", fmt.Sprintf("Icons:   %d", idx.Len()))
	printInfo("", fmt.Sprintf("Sets:    %d", idx.Sets().Len()))
	if m != nil {
		printInfo("", fmt.Sprintf("Created: %s", m.CreatedAt))
		printInfo("", fmt.Sprintf("Size:    %d (%d-bit fingerprints)", m.HashSize, m.HashSize*m.HashSize))
		printOK("", "manifest digests verified")
	} else {
		printWarn("", "no manifest; content digests not verified")
	}

	if flagInfoSets {
		fmt.Fprintln(out)
		printSetCounts(out, idx)
	}
	return nil
}

func printSetCounts(out io.Writer, idx *index.Index) {
	counts := make(map[catalog.SetID]int)
	for i := 0; i < idx.Len(); i++ {
		counts[idx.Set(i)]++
	}
	ids := make([]catalog.SetID, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] == counts[ids[j]] {
			return idx.Sets().Name(ids[i]) < idx.Sets().Name(ids[j])
		}
		return counts[ids[i]] > counts[ids[j]]
	})

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, id := range ids {
		fmt.Fprintf(w, "  %s\t%d\n", idx.Sets().Name(id), counts[id])
	}
	_ = w.Flush()
}

