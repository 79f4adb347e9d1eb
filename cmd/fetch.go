package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kamusis/iconhash-cli/internal/config"
	"github.com/kamusis/iconhash-cli/internal/index"
	"github.com/spf13/cobra"
)

// fetchFlags holds flag values for the `iconhash fetch` command.
type fetchFlags struct {
	out         string
	timeout     time.Duration
	lockTimeout time.Duration
	verbose     bool
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <base-url>",
	Short: "Download a prebuilt index and install it",
	Long: `Download names.txt.gz, hashes.bin.gz and (when published)
index_manifest.json from <base-url>, validate them, and replace the local
index in one step.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	var f fetchFlags
	fetchCmd.Flags().StringVar(&f.out, "out", "", "Index directory to replace (default: index_dir from config)")
	fetchCmd.Flags().DurationVar(&f.timeout, "timeout", 5*time.Minute, "Overall timeout for network operations")
	fetchCmd.Flags().DurationVar(&f.lockTimeout, "lock-timeout", 30*time.Second, "How long to wait for another build or fetch to finish")
	fetchCmd.Flags().BoolVar(&f.verbose, "verbose", false, "Verbose output")
	fetchCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(context.WithValue(cmd.Context(), fetchFlagsKey{}, f))
		return nil
	}
	rootCmd.AddCommand(fetchCmd)
}

type fetchFlagsKey struct{}

// errRemoteMissing marks an HTTP 404 from the index host.
var errRemoteMissing = errors.New("not found on server")

// runFetch implements the `iconhash fetch` command.
func runFetch(cmd *cobra.Command, args []string) error {
	f, ok := cmd.Context().Value(fetchFlagsKey{}).(fetchFlags)
	if !ok {
		return fmt.Errorf("internal error: fetch flags missing")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dest := cfg.IndexDir
	if f.out != "" {
		if dest, err = config.ExpandPath(f.out); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), f.timeout)
	defer cancel()

	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", parent, err)
	}
	tmpDir, err := os.MkdirTemp(parent, ".index-fetch-*")
	if err != nil {
		return fmt.Errorf("cannot create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	idx, m, err := fetchIndex(ctx, args[0], tmpDir, f.verbose)
	if err != nil {
		return err
	}
	if m != nil {
		printOK("", "Digests verified.")
	} else {
		printWarn("", index.ManifestFile+" not published; skipping digest verification")
	}

	if err := index.Install(tmpDir, dest, f.lockTimeout); err != nil {
		return fmt.Errorf("cannot install index: %w", err)
	}
	printOK("", fmt.Sprintf("Installed %d icon(s) from %d set(s) into %s", idx.Len(), idx.Sets().Len(), dest))
	return nil
}

// fetchIndex downloads the index artifacts under baseURL into dir and loads
// them to prove they are consistent.
func fetchIndex(ctx context.Context, baseURL, dir string, verbose bool) (*index.Index, *index.Manifest, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, nil, fmt.Errorf("invalid base URL %q (expected http:// or https://)", baseURL)
	}

	err := downloadWithProgress(ctx, base+"/"+index.ManifestFile, filepath.Join(dir, index.ManifestFile), verbose)
	if err != nil && !errors.Is(err, errRemoteMissing) {
		return nil, nil, err
	}
	for _, name := range []string{index.NamesFile, index.HashesFile} {
		if err := downloadWithProgress(ctx, base+"/"+name, filepath.Join(dir, name), verbose); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	idx, m, err := index.LoadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("downloaded index is invalid: %w", err)
	}
	return idx, m, nil
}

// downloadWithProgress downloads a URL to dest while printing a byte-based progress indicator.
func downloadWithProgress(ctx context.Context, url, dest string, verbose bool) error {
	client := &http.Client{}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "iconhash-cli/"+version)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("download failed: %s: %w", url, errRemoteMissing)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return fmt.Errorf("download failed: %s\n%s", resp.Status, strings.TrimSpace(string(body)))
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", dest, err)
	}
	defer out.Close()

	label := filepath.Base(dest)
	total := resp.ContentLength
	var downloaded int64
	lastPrint := time.Now()
	buf := make([]byte, 32*1024)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write failed: %w", werr)
			}
			downloaded += int64(n)
			if time.Since(lastPrint) > 200*time.Millisecond {
				printDownloadProgress(label, downloaded, total)
				lastPrint = time.Now()
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				break
			}
			return fmt.Errorf("download read failed: %w", rerr)
		}
	}
	printDownloadProgress(label, downloaded, total)
	fmt.Fprintln(os.Stderr)
	if verbose {
		printInfo("", fmt.Sprintf("Downloaded %d bytes to %s", downloaded, dest))
	}
	return out.Sync()
}

// printDownloadProgress renders a single-line progress indicator to stderr.
func printDownloadProgress(label string, downloaded, total int64) {
	if total > 0 {
		pct := float64(downloaded) / float64(total) * 100
		fmt.Fprintf(os.Stderr, "\rDownloading %s... %s / %s (%.1f%%)", label, humanBytes(downloaded), humanBytes(total), pct)
		return
	}
	fmt.Fprintf(os.Stderr, "\rDownloading %s... %s", label, humanBytes(downloaded))
}

// humanBytes formats a byte count in a human-friendly binary unit.
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	prefix := "KMGTPE"[exp]
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), prefix)
}
