package cmd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kamusis/iconhash-cli/internal/catalog"
	"github.com/kamusis/iconhash-cli/internal/config"
	"github.com/kamusis/iconhash-cli/internal/match"
	"github.com/kamusis/iconhash-cli/internal/resolve"
)

// resetFindFlags restores flag globals after a test changes them.
func resetFindFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		flagFindLimit = 0
		flagFindThreshold = -1
		flagFindPrefixes = nil
		flagFindPrefer = nil
		flagFindIndex = ""
		flagFindResolver = ""
		flagFindRemote = false
	})
	flagFindThreshold = -1
}

// testConfig keeps the threshold high enough that the bar icon, 20 bits away
// from the square, is filtered out.
func testConfig(t *testing.T, indexDir string) *config.Config {
	t.Helper()
	return &config.Config{IndexDir: indexDir, Size: 32, Limit: 10, Threshold: 0.99}
}

func TestMatchOptions_FlagsOverrideConfig(t *testing.T) {
	resetFindFlags(t)
	cfg := &config.Config{Size: 32, Limit: 7, Threshold: 0.9, Prefer: []string{"mdi"}}

	opts := matchOptions(cfg)
	if opts.Limit != 7 || opts.Threshold != 0.9 || len(opts.Prefer) != 1 {
		t.Fatalf("config not applied: %+v", opts)
	}

	flagFindLimit = 2
	flagFindThreshold = 0
	flagFindPrefer = []string{"fa", "tabler"}
	flagFindPrefixes = []string{"fa"}
	opts = matchOptions(cfg)
	if opts.Limit != 2 || opts.Threshold != 0 || len(opts.Prefer) != 2 || opts.Prefixes[0] != "fa" {
		t.Fatalf("flags not applied: %+v", opts)
	}
}

func TestMatchOptions_ZeroThresholdFromConfig(t *testing.T) {
	resetFindFlags(t)
	opts := matchOptions(&config.Config{Size: 32, Limit: 5, Threshold: 0})
	if opts.Threshold != 0 {
		t.Fatalf("Threshold = %v, want 0 from config", opts.Threshold)
	}
}

func TestFindIcons_FromFile(t *testing.T) {
	resetFindFlags(t)
	cfg := testConfig(t, writeTestIndex(t))

	q := filepath.Join(t.TempDir(), "q.svg")
	if err := os.WriteFile(q, []byte(testSquareSVG), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := findIcons(context.Background(), cfg, q, nil)
	if err != nil {
		t.Fatalf("findIcons: %v", err)
	}
	if len(got) != 2 || got[0].Name != "shapes:square" || got[1].Name != "other:square" || got[0].Similarity != 1 {
		t.Fatalf("results = %+v", got)
	}
}

func TestFindIcons_PreferAndPrefix(t *testing.T) {
	resetFindFlags(t)
	cfg := testConfig(t, writeTestIndex(t))

	flagFindPrefer = []string{"other"}
	got, err := findIcons(context.Background(), cfg, "-", strings.NewReader(testSquareSVG))
	if err != nil {
		t.Fatalf("findIcons: %v", err)
	}
	if len(got) != 2 || got[0].Name != "other:square" {
		t.Fatalf("prefer not applied: %+v", got)
	}

	flagFindPrefixes = []string{"shapes"}
	got, err = findIcons(context.Background(), cfg, "-", strings.NewReader(testSquareSVG))
	if err != nil {
		t.Fatalf("findIcons: %v", err)
	}
	if len(got) != 1 || got[0].Name != "shapes:square" {
		t.Fatalf("prefix not applied: %+v", got)
	}
}

func TestFindIcons_IndexedName(t *testing.T) {
	resetFindFlags(t)
	cfg := testConfig(t, writeTestIndex(t))
	cfg.ResolverURL = "http://127.0.0.1:1" // must not be contacted

	got, err := findIcons(context.Background(), cfg, "shapes:square", nil)
	if err != nil {
		t.Fatalf("findIcons: %v", err)
	}
	if len(got) == 0 || got[0].Similarity != 1 {
		t.Fatalf("results = %+v", got)
	}
}

func TestFindIcons_ResolvedName(t *testing.T) {
	resetFindFlags(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/remote/square.svg" {
			_, _ = w.Write([]byte(testSquareSVG))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	cfg := testConfig(t, writeTestIndex(t))
	cfg.ResolverURL = srv.URL

	got, err := findIcons(context.Background(), cfg, "remote:square", nil)
	if err != nil {
		t.Fatalf("findIcons: %v", err)
	}
	if len(got) != 2 || got[0].Similarity != 1 {
		t.Fatalf("results = %+v", got)
	}

	if _, err := findIcons(context.Background(), cfg, "remote:missing", nil); !errors.Is(err, resolve.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFindIcons_Errors(t *testing.T) {
	resetFindFlags(t)
	cfg := testConfig(t, writeTestIndex(t))

	if _, err := findIcons(context.Background(), cfg, "not a name", nil); !errors.Is(err, catalog.ErrInvalidName) {
		t.Fatalf("bad query: err = %v", err)
	}

	flagFindLimit = -1
	if _, err := findIcons(context.Background(), cfg, "shapes:square", nil); !errors.Is(err, match.ErrInvalidOptions) {
		t.Fatalf("bad limit: err = %v", err)
	}
	flagFindLimit = 0

	cfg.IndexDir = filepath.Join(t.TempDir(), "missing")
	if _, err := findIcons(context.Background(), cfg, "shapes:square", nil); err == nil {
		t.Fatal("expected error for missing index")
	}
}
