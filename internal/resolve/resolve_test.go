package resolve

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/kamusis/iconhash-cli/internal/fingerprint"
)

const homeSVG = `<svg viewBox="0 0 24 24"><path d="M4 4h16v16H4z"/></svg>`

func newIconifyServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/mdi/home.svg":
			w.Header().Set("Content-Type", "image/svg+xml")
			_, _ = w.Write([]byte(homeSVG))
		case "/mdi/ghost.svg":
			_, _ = w.Write([]byte("404"))
		case "/mdi/empty.svg":
		case "/mdi/boom.svg":
			http.Error(w, "upstream down", http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestIconify_Resolve(t *testing.T) {
	srv := newIconifyServer(t)
	r := NewIconify(srv.URL + "/")

	b, err := r.Resolve(context.Background(), "mdi:home")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if string(b) != homeSVG {
		t.Fatalf("body = %q", b)
	}
}

func TestIconify_NotFound(t *testing.T) {
	srv := newIconifyServer(t)
	r := NewIconify(srv.URL)

	for _, name := range []string{"mdi:missing", "mdi:ghost", "mdi:empty"} {
		if _, err := r.Resolve(context.Background(), name); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: err = %v, want ErrNotFound", name, err)
		}
	}
}

func TestIconify_UpstreamError(t *testing.T) {
	srv := newIconifyServer(t)
	_, err := NewIconify(srv.URL).Resolve(context.Background(), "mdi:boom")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want HTTP error", err)
	}
}

func TestIconify_InvalidName(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer srv.Close()

	for _, name := range []string{"home", "mdi:", "mdi:ho me", "a:b:c", "../x:y"} {
		_, err := NewIconify(srv.URL).Resolve(context.Background(), name)
		if !errors.Is(err, ErrInvalidName) || !errors.Is(err, fingerprint.ErrValidation) {
			t.Fatalf("%q: err = %v, want ErrInvalidName", name, err)
		}
	}
	if called {
		t.Fatal("invalid names must not reach the server")
	}
}

func TestDir_Resolve(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "mdi"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "mdi", "home.svg"), []byte(homeSVG), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := NewFromConfig(&Config{BaseURL: root})
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	b, err := r.Resolve(context.Background(), "mdi:home")
	if err != nil || string(b) != homeSVG {
		t.Fatalf("Resolve = %q, %v", b, err)
	}
	if _, err := r.Resolve(context.Background(), "mdi:nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing: err = %v", err)
	}
	if _, err := r.Resolve(context.Background(), "nope"); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("invalid: err = %v", err)
	}
}

func TestNewFromConfig(t *testing.T) {
	if _, err := NewFromConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := NewFromConfig(&Config{}); err == nil {
		t.Fatal("expected error for empty base URL")
	}
	r, err := NewFromConfig(&Config{BaseURL: "https://api.iconify.design"})
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if _, ok := r.(*iconifyResolver); !ok {
		t.Fatalf("got %T, want *iconifyResolver", r)
	}
}
