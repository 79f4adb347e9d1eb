// Package resolve fetches the SVG source of a named catalog icon.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kamusis/iconhash-cli/internal/catalog"
)

var (
	// ErrInvalidName is returned for names not of the form prefix:identifier.
	ErrInvalidName = catalog.ErrInvalidName
	// ErrNotFound is returned when the source has no icon by that name.
	ErrNotFound = errors.New("icon not found")
)

// Resolver returns the SVG source of a named icon.
type Resolver interface {
	Resolve(ctx context.Context, name string) ([]byte, error)
}

// Config selects and configures a Resolver.
type Config struct {
	// BaseURL of an Iconify-compatible API, or a directory laid out as
	// <prefix>/<identifier>.svg when it has no http(s) scheme.
	BaseURL string
}

// NewFromConfig returns the Resolver described by cfg.
func NewFromConfig(cfg *Config) (Resolver, error) {
	if cfg == nil {
		return nil, fmt.Errorf("resolver config is nil")
	}
	base := strings.TrimSpace(cfg.BaseURL)
	switch {
	case base == "":
		return nil, fmt.Errorf("resolver is not configured (set resolver_url or ICONHASH_RESOLVER_URL)")
	case strings.HasPrefix(base, "http://"), strings.HasPrefix(base, "https://"):
		return NewIconify(base), nil
	default:
		return NewDir(base), nil
	}
}
