package match

import (
	"fmt"

	"github.com/kamusis/iconhash-cli/internal/fingerprint"
)

// ErrInvalidOptions is returned for out-of-range match options.
var ErrInvalidOptions = fmt.Errorf("%w: invalid match options", fingerprint.ErrValidation)

const (
	DefaultLimit     = 10
	DefaultThreshold = 0.8
)

// Options controls FindMatches.
type Options struct {
	// Size is the raster edge the query was hashed at. It must match the
	// size the index was built with.
	Size      int
	Limit     int
	Threshold float64
	// Prefixes restricts the scan to these sets when non-empty.
	Prefixes []string
	// Prefer moves these sets ahead of near-ties.
	Prefer []string
}

// DefaultOptions returns the stock query settings.
func DefaultOptions() Options {
	return Options{
		Size:      fingerprint.DefaultSize,
		Limit:     DefaultLimit,
		Threshold: DefaultThreshold,
	}
}

// Validate checks the options against a query of queryLen bytes.
func (o Options) Validate(queryLen int) error {
	if o.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidOptions, o.Limit)
	}
	if !(o.Threshold >= 0 && o.Threshold <= 1) {
		return fmt.Errorf("%w: threshold must be within [0, 1], got %v", ErrInvalidOptions, o.Threshold)
	}
	if err := fingerprint.CheckSize(o.Size); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if fingerprint.ByteLen(o.Size) != queryLen {
		return fmt.Errorf("%w: size %d does not produce a %d-byte fingerprint", ErrInvalidOptions, o.Size, queryLen)
	}
	return nil
}
