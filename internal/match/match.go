// Package match ranks index records against a query fingerprint.
package match

import (
	"context"
	"fmt"
	"sort"

	"github.com/kamusis/iconhash-cli/internal/fingerprint"
	"github.com/kamusis/iconhash-cli/internal/index"
	"github.com/kamusis/iconhash-cli/internal/raster"
)

// TieEpsilon is the similarity band within which Prefer may reorder results.
const TieEpsilon = 0.001

// Result is one ranked match.
type Result struct {
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
	Distance   int     `json:"distance"`
}

type candidate struct {
	Result
	preferred bool
}

// FindMatches scans idx in record order and returns up to opts.Limit records
// whose similarity to query is at least opts.Threshold, best first.
func FindMatches(query []byte, idx *index.Index, opts Options) ([]Result, error) {
	if len(query) != index.RecordSize {
		return nil, fmt.Errorf("%w: query has %d bytes, index records have %d", fingerprint.ErrLengthMismatch, len(query), index.RecordSize)
	}
	if err := opts.Validate(len(query)); err != nil {
		return nil, err
	}

	maxDist := fingerprint.MaxDistance(opts.Threshold, index.RecordSize)
	allowed := idx.Sets().Mask(opts.Prefixes)
	preferred := idx.Sets().Mask(opts.Prefer)

	hashes := idx.Hashes()
	var out []candidate
	for i, n := 0, idx.Len(); i < n; i++ {
		set := idx.Set(i)
		if allowed != nil && !allowed[set] {
			continue
		}
		off := i * index.RecordSize
		d := fingerprint.Distance(query, hashes[off:off+index.RecordSize])
		if d > maxDist {
			continue
		}
		sim := fingerprint.SimilarityFromDistance(d, index.RecordSize)
		if sim < opts.Threshold {
			continue
		}
		out = append(out, candidate{
			Result:    Result{Name: idx.Name(i), Similarity: sim, Distance: d},
			preferred: preferred != nil && preferred[set],
		})
	}

	rank(out)

	if len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	results := make([]Result, len(out))
	for i := range out {
		results[i] = out[i].Result
	}
	return results, nil
}

// rank sorts by similarity descending, keeping index order among equals, then
// lets each preferred candidate overtake the non-preferred ones directly ahead
// of it that are within TieEpsilon. Preferred candidates never pass each other.
func rank(c []candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		return c[i].Similarity > c[j].Similarity
	})
	for i := 1; i < len(c); i++ {
		if !c[i].preferred {
			continue
		}
		j := i
		for j > 0 && !c[j-1].preferred && c[j-1].Similarity-c[i].Similarity < TieEpsilon {
			j--
		}
		if j == i {
			continue
		}
		moved := c[i]
		copy(c[j+1:i+1], c[j:i])
		c[j] = moved
	}
}

// MatchSource rasterizes an SVG at the query geometry, fingerprints it and
// matches it against idx. Rasterization failures are returned as errors.
func MatchSource(ctx context.Context, r raster.Rasterizer, svg []byte, idx *index.Index, opts Options) ([]Result, error) {
	fp, err := Fingerprint(ctx, r, svg, opts.Size)
	if err != nil {
		return nil, err
	}
	return FindMatches(fp, idx, opts)
}

// Fingerprint rasterizes svg to a (size+1)×size white-backed frame and hashes it.
func Fingerprint(ctx context.Context, r raster.Rasterizer, svg []byte, size int) (fingerprint.Fingerprint, error) {
	if err := fingerprint.CheckSize(size); err != nil {
		return nil, err
	}
	w, h := fingerprint.RasterSize(size)
	img, err := r.Rasterize(ctx, svg, w, h, raster.White)
	if err != nil {
		return nil, err
	}
	return fingerprint.Compute(img.Pix, size)
}
