package resolve

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kamusis/iconhash-cli/internal/catalog"
)

// maxIconBytes bounds a single downloaded SVG.
const maxIconBytes = 4 << 20

type iconifyResolver struct {
	baseURL string
	client  *http.Client
}

// NewIconify constructs a Resolver for an Iconify-compatible API.
//
// It uses the REST endpoint:
//
//	GET {baseURL}/{prefix}/{identifier}.svg
func NewIconify(baseURL string) Resolver {
	return &iconifyResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *iconifyResolver) Resolve(ctx context.Context, name string) ([]byte, error) {
	n, err := catalog.ParseName(name)
	if err != nil {
		return nil, err
	}

	u := r.baseURL + "/" + url.PathEscape(n.Prefix) + "/" + url.PathEscape(n.Identifier) + ".svg"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "image/svg+xml")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIconBytes))
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", name, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("icon request failed: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	// Iconify answers unknown icons with 200 and the literal body "404".
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || string(trimmed) == "404" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return body, nil
}
