package resolve

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kamusis/iconhash-cli/internal/catalog"
)

type dirResolver struct {
	root string
}

// NewDir constructs a Resolver that reads root/<prefix>/<identifier>.svg.
func NewDir(root string) Resolver {
	return &dirResolver{root: root}
}

func (r *dirResolver) Resolve(ctx context.Context, name string) ([]byte, error) {
	n, err := catalog.ParseName(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(filepath.Join(r.root, n.Prefix, n.Identifier+".svg"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("cannot read %s: %w", name, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return b, nil
}
