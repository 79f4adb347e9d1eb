package builder

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/kamusis/iconhash-cli/internal/catalog"
	"github.com/kamusis/iconhash-cli/internal/raster"
)

// DiscoverSVGDir scans root/<prefix>/<identifier>.svg and returns the icons
// sorted by name. Files whose derived name is not a valid icon name are
// skipped with a warning.
func DiscoverSVGDir(root string, log *slog.Logger) ([]Icon, error) {
	log = orDiscard(log)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot stat icon directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("icon path is not a directory: %s", root)
	}

	var out []Icon
	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".svg") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) != 2 {
			log.Warn("skipping svg outside <prefix>/<identifier>.svg", "path", rel)
			return nil
		}
		name := parts[0] + ":" + strings.TrimSuffix(parts[1], filepath.Ext(parts[1]))
		if !catalog.IsName(name) {
			log.Warn("skipping svg with invalid icon name", "path", rel, "name", name)
			return nil
		}

		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}
		out = append(out, Icon{Name: name, SVG: b})
		return nil
	}

	if err := filepath.WalkDir(root, walkFn); err != nil {
		return nil, fmt.Errorf("cannot scan icons: %w", err)
	}
	sortIcons(out)
	return out, nil
}

// iconifyCollection is the subset of the Iconify JSON collection format that
// describes icon geometry. Aliases are not expanded.
type iconifyCollection struct {
	Prefix string                 `json:"prefix"`
	Icons  map[string]iconifyIcon `json:"icons"`
	Left   float64                `json:"left"`
	Top    float64                `json:"top"`
	Width  float64                `json:"width"`
	Height float64                `json:"height"`
}

type iconifyIcon struct {
	Body   string   `json:"body"`
	Left   *float64 `json:"left"`
	Top    *float64 `json:"top"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

// iconifyDefaultEdge is the Iconify default for width and height.
const iconifyDefaultEdge = 16

// LoadIconifyCollection reads an Iconify JSON collection (optionally
// gzip-compressed, by .gz extension) and returns its icons as standalone SVG
// documents sorted by name.
func LoadIconifyCollection(path string, log *slog.Logger) ([]Icon, error) {
	log = orDiscard(log)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open collection %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(path), ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("cannot read collection %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	var c iconifyCollection
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("cannot parse collection %s: %w", path, err)
	}
	if c.Prefix == "" {
		return nil, fmt.Errorf("collection %s has no prefix", path)
	}
	if c.Width <= 0 {
		c.Width = iconifyDefaultEdge
	}
	if c.Height <= 0 {
		c.Height = iconifyDefaultEdge
	}

	out := make([]Icon, 0, len(c.Icons))
	for id, icon := range c.Icons {
		name := c.Prefix + ":" + id
		if !catalog.IsName(name) {
			log.Warn("skipping icon with invalid name", "name", name)
			continue
		}
		out = append(out, Icon{Name: name, SVG: iconifySVG(c, icon)})
	}
	sortIcons(out)
	return out, nil
}

func iconifySVG(c iconifyCollection, icon iconifyIcon) []byte {
	left, top, w, h := c.Left, c.Top, c.Width, c.Height
	if icon.Left != nil {
		left = *icon.Left
	}
	if icon.Top != nil {
		top = *icon.Top
	}
	if icon.Width != nil && *icon.Width > 0 {
		w = *icon.Width
	}
	if icon.Height != nil && *icon.Height > 0 {
		h = *icon.Height
	}
	vb := strings.Join([]string{raster.FormatFloat(left), raster.FormatFloat(top), raster.FormatFloat(w), raster.FormatFloat(h)}, " ")
	return []byte(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink"` +
		` width="` + raster.FormatFloat(w) + `" height="` + raster.FormatFloat(h) + `"` +
		` viewBox="` + vb + `">` + icon.Body + `</svg>`)
}

func sortIcons(icons []Icon) {
	sort.Slice(icons, func(i, j int) bool {
		return icons[i].Name < icons[j].Name
	})
}

func orDiscard(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return log
}
