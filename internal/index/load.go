package index

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/zeebo/blake3"

	"github.com/kamusis/iconhash-cli/internal/catalog"
)

// Load builds an Index from the decompressed names blob (UTF-8, one name per
// line) and the concatenated fingerprint blob. Blank lines are discarded.
// The record count is checked against the blob size before anything else uses
// the data.
func Load(namesBlob, hashesBlob []byte) (*Index, error) {
	names := splitNames(namesBlob)
	if want := len(names) * RecordSize; len(hashesBlob) != want {
		return nil, fmt.Errorf("%w: hashes blob is %d bytes, want %d (%d names × %d)",
			ErrCorruptIndex, len(hashesBlob), want, len(names), RecordSize)
	}

	table := catalog.NewSets()
	sets := make([]catalog.SetID, len(names))
	byName := make(map[string]int, len(names))
	for i, n := range names {
		sets[i] = table.Intern(catalog.PrefixOf(n))
		key := catalog.Fold(n)
		if _, dup := byName[key]; !dup {
			byName[key] = i
		}
	}

	return &Index{
		names:  names,
		hashes: hashesBlob,
		sets:   sets,
		table:  table,
		byName: byName,
	}, nil
}

func splitNames(blob []byte) []string {
	var out []string
	for _, line := range bytes.Split(blob, []byte{'\n'}) {
		line = bytes.TrimRight(line, "\r")
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		out = append(out, string(line))
	}
	return out
}

// LoadDir reads an index directory written by WriteDir. When a manifest is
// present its count and digests must match the artifacts.
func LoadDir(dir string) (*Index, *Manifest, error) {
	m, err := readManifest(dir)
	if err != nil {
		return nil, nil, err
	}
	namesFile, hashesFile := NamesFile, HashesFile
	if m != nil {
		if m.NamesFile != "" {
			namesFile = filepath.Base(m.NamesFile)
		}
		if m.HashesFile != "" {
			hashesFile = filepath.Base(m.HashesFile)
		}
	}

	namesBlob, err := readGzip(filepath.Join(dir, namesFile))
	if err != nil {
		return nil, nil, err
	}
	hashesBlob, err := readGzip(filepath.Join(dir, hashesFile))
	if err != nil {
		return nil, nil, err
	}

	if m != nil {
		if err := verifyDigest("names", m.NamesDigest, namesBlob); err != nil {
			return nil, nil, err
		}
		if err := verifyDigest("hashes", m.HashesDigest, hashesBlob); err != nil {
			return nil, nil, err
		}
	}

	idx, err := Load(namesBlob, hashesBlob)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", dir, err)
	}
	if m != nil && m.Count != 0 && m.Count != idx.Len() {
		return nil, nil, fmt.Errorf("%w: manifest count %d, index has %d records", ErrCorruptIndex, m.Count, idx.Len())
	}
	return idx, m, nil
}

func readManifest(dir string) (*Manifest, error) {
	p := filepath.Join(dir, ManifestFile)
	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot read manifest %s: %w", p, err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest JSON %s: %w", p, err)
	}
	if m.HashSize != 0 && m.HashSize*m.HashSize/8 != RecordSize {
		return nil, fmt.Errorf("unsupported hash size in manifest: %d", m.HashSize)
	}
	return &m, nil
}

func readGzip(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not gzip: %v", ErrCorruptIndex, path, err)
	}
	defer zr.Close()

	b, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot decompress %s: %v", ErrCorruptIndex, path, err)
	}
	return b, nil
}

func verifyDigest(what, want string, data []byte) error {
	if want == "" {
		return nil
	}
	if got := Digest(data); got != want {
		return fmt.Errorf("%w: %s digest mismatch: got %s want %s", ErrCorruptIndex, what, got, want)
	}
	return nil
}

// Digest returns the hex BLAKE3-256 digest of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
