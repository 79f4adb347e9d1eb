package index

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/kamusis/iconhash-cli/internal/catalog"
	"github.com/kamusis/iconhash-cli/internal/fingerprint"
)

// Writer accumulates (name, fingerprint) records in order and produces the two
// blobs Load consumes.
type Writer struct {
	names  []string
	hashes []byte
}

// NewWriter returns a Writer with room for n records.
func NewWriter(n int) *Writer {
	return &Writer{
		names:  make([]string, 0, n),
		hashes: make([]byte, 0, n*RecordSize),
	}
}

// Add appends one record. name must be prefix:identifier; surrounding space is
// trimmed.
func (w *Writer) Add(name string, fp fingerprint.Fingerprint) error {
	n, err := catalog.ParseName(name)
	if err != nil {
		return err
	}
	if len(fp) != RecordSize {
		return fmt.Errorf("%w: %s has %d bytes, want %d", fingerprint.ErrLengthMismatch, n, len(fp), RecordSize)
	}
	w.names = append(w.names, n.String())
	w.hashes = append(w.hashes, fp...)
	return nil
}

// Len returns the number of records added so far.
func (w *Writer) Len() int { return len(w.names) }

// Names returns the newline-joined names blob.
func (w *Writer) Names() []byte {
	return []byte(strings.Join(w.names, "\n"))
}

// Hashes returns the concatenated fingerprint blob.
func (w *Writer) Hashes() []byte {
	return w.hashes
}

// WriteDir writes the gzip-compressed names and hashes blobs plus a manifest
// into dir. The blobs are validated with Load first so a corrupt pair is never
// written.
func WriteDir(dir string, namesBlob, hashesBlob []byte) (*Manifest, error) {
	idx, err := Load(namesBlob, hashesBlob)
	if err != nil {
		return nil, err
	}
	if idx.Len() == 0 {
		return nil, fmt.Errorf("no records to write")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create index dir %s: %w", dir, err)
	}

	m := &Manifest{
		IndexVersion: FormatVersion,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		HashSize:     fingerprint.DefaultSize,
		Count:        idx.Len(),
		Sets:         idx.Sets().Len(),
		NamesFile:    NamesFile,
		HashesFile:   HashesFile,
		NamesDigest:  Digest(namesBlob),
		HashesDigest: Digest(hashesBlob),
	}

	if err := writeGzip(filepath.Join(dir, m.NamesFile), namesBlob); err != nil {
		return nil, err
	}
	if err := writeGzip(filepath.Join(dir, m.HashesFile), hashesBlob); err != nil {
		return nil, err
	}

	mb, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), mb, 0o644); err != nil {
		return nil, fmt.Errorf("cannot write manifest: %w", err)
	}
	return m, nil
}

func writeGzip(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	zw, err := gzip.NewWriterLevel(bw, gzip.BestCompression)
	if err != nil {
		_ = f.Close()
		return err
	}
	if _, err := bytes.NewReader(data).WriteTo(zw); err != nil {
		_ = f.Close()
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
