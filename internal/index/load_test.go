package index

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kamusis/iconhash-cli/internal/catalog"
	"github.com/kamusis/iconhash-cli/internal/fingerprint"
)

func record(b byte) fingerprint.Fingerprint {
	return fingerprint.Fingerprint(bytes.Repeat([]byte{b}, RecordSize))
}

func TestLoad_HappyPath(t *testing.T) {
	names := []byte("mdi:home\ntabler:home\n\nMDI:cat\n\n")
	hashes := append(append(append([]byte{}, record(1)...), record(2)...), record(3)...)

	idx, err := Load(names, hashes)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if idx.Len() != 3 {
		t.Fatalf("Len = %d, want 3", idx.Len())
	}
	if idx.Name(2) != "MDI:cat" {
		t.Fatalf("Name(2) = %q", idx.Name(2))
	}
	if got := idx.FingerprintAt(1); got[0] != 2 || got[RecordSize-1] != 2 || len(got) != RecordSize {
		t.Fatalf("FingerprintAt(1) wrong: %v", got[:4])
	}
	if idx.Set(0) != idx.Set(2) {
		t.Fatalf("mdi and MDI should share a set")
	}
	if idx.Set(0) == idx.Set(1) {
		t.Fatalf("mdi and tabler share a set")
	}
	if idx.Sets().Len() != 2 {
		t.Fatalf("Sets().Len() = %d", idx.Sets().Len())
	}
	if i, ok := idx.Lookup("tabler:home"); !ok || i != 1 {
		t.Fatalf("Lookup = %d, %v", i, ok)
	}
}

func TestLoad_LookupIgnoresCase(t *testing.T) {
	idx, err := Load([]byte("mdi:home\nMDI:Home\nph:Cat"), append(append(append([]byte{}, record(1)...), record(2)...), record(3)...))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, tc := range []struct {
		query string
		want  int
	}{
		{"MDI:Home", 0},
		{"mdi:HOME", 0},
		{" ph:cat ", 2},
		{"PH:CAT", 2},
	} {
		if i, ok := idx.Lookup(tc.query); !ok || i != tc.want {
			t.Fatalf("Lookup(%q) = %d, %v, want %d", tc.query, i, ok, tc.want)
		}
	}
	if _, ok := idx.Lookup("mdi:cat"); ok {
		t.Fatalf("Lookup(mdi:cat) found a record")
	}
}

func TestLoad_CRLF(t *testing.T) {
	idx, err := Load([]byte("a:b\r\nc:d\r\n"), append(record(0), record(1)...))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if idx.Name(0) != "a:b" || idx.Name(1) != "c:d" {
		t.Fatalf("names not trimmed: %q %q", idx.Name(0), idx.Name(1))
	}
}

func TestLoad_LengthMismatchIsCorrupt(t *testing.T) {
	cases := map[string][]byte{
		"short": record(1)[:RecordSize-1],
		"extra": append(record(1), record(2)...),
		"empty": nil,
	}
	for name, hashes := range cases {
		_, err := Load([]byte("mdi:home\n"), hashes)
		if !errors.Is(err, ErrCorruptIndex) {
			t.Fatalf("%s: got %v, want ErrCorruptIndex", name, err)
		}
	}
}

func TestLoad_Empty(t *testing.T) {
	idx, err := Load(nil, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if idx.Len() != 0 {
		t.Fatalf("Len = %d", idx.Len())
	}
}

func TestWriter_RoundTrip(t *testing.T) {
	w := NewWriter(2)
	if err := w.Add("mdi:home", record(7)); err != nil {
		t.Fatal(err)
	}
	if err := w.Add("ph:cat", record(9)); err != nil {
		t.Fatal(err)
	}
	if string(w.Names()) != "mdi:home\nph:cat" {
		t.Fatalf("Names() = %q", w.Names())
	}
	idx, err := Load(w.Names(), w.Hashes())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if idx.Len() != 2 || idx.Name(1) != "ph:cat" || idx.FingerprintAt(1)[5] != 9 {
		t.Fatalf("round trip mismatch")
	}
}

func TestWriter_Rejects(t *testing.T) {
	w := NewWriter(0)
	if err := w.Add("mdi:home", record(1)[:10]); !errors.Is(err, fingerprint.ErrLengthMismatch) {
		t.Fatalf("short fingerprint: %v", err)
	}
	for _, name := range []string{"a:b\nc:d", "no colon here!", "home", ":home", "mdi:", "mdi:home:extra", ""} {
		if err := w.Add(name, record(1)); !errors.Is(err, catalog.ErrInvalidName) {
			t.Fatalf("Add(%q) = %v, want ErrInvalidName", name, err)
		}
	}
	if w.Len() != 0 {
		t.Fatalf("rejected records were kept")
	}
}

func TestWriteDir_LoadDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")
	w := NewWriter(3)
	for i, n := range []string{"mdi:a", "mdi:b", "lucide:c"} {
		if err := w.Add(n, record(byte(i))); err != nil {
			t.Fatal(err)
		}
	}
	m, err := WriteDir(dir, w.Names(), w.Hashes())
	if err != nil {
		t.Fatalf("WriteDir: %v", err)
	}
	if m.Count != 3 || m.Sets != 2 || m.HashSize != fingerprint.DefaultSize {
		t.Fatalf("manifest: %+v", m)
	}

	idx, got, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if got == nil || got.NamesDigest != m.NamesDigest {
		t.Fatalf("manifest not read back: %+v", got)
	}
	if idx.Len() != 3 || idx.Name(2) != "lucide:c" || idx.FingerprintAt(2)[0] != 2 {
		t.Fatalf("LoadDir content mismatch")
	}
}

func TestLoadDir_WithoutManifest(t *testing.T) {
	dir := t.TempDir()
	if err := writeGzip(filepath.Join(dir, NamesFile), []byte("mdi:a\n")); err != nil {
		t.Fatal(err)
	}
	if err := writeGzip(filepath.Join(dir, HashesFile), record(4)); err != nil {
		t.Fatal(err)
	}
	idx, m, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if m != nil {
		t.Fatalf("unexpected manifest")
	}
	if idx.Len() != 1 {
		t.Fatalf("Len = %d", idx.Len())
	}
}

func TestLoadDir_DigestMismatch(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(1)
	_ = w.Add("mdi:a", record(1))
	if _, err := WriteDir(dir, w.Names(), w.Hashes()); err != nil {
		t.Fatal(err)
	}
	// Replace the hashes with a same-length but different payload.
	if err := writeGzip(filepath.Join(dir, HashesFile), record(2)); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadDir(dir); !errors.Is(err, ErrCorruptIndex) {
		t.Fatalf("got %v, want ErrCorruptIndex", err)
	}
}

func TestLoadDir_NotGzip(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, NamesFile), []byte("mdi:a\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := writeGzip(filepath.Join(dir, HashesFile), record(1)); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadDir(dir); !errors.Is(err, ErrCorruptIndex) {
		t.Fatalf("got %v, want ErrCorruptIndex", err)
	}
}

func TestWriteDir_RejectsCorruptPair(t *testing.T) {
	if _, err := WriteDir(t.TempDir(), []byte("mdi:a\nmdi:b"), record(1)); !errors.Is(err, ErrCorruptIndex) {
		t.Fatalf("got %v, want ErrCorruptIndex", err)
	}
}
