package index

import (
	"strings"

	"github.com/kamusis/iconhash-cli/internal/catalog"
	"github.com/kamusis/iconhash-cli/internal/fingerprint"
)

// RecordSize is the byte width of one fingerprint record.
const RecordSize = fingerprint.Len

// FormatVersion is written to the manifest of every index this package builds.
const FormatVersion = 1

// Artifact file names inside an index directory.
const (
	NamesFile    = "names.txt.gz"
	HashesFile   = "hashes.bin.gz"
	ManifestFile = "index_manifest.json"
)

// Manifest describes an index directory. It is optional: the two blobs are
// self-sufficient, the manifest only adds provenance and content digests.
type Manifest struct {
	IndexVersion int    `json:"index_version"`
	CreatedAt    string `json:"created_at"`
	HashSize     int    `json:"hash_size"`
	Count        int    `json:"count"`
	Sets         int    `json:"sets"`
	NamesFile    string `json:"names_file"`
	HashesFile   string `json:"hashes_file"`
	NamesDigest  string `json:"names_blake3"`
	HashesDigest string `json:"hashes_blake3"`
}

// Index is a loaded, immutable icon index. It is safe for concurrent readers.
type Index struct {
	names  []string
	hashes []byte
	sets   []catalog.SetID
	table  *catalog.Sets
	byName map[string]int
}

// Len returns the number of records.
func (x *Index) Len() int { return len(x.names) }

// Name returns the name of record i.
func (x *Index) Name(i int) string { return x.names[i] }

// Set returns the icon set of record i.
func (x *Index) Set(i int) catalog.SetID { return x.sets[i] }

// Sets returns the set table of this index.
func (x *Index) Sets() *catalog.Sets { return x.table }

// Hashes returns the packed fingerprint buffer. Callers must not modify it.
func (x *Index) Hashes() []byte { return x.hashes }

// FingerprintAt returns record i's fingerprint as a sub-slice of the packed
// buffer. Callers must not modify it.
func (x *Index) FingerprintAt(i int) fingerprint.Fingerprint {
	off := i * RecordSize
	return fingerprint.Fingerprint(x.hashes[off : off+RecordSize : off+RecordSize])
}

// Lookup returns the record index of name. Names compare case-insensitively;
// the first record wins when folded names collide.
func (x *Index) Lookup(name string) (int, bool) {
	i, ok := x.byName[catalog.Fold(strings.TrimSpace(name))]
	return i, ok
}
