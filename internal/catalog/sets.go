package catalog

import "golang.org/x/text/cases"

// SetID identifies an icon set within one index. IDs are dense, starting at 0,
// in order of first appearance.
type SetID uint32

// Sets interns icon-set prefixes. Prefixes are compared after Unicode case
// folding, so "MDI" and "mdi" are the same set.
//
// Intern is not safe for concurrent use; once populated, Lookup and Mask may be
// called from any number of goroutines.
type Sets struct {
	ids   map[string]SetID
	names []string
	fold  cases.Caser
}

// NewSets returns an empty set table.
func NewSets() *Sets {
	return &Sets{ids: map[string]SetID{}, fold: cases.Fold()}
}

// Fold returns the canonical (case-folded) form of a prefix or a full name.
func Fold(prefix string) string {
	return cases.Fold().String(prefix)
}

// Intern returns the ID for prefix, allocating one on first sight.
func (s *Sets) Intern(prefix string) SetID {
	key := s.fold.String(prefix)
	if id, ok := s.ids[key]; ok {
		return id
	}
	id := SetID(len(s.names))
	s.ids[key] = id
	s.names = append(s.names, prefix)
	return id
}

// Lookup returns the ID of prefix if it is known.
func (s *Sets) Lookup(prefix string) (SetID, bool) {
	id, ok := s.ids[Fold(prefix)]
	return id, ok
}

// Len returns the number of distinct sets.
func (s *Sets) Len() int {
	return len(s.names)
}

// Name returns the prefix as first seen for id.
func (s *Sets) Name(id SetID) string {
	if int(id) >= len(s.names) {
		return ""
	}
	return s.names[id]
}

// Mask returns a table indexed by SetID that is true for every set listed in
// prefixes. Unknown prefixes are ignored. A nil result means no prefixes were
// given.
func (s *Sets) Mask(prefixes []string) []bool {
	if len(prefixes) == 0 {
		return nil
	}
	mask := make([]bool, len(s.names))
	for _, p := range prefixes {
		if id, ok := s.Lookup(p); ok {
			mask[id] = true
		}
	}
	return mask
}
