// Package catalog handles icon names of the form prefix:identifier and the
// icon sets (prefixes) they belong to.
package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kamusis/iconhash-cli/internal/fingerprint"
)

// ErrInvalidName indicates a name that is not of the form prefix:identifier.
var ErrInvalidName = fmt.Errorf("%w: invalid icon name", fingerprint.ErrValidation)

var namePattern = regexp.MustCompile(`(?i)^[a-z0-9-]+:[a-z0-9-]+$`)

// Name is a parsed catalog name.
type Name struct {
	Prefix     string
	Identifier string
}

// String returns prefix:identifier.
func (n Name) String() string {
	return n.Prefix + ":" + n.Identifier
}

// ParseName validates and splits a prefix:identifier name.
func ParseName(s string) (Name, error) {
	s = strings.TrimSpace(s)
	if !namePattern.MatchString(s) {
		return Name{}, fmt.Errorf("%w: %q (expected prefix:identifier)", ErrInvalidName, s)
	}
	i := strings.IndexByte(s, ':')
	return Name{Prefix: s[:i], Identifier: s[i+1:]}, nil
}

// IsName reports whether s is a valid prefix:identifier name.
func IsName(s string) bool {
	return namePattern.MatchString(strings.TrimSpace(s))
}

// PrefixOf returns the part of name before the first colon, or the whole name
// when it has none. It does not validate.
func PrefixOf(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i]
	}
	return name
}
