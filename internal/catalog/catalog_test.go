package catalog

import (
	"errors"
	"testing"

	"github.com/kamusis/iconhash-cli/internal/fingerprint"
)

func TestParseName(t *testing.T) {
	n, err := ParseName("mdi:home-outline")
	if err != nil {
		t.Fatalf("ParseName: %v", err)
	}
	if n.Prefix != "mdi" || n.Identifier != "home-outline" {
		t.Fatalf("unexpected split: %+v", n)
	}
	if n.String() != "mdi:home-outline" {
		t.Fatalf("String() = %q", n.String())
	}
	if _, err := ParseName("Fluent-Emoji:Cat"); err != nil {
		t.Fatalf("mixed case rejected: %v", err)
	}
}

func TestParseName_Invalid(t *testing.T) {
	for _, s := range []string{"", "home", "mdi:", ":home", "a:b:c", "mdi:home_outline", "../x:y", "mdi home"} {
		_, err := ParseName(s)
		if !errors.Is(err, ErrInvalidName) {
			t.Fatalf("ParseName(%q) = %v, want ErrInvalidName", s, err)
		}
		if !errors.Is(err, fingerprint.ErrValidation) {
			t.Fatalf("ParseName(%q) error is not a validation error", s)
		}
		if IsName(s) {
			t.Fatalf("IsName(%q) = true", s)
		}
	}
}

func TestPrefixOf(t *testing.T) {
	cases := map[string]string{
		"mdi:home":  "mdi",
		"a:b:c":     "a",
		"noprefix":  "noprefix",
		":leading":  "",
		"tabler:x-": "tabler",
	}
	for in, want := range cases {
		if got := PrefixOf(in); got != want {
			t.Fatalf("PrefixOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSets_InternFoldsCase(t *testing.T) {
	s := NewSets()
	a := s.Intern("mdi")
	b := s.Intern("tabler")
	c := s.Intern("MDI")
	if a != c {
		t.Fatalf("MDI and mdi got different ids: %d %d", a, c)
	}
	if a == b {
		t.Fatalf("distinct prefixes share an id")
	}
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if s.Name(a) != "mdi" || s.Name(b) != "tabler" {
		t.Fatalf("names: %q %q", s.Name(a), s.Name(b))
	}
	if id, ok := s.Lookup("Tabler"); !ok || id != b {
		t.Fatalf("Lookup(Tabler) = %d, %v", id, ok)
	}
	if _, ok := s.Lookup("ph"); ok {
		t.Fatalf("Lookup of unknown prefix succeeded")
	}
}

func TestSets_Mask(t *testing.T) {
	s := NewSets()
	mdi := s.Intern("mdi")
	tabler := s.Intern("tabler")
	ph := s.Intern("ph")

	if m := s.Mask(nil); m != nil {
		t.Fatalf("Mask(nil) = %v, want nil", m)
	}
	m := s.Mask([]string{"MDI", "ph", "unknown"})
	if len(m) != 3 {
		t.Fatalf("mask len = %d", len(m))
	}
	if !m[mdi] || m[tabler] || !m[ph] {
		t.Fatalf("unexpected mask %v", m)
	}
}
