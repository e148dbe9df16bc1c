package instapdf

import (
	"strconv"
	"strings"
)

// ReadPathPrefix is the path prefix of article references on the listing page.
const ReadPathPrefix = "/read/"

// Anchors reserved by the assembled document.
const (
	TOCAnchor     = "TOC"
	HeadingAnchor = "heading"
)

// fallbackAnchor is used when a reference sanitizes to nothing.
const fallbackAnchor = "article"

// Anchor is an identifier allocated for one listing. It is safe to use as an
// HTML id attribute, a URL fragment, and a file name stem.
type Anchor struct {
	ID string

	// Fallback is set when the reference did not carry the expected prefix
	// and the raw reference was used instead.
	Fallback bool

	// Sanitized is set when characters of the reference had to be replaced.
	Sanitized bool

	// Duplicate is set when a numeric suffix was added to keep IDs unique.
	Duplicate bool
}

// Anomalous reports whether the allocation deviated from the expected scheme.
func (a Anchor) Anomalous() bool {
	return a.Fallback || a.Sanitized || a.Duplicate
}

// AnchorAllocator assigns unique, URL-safe identifiers to listings.
// A new allocator must be used for every document.
type AnchorAllocator struct {
	prefix string
	used   map[string]bool
}

// NewAnchorAllocator returns an allocator that strips prefix from references.
func NewAnchorAllocator(prefix string) *AnchorAllocator {
	return &AnchorAllocator{
		prefix: prefix,
		used: map[string]bool{
			TOCAnchor:     true,
			HeadingAnchor: true,
		},
	}
}

// Allocate derives an identifier from the listing reference.
func (a *AnchorAllocator) Allocate(listing ArticleListing) Anchor {
	var anchor Anchor

	raw := listing.Reference
	if len(raw) > len(a.prefix) && strings.HasPrefix(raw, a.prefix) {
		raw = raw[len(a.prefix):]
	} else {
		anchor.Fallback = true
	}

	id := SanitizeID(raw)
	if id != raw {
		anchor.Sanitized = true
	}
	if id == "" {
		id = fallbackAnchor
	}

	// Handle duplicates
	base := id
	for n := 2; a.used[id]; n++ {
		id = base + "-" + strconv.Itoa(n)
		anchor.Duplicate = true
	}
	a.used[id] = true

	anchor.ID = id
	return anchor
}

// SanitizeID maps s onto the identifier alphabet [A-Za-z0-9_-].
// Runs of other characters collapse to a single hyphen and leading or
// trailing hyphens are trimmed.
func SanitizeID(s string) string {
	var sb strings.Builder
	prevHyphen := false

	for _, r := range s {
		if isIDRune(r) && r != '-' {
			sb.WriteRune(r)
			prevHyphen = false
		} else if !prevHyphen && sb.Len() > 0 {
			sb.WriteRune('-')
			prevHyphen = true
		}
	}

	return strings.TrimSuffix(sb.String(), "-")
}

// IsSafeID reports whether id is non-empty and only uses the identifier alphabet.
func IsSafeID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if !isIDRune(r) {
			return false
		}
	}
	return true
}

func isIDRune(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '-' || r == '_'
}
