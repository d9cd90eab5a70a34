// Package version compares dotted numeric release versions.
package version

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Parts is the ordered list of numeric segments of a normalized version.
type Parts []int

// Scheme selects the ordering used by a Comparator.
type Scheme string

const (
	// SchemeLoose strips everything but digits and dots, then compares
	// segment by segment. Pre-release qualifiers are discarded.
	SchemeLoose Scheme = "loose"

	// SchemeSemver orders versions by semantic-version precedence.
	SchemeSemver Scheme = "semver"
)

// ParseScheme maps a config value to a Scheme. Unknown values fall back to
// SchemeLoose.
func ParseScheme(s string) Scheme {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case SchemeSemver:
		return SchemeSemver
	default:
		return SchemeLoose
	}
}

// Normalize trims s, strips one leading "v" or "V" and drops every
// character that is not a digit or a dot.
//
//	Normalize("v1.2.3-beta") == "1.2.3"
//	Normalize("  v2.0 ")     == "2.0"
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 0 && (s[0] == 'v' || s[0] == 'V') {
		s = s[1:]
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Split parses an already normalized version into numeric segments.
// Empty segments are skipped, unparseable ones count as 0 and segments
// too large for an int saturate at math.MaxInt.
func Split(normalized string) Parts {
	var parts Parts
	for _, seg := range strings.Split(normalized, ".") {
		if seg == "" {
			continue
		}
		n, err := strconv.Atoi(seg)
		switch {
		case errors.Is(err, strconv.ErrRange):
			n = math.MaxInt
		case err != nil || n < 0:
			n = 0
		}
		parts = append(parts, n)
	}
	return parts
}

// Parse is Split(Normalize(s)).
func Parse(s string) Parts {
	return Split(Normalize(s))
}

// At returns segment i, or 0 past the end.
func (p Parts) At(i int) int {
	if i < len(p) {
		return p[i]
	}
	return 0
}

// Compare returns 1 if a is newer than b, -1 if older and 0 if both are
// equal after zero padding.
func Compare(a, b string) int {
	pa, pb := Parse(a), Parse(b)

	n := len(pa)
	if len(pb) > n {
		n = len(pb)
	}
	for i := 0; i < n; i++ {
		av, bv := pa.At(i), pb.At(i)
		if av > bv {
			return 1
		}
		if av < bv {
			return -1
		}
	}
	return 0
}

// IsNewer reports whether latest is strictly newer than current.
// Equal versions are not newer.
func IsNewer(latest, current string) bool {
	return Compare(latest, current) > 0
}

// Equal reports whether a and b normalize to the same segments.
func Equal(a, b string) bool {
	return Compare(a, b) == 0
}

// Comparator applies a Scheme.
type Comparator struct {
	Scheme Scheme
}

// NewComparator returns a Comparator for scheme.
func NewComparator(scheme Scheme) Comparator {
	return Comparator{Scheme: scheme}
}

// IsNewer reports whether latest is strictly newer than current under the
// comparator's scheme. Under SchemeSemver, inputs that are not valid
// semantic versions fall back to the loose ordering.
func (c Comparator) IsNewer(latest, current string) bool {
	if c.Scheme == SchemeSemver {
		l, cur := canonicalSemver(latest), canonicalSemver(current)
		if semver.IsValid(l) && semver.IsValid(cur) {
			return semver.Compare(l, cur) > 0
		}
	}
	return IsNewer(latest, current)
}

func canonicalSemver(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "v"), "V")
	return "v" + s
}
