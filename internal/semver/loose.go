package semver

import (
	"regexp"
	"strings"
)

// Loose comparison handles the version strings found in distribution
// manifests, which are frequently not valid semantic versions:
//
//	11.2.10
//	10.10-HF01
//	2021.1-SNAPSHOT
//
// The accepted shape is digits[.digits[.digits]][-marker][trailing-digits].
var reLoose = regexp.MustCompile(`^(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:-([A-Za-z][A-Za-z_]*))?(\d+)?$`)

type looseVersion struct {
	segments [3]string
	marker   string
	trailing string
}

func parseLoose(raw string) (looseVersion, bool) {
	m := reLoose.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return looseVersion{}, false
	}
	return looseVersion{
		segments: [3]string{m[1], m[2], m[3]},
		marker:   m[4],
		trailing: m[5],
	}, true
}

// CompareLoose orders two optional version strings. A nil version sorts
// before any non-nil one. It never fails: see CompareLooseStrings for the
// handling of strings that do not match the loose version shape.
func CompareLoose(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return CompareLooseStrings(*a, *b)
}

// CompareLooseStrings returns -1, 0 or 1.
//
// Numeric segments compare numerically and a present segment outranks an
// absent one. A marker suffix makes a version lower than the same version
// without one; two markers compare lexicographically.
//
// Strings that cannot be parsed sort after every parsable version and
// compare lexicographically among themselves, which keeps the order total
// and transitive over mixed input.
func CompareLooseStrings(a, b string) int {
	va, okA := parseLoose(a)
	vb, okB := parseLoose(b)
	switch {
	case !okA && !okB:
		return strings.Compare(a, b)
	case !okA:
		return 1
	case !okB:
		return -1
	}

	for i := range va.segments {
		if c := comparePresentNumeric(va.segments[i], vb.segments[i]); c != 0 {
			return c
		}
	}

	switch {
	case va.marker != "" && vb.marker != "":
		if c := strings.Compare(va.marker, vb.marker); c != 0 {
			return c
		}
	case va.marker != "":
		return -1
	case vb.marker != "":
		return 1
	}

	return comparePresentNumeric(va.trailing, vb.trailing)
}

// LatestLoose returns the highest version in candidates, or "" when empty.
// If multiple versions compare equal, the first encountered wins.
func LatestLoose(candidates []string) string {
	best := ""
	found := false
	for _, candidate := range candidates {
		if !found || CompareLooseStrings(candidate, best) > 0 {
			best = candidate
			found = true
		}
	}
	return best
}

func comparePresentNumeric(a, b string) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	}
	return compareDigits(a, b)
}

// compareDigits compares two decimal digit strings of arbitrary length.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
