package semver

import (
	"sort"
	"testing"
)

func strptr(s string) *string { return &s }

func TestCompareLooseStrings(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"11.2.3", "11.2.10", -1},
		{"1.0", "1.0", 0},
		{"1.0.1", "1.0", 1},
		{"1.0", "1.0.0", -1},
		{"2", "10", -1},
		{"1.0-SNAPSHOT", "1.0", -1},
		{"1.0", "1.0-SNAPSHOT", 1},
		{"1.0-RC", "1.0-SNAPSHOT", -1},
		{"10.10-HF01", "10.10-HF02", -1},
		{"10.10-HF1", "10.10-HF01", 0},
		{"10.10-HF09", "10.10-HF10", -1},
		{"99999999999999999999", "100000000000000000000", -1},
		{"not-a-version", "1.0", 1},
		{"1.0", "not-a-version", -1},
		{"abc", "abd", -1},
	}
	for _, tc := range cases {
		if got := CompareLooseStrings(tc.a, tc.b); got != tc.want {
			t.Fatalf("CompareLooseStrings(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestCompareLoose_Nil(t *testing.T) {
	if CompareLoose(nil, strptr("1.0")) >= 0 {
		t.Fatalf("expected nil to sort before 1.0")
	}
	if CompareLoose(strptr("1.0"), nil) <= 0 {
		t.Fatalf("expected 1.0 to sort after nil")
	}
	if CompareLoose(nil, nil) != 0 {
		t.Fatalf("expected nil == nil")
	}
}

var looseSamples = []string{
	"1", "1.0", "1.0.0", "1.0.1", "1.2", "1.10", "2.0", "10.0", "9.0",
	"1.0-SNAPSHOT", "1.0-RC", "1.0-RC2", "1.0-RC10", "2021.1-HF01", "2021.1",
	"1x", "9.x", "abc", "", "10.10-HF1", "10.10-HF01", "0.0.0", "7.10.2",
}

func TestCompareLoose_Antisymmetric(t *testing.T) {
	for _, a := range looseSamples {
		for _, b := range looseSamples {
			ab := CompareLooseStrings(a, b)
			ba := CompareLooseStrings(b, a)
			if ab != -ba {
				t.Fatalf("antisymmetry broken for %q/%q: %d vs %d", a, b, ab, ba)
			}
		}
	}
}

func TestCompareLoose_Transitive(t *testing.T) {
	for _, a := range looseSamples {
		for _, b := range looseSamples {
			for _, c := range looseSamples {
				if CompareLooseStrings(a, b) <= 0 && CompareLooseStrings(b, c) <= 0 {
					if CompareLooseStrings(a, c) > 0 {
						t.Fatalf("transitivity broken: %q <= %q <= %q but %q > %q", a, b, c, a, c)
					}
				}
			}
		}
	}
}

func TestCompareLoose_SortIsDeterministic(t *testing.T) {
	first := append([]string(nil), looseSamples...)
	second := append([]string(nil), looseSamples...)
	for i, j := 0, len(second)-1; i < j; i, j = i+1, j-1 {
		second[i], second[j] = second[j], second[i]
	}
	sort.SliceStable(first, func(i, j int) bool { return CompareLooseStrings(first[i], first[j]) < 0 })
	sort.SliceStable(second, func(i, j int) bool { return CompareLooseStrings(second[i], second[j]) < 0 })
	for i := range first {
		if CompareLooseStrings(first[i], second[i]) != 0 {
			t.Fatalf("sort results differ at %d: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestLatestLoose(t *testing.T) {
	if got := LatestLoose([]string{"11.2.3", "11.2.10", "11.2.10-SNAPSHOT"}); got != "11.2.10" {
		t.Fatalf("expected 11.2.10, got %q", got)
	}
	if got := LatestLoose(nil); got != "" {
		t.Fatalf("expected empty latest, got %q", got)
	}
}
