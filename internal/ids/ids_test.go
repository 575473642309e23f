package ids

import (
	"strings"
	"testing"
)

func TestNext(t *testing.T) {
	cases := []struct {
		last, prefix, want string
	}{
		{"", "BH", "BH001"},
		{"BH001", "BH", "BH002"},
		{"BH002", "BH", "BH003"},
		{"BH009", "BH", "BH010"},
		{"BH999", "BH", "BH1000"},
		{"BH0009", "BH", "BH0010"},
		{"bd041", "BD", "BD042"},
		{"BHXYZ", "BH", "BH001"},
		{"ND12", "ND", "ND013"},
	}
	for _, tc := range cases {
		if got := Next(tc.last, tc.prefix); got != tc.want {
			t.Fatalf("Next(%q,%q)=%q want %q", tc.last, tc.prefix, got, tc.want)
		}
	}
}

func TestRandom_LengthAndPrefix(t *testing.T) {
	for _, prefix := range []string{"CHD", "CHN", "DA", ""} {
		id := Random(prefix)
		if len(id) != RandomLength {
			t.Fatalf("Random(%q)=%q has length %d", prefix, id, len(id))
		}
		want := prefix
		if want == "" {
			want = "CH"
		}
		if !strings.HasPrefix(id, want) {
			t.Fatalf("Random(%q)=%q lacks prefix", prefix, id)
		}
		if strings.ToUpper(id) != id {
			t.Fatalf("Random(%q)=%q is not uppercase", prefix, id)
		}
	}
}

func TestRandom_LongPrefix(t *testing.T) {
	id := Random("ABCDEFGHIJKLMN")
	if len(id) != RandomLength {
		t.Fatalf("unexpected length %d for %q", len(id), id)
	}
	if !strings.HasPrefix(id, "ABCDEFGHI") {
		t.Fatalf("unexpected prefix in %q", id)
	}
}

func TestRandom_Distinct(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id := Random(PrefixReadingQuestion)
		if seen[id] {
			t.Fatalf("duplicate id %q after %d draws", id, i)
		}
		seen[id] = true
	}
}
