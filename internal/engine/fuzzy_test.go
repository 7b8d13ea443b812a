package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

var townNames = []string{"home", "Coffee Shop", "Grocery Store", "Chicken Shop", "office"}

func TestResolveBySubstring(t *testing.T) {
	tests := []struct {
		ref  string
		want string
		ok   bool
	}{
		{"chicken shop", "Chicken Shop", true},
		{"CHICKEN", "Chicken Shop", true},
		{"the grocery store downtown", "Grocery Store", true},
		{"coffee", "Coffee Shop", true},
		{"shop", "Coffee Shop", true}, // first match in order
		{"  office ", "office", true},
		{"Uknown Place", "", false},
		{"", "", false},
		{"   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, ok := ResolveBySubstring(tt.ref, townNames)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveBySubstringProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		names := rapid.SliceOfN(rapid.StringMatching(`[a-zA-Z ]{1,12}`), 1, 6).Draw(rt, "names")
		ref := rapid.StringMatching(`[a-zA-Z ]{0,12}`).Draw(rt, "ref")

		got, ok := ResolveBySubstring(ref, names)
		r := strings.ToLower(strings.TrimSpace(ref))
		if r == "" {
			if ok {
				rt.Fatalf("empty reference matched %q", got)
			}
			return
		}
		if !ok {
			for _, n := range names {
				l := strings.ToLower(n)
				if strings.Contains(l, r) || strings.Contains(r, l) {
					rt.Fatalf("%q should match %q", ref, n)
				}
			}
			return
		}
		l := strings.ToLower(got)
		if !strings.Contains(l, r) && !strings.Contains(r, l) {
			rt.Fatalf("%q is not related to %q", got, ref)
		}
	})
}
