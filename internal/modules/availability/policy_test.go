// README: Location policy tests (no database).
package availability

import (
	"context"
	"testing"
)

func TestTextPolicyMatch(t *testing.T) {
	cases := []struct {
		driver, pickup string
		want           bool
	}{
		// substring in either direction
		{"Tel Aviv", "Tel Aviv, Center", true},
		{"Tel Aviv, Center", "Tel Aviv", true},
		// case-insensitive
		{"tel aviv", "TEL AVIV", true},
		// comma and whitespace normalization
		{"Tel Aviv,Center", "tel aviv center", true},
		{"  Tel   Aviv  ", "Tel Aviv", true},
		// different cities never match
		{"Tel Aviv", "Haifa", false},
		{"Haifa", "Tel Aviv, Center", false},
		// blank never matches
		{"", "Tel Aviv", false},
		{"Tel Aviv", "", false},
	}
	policy := TextPolicy{}
	for _, tc := range cases {
		got := policy.Match(context.Background(), tc.driver, tc.pickup)
		if got != tc.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tc.driver, tc.pickup, got, tc.want)
		}
	}
}

func TestNormalizeLocation(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Tel Aviv, Center", "tel aviv center"},
		{"  HAIFA ", "haifa"},
		{"a,,b", "a b"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := normalizeLocation(tc.in); got != tc.want {
			t.Errorf("normalizeLocation(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
