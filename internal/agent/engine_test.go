package agent

import (
	"testing"
	"unicode/utf8"
)

func TestTruncatePreservesRuneBoundaries(t *testing.T) {
	tests := []struct {
		s        string
		n        int
		expected string
	}{
		{"ação", 2, "a"},
		{"médico", 2, "m"},
		{"cirurgia", 4, "ciru"},
		{"sonda", 10, "sonda"},
		{"", 5, ""},
	}

	for _, test := range tests {
		got := truncate(test.s, test.n)
		if got != test.expected {
			t.Errorf("truncate(%q, %d) = %q, expected %q", test.s, test.n, got, test.expected)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8", test.s, test.n)
		}
	}
}
