package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "Best Brew Ever", NormalizeTitle("\n  Best Brew Ever  \n"))
	assert.Equal(t, "", NormalizeTitle("   "))
}

func TestSplitCaptions(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"single", "Coffee first.", []string{"Coffee first."}},
		{"trims lines", "  one  \n two\t", []string{"one", "two"}},
		{"crlf", "one\r\ntwo\r\n", []string{"one", "two"}},
		{"blank lines dropped", "one\n\n\ntwo", []string{"one", "two"}},
		{"empty", "", []string{}},
		{"whitespace only", " \n \n", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SplitCaptions(tc.raw))
		})
	}
}

func TestSplitHashtags(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"plain", "coffee morning", []string{"coffee", "morning"}},
		{"hashes stripped", "#coffee #morning", []string{"coffee", "morning"}},
		{"mixed separators", "#coffee\n#morning\t##brew", []string{"coffee", "morning", "brew"}},
		{"lone hash", "coffee # morning", []string{"coffee", "morning"}},
		{"empty", "", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitHashtags(tc.raw)
			assert.Equal(t, tc.want, got)
			for _, tag := range got {
				assert.False(t, strings.ContainsRune(tag, '#'))
			}
		})
	}
}
