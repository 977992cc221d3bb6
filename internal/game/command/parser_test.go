package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Line
	}{
		{"", Line{}},
		{"   /  ", Line{}},
		{"roll", Line{Name: "roll"}},
		{"HOLD", Line{Name: "hold"}},
		{"/play pig", Line{Name: "play", Args: []string{"pig"}}},
		{"!r", Line{Name: "r"}},
		{"rounds 4", Line{Name: "rounds", Args: []string{"4"}}},
		{"  play   black   white  ", Line{Name: "play", Args: []string{"black", "white"}}},
		{"dice\t6", Line{Name: "dice", Args: []string{"6"}}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Parse(tt.in), "input %q", tt.in)
	}
}

func TestPropertyParse_NameIsLowercaseFirstWord(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[A-Za-z]{1,20}`).Draw(t, "word")
		args := rapid.SliceOfN(rapid.StringMatching(`[a-z0-9]{1,6}`), 0, 4).Draw(t, "args")
		prefix := rapid.SampledFrom([]string{"", "/", "!", "  "}).Draw(t, "prefix")

		l := Parse(prefix + word + " " + strings.Join(args, "  "))
		if l.Name != strings.ToLower(word) {
			t.Fatalf("name %q, want %q", l.Name, strings.ToLower(word))
		}
		if len(l.Args) != len(args) {
			t.Fatalf("args %v, want %v", l.Args, args)
		}
	})
}
