package telnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestColorize(t *testing.T) {
	assert.Equal(t, "\033[31mbust\033[0m", Colorize(Red, "bust"))
}

func TestColorf(t *testing.T) {
	assert.Equal(t, "\033[32mtotal: 42\033[0m", Colorf(Green, "total: %d", 42))
}

func TestStripANSI(t *testing.T) {
	input := "\033[31mred\033[0m normal \033[1m\033[32mbold green\033[0m"
	assert.Equal(t, "red normal bold green", StripANSI(input))
	assert.Equal(t, "plain", StripANSI("plain"))
	assert.Equal(t, "", StripANSI(""))
}

func TestPadRight_IgnoresColourAndCountsRunes(t *testing.T) {
	assert.Equal(t, "⚀⚅  ", PadRight("⚀⚅", 4))
	assert.Equal(t, Colorize(Bold, "ab")+"   ", PadRight(Colorize(Bold, "ab"), 5))
	assert.Equal(t, "toolong", PadRight("toolong", 3))
	assert.Equal(t, 2, VisibleWidth(Colorize(Yellow, "⚪⚫")))
}

func TestPropertyStripANSIInversesColorize(t *testing.T) {
	colors := []string{Red, Green, Blue, Yellow, Cyan, Magenta, White, Bold, Dim}
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z0-9 ]{0,50}`).Draw(t, "text")
		color := rapid.SampledFrom(colors).Draw(t, "color")
		assert.Equal(t, text, StripANSI(Colorize(color, text)))
	})
}

func TestPropertyPadRightWidth(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-z⚀⚁⚂⚃⚄⚅]{0,20}`).Draw(t, "text")
		width := rapid.IntRange(0, 30).Draw(t, "width")
		got := VisibleWidth(PadRight(Colorize(Cyan, text), width))
		assert.Equal(t, max(width, VisibleWidth(text)), got)
	})
}

func TestPropertyStripANSIOutputShorterOrEqual(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.String().Draw(t, "text")
		assert.LessOrEqual(t, len(StripANSI(text)), len(text))
	})
}
