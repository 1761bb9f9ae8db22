package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHelpers(t *testing.T) {
	assert.Contains(t, FormatSuccess("done"), "done")
	assert.Contains(t, FormatError("failed"), ErrorIcon)
	assert.Contains(t, FormatWarning("careful"), "careful")
	assert.Contains(t, FormatInfo("note"), "note")
	assert.Contains(t, FormatTitle("Labels"), "Labels")
	assert.Contains(t, FormatPrompt("Choice"), "→")
	assert.Contains(t, RenderBox("Summary", "3 files"), "3 files")
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(
		[]string{"BOX", "FOLDER", "TITLE"},
		[][]string{
			{"1", "1", "Letters"},
			{"1", "2", "A very long folder title that keeps going"},
			{"2"},
		},
		12,
	)

	lines := strings.Split(out, "\n")
	assert.GreaterOrEqual(t, len(lines), 4)
	assert.Contains(t, out, "BOX")
	assert.Contains(t, out, "Letters")
	assert.Contains(t, out, "A very long…")
	assert.NotContains(t, out, "keeps going")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 0))
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab…", truncate("abcd", 3))
	assert.Equal(t, "…", truncate("abcd", 1))
}
