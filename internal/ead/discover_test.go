package ead

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/labelgene/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string, modTime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
	return path
}

func TestLooksLikeEAD(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "bare root", input: "<?xml version=\"1.0\"?>\n<ead>\n", want: true},
		{name: "root with attributes", input: "<ead xmlns=\"urn:isbn:1-931666-22-9\">", want: true},
		{name: "prefixed root", input: "<ead:ead xmlns:ead=\"urn:isbn:1-931666-22-9\">", want: true},
		{name: "other schema", input: "<?xml version=\"1.0\"?>\n<mods>\n", want: false},
		{name: "ead element too deep", input: strings.Repeat("<!-- filler -->\n", 12) + "<ead>", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, looksLikeEAD(strings.NewReader(tt.input)))
		})
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	older := writeFile(t, dir, "chopin.xml", sampleEAD, now.Add(-2*time.Hour))
	newer := writeFile(t, dir, "garnier.XML", sampleEAD, now.Add(-time.Hour))
	writeFile(t, dir, "chopin_sanitized.xml", sampleEAD, now)
	writeFile(t, dir, "mods.xml", "<mods/>", now)
	writeFile(t, dir, "notes.txt", sampleEAD, now)
	writeFile(t, dir, "nested/deep.xml", sampleEAD, now)

	files, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{newer, older}, files)
}

func TestDiscover_NoEADFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mods.xml", "<mods/>", time.Now())

	_, err := Discover(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoEADFiles)

	var userErr *common.UserError
	assert.ErrorAs(t, err, &userErr)
}

func TestDiscover_MissingDirectory(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestImportRecent(t *testing.T) {
	downloads := t.TempDir()
	work := t.TempDir()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	writeFile(t, downloads, "fresh.xml", sampleEAD, now.Add(-2*time.Hour))
	writeFile(t, downloads, "stale.xml", sampleEAD, now.Add(-48*time.Hour))
	writeFile(t, downloads, "fresh.pdf", "pdf", now.Add(-time.Hour))

	copied, err := ImportRecent(downloads, work, 24*time.Hour, now)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(work, "fresh.xml")}, copied)

	content, err := os.ReadFile(copied[0])
	require.NoError(t, err)
	assert.Equal(t, sampleEAD, string(content))

	info, err := os.Stat(copied[0])
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(now.Add(-2*time.Hour)))
}

func TestImportRecent_SourceIsDestination(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		setup func(t *testing.T) (src, dst string)
	}{
		{
			name: "same directory",
			setup: func(t *testing.T) (string, string) {
				dir := t.TempDir()
				writeFile(t, dir, "fresh.xml", sampleEAD, now.Add(-time.Hour))
				return dir, dir
			},
		},
		{
			name: "directory reached through a symlink",
			setup: func(t *testing.T) (string, string) {
				dir := t.TempDir()
				writeFile(t, dir, "fresh.xml", sampleEAD, now.Add(-time.Hour))
				link := filepath.Join(t.TempDir(), "work")
				if err := os.Symlink(dir, link); err != nil {
					t.Skipf("symlinks unavailable: %v", err)
				}
				return dir, link
			},
		},
		{
			name: "destination hard linked to source",
			setup: func(t *testing.T) (string, string) {
				src, dst := t.TempDir(), t.TempDir()
				path := writeFile(t, src, "fresh.xml", sampleEAD, now.Add(-time.Hour))
				if err := os.Link(path, filepath.Join(dst, "fresh.xml")); err != nil {
					t.Skipf("hard links unavailable: %v", err)
				}
				return src, dst
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, dst := tt.setup(t)

			copied, err := ImportRecent(src, dst, 24*time.Hour, now)
			require.NoError(t, err)
			assert.Empty(t, copied)

			content, err := os.ReadFile(filepath.Join(src, "fresh.xml"))
			require.NoError(t, err)
			assert.Equal(t, sampleEAD, string(content))
		})
	}
}
