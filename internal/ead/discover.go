package ead

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/labelgene/internal/common"
)

// sniffLines is how many leading lines IsEADFile inspects.
const sniffLines = 10

// IsEADFile reports whether the first lines of path open an <ead> root.
func IsEADFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return looksLikeEAD(f), nil
}

func looksLikeEAD(r io.Reader) bool {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var head strings.Builder
	for i := 0; i < sniffLines && scanner.Scan(); i++ {
		head.WriteString(scanner.Text())
		head.WriteByte('\n')
	}
	text := head.String()
	return strings.Contains(text, "<ead>") ||
		strings.Contains(text, "<ead ") ||
		strings.Contains(text, "<ead\n") ||
		strings.Contains(text, Namespace)
}

// Discover returns the EAD files in dir, most recently modified first.
// Sanitized copies written by earlier runs are skipped.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	type candidate struct {
		modTime time.Time
		path    string
	}
	var xmlFiles []candidate
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), ".xml") {
			continue
		}
		if strings.HasSuffix(strings.ToLower(name), "_sanitized.xml") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			slog.Warn("Failed to stat file", "file", name, "error", err)
			continue
		}
		xmlFiles = append(xmlFiles, candidate{path: filepath.Join(dir, name), modTime: info.ModTime()})
	}

	slog.Info("XML files found in directory", "dir", dir, "count", len(xmlFiles))

	sort.SliceStable(xmlFiles, func(i, j int) bool {
		return xmlFiles[i].modTime.After(xmlFiles[j].modTime)
	})

	var eadFiles []string
	for _, c := range xmlFiles {
		ok, err := IsEADFile(c.path)
		if err != nil {
			slog.Warn("Skipping unreadable file", "file", c.path, "error", err)
			continue
		}
		if ok {
			eadFiles = append(eadFiles, c.path)
		}
	}

	slog.Info("EAD files after filtering", "count", len(eadFiles))

	if len(eadFiles) == 0 {
		return nil, common.NewUserError(
			"Please copy the EAD finding aid file into "+dir, common.ErrNoEADFiles)
	}
	return eadFiles, nil
}

// ImportRecent copies .xml files modified within the last window from src
// into dst and returns the copied paths. Files that already are their
// destination, as when src and dst name the same directory, are left alone.
func ImportRecent(src, dst string, window time.Duration, now time.Time) ([]string, error) {
	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read downloads directory %s: %w", src, err)
	}

	cutoff := now.Add(-window)
	var copied []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".xml") {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().After(cutoff) {
			continue
		}

		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())
		if existing, err := os.Stat(to); err == nil && os.SameFile(info, existing) {
			slog.Debug("Recent download is already in place", "file", entry.Name(), "dir", dst)
			continue
		}
		if err := copyFile(from, to, info.ModTime()); err != nil {
			return copied, err
		}
		slog.Info("Copied recent download", "file", entry.Name(), "to", dst)
		copied = append(copied, to)
	}
	return copied, nil
}

// copyFile copies from to to and keeps the source modification time so
// discovery ordering is preserved.
func copyFile(from, to string, modTime time.Time) error {
	in, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", from, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", to, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", from, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", to, err)
	}
	return os.Chtimes(to, modTime, modTime)
}
