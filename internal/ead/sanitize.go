package ead

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/labelgene/internal/common"
)

// ReplacementChar is written in place of characters XML does not allow.
const ReplacementChar = '?'

// Replacement records one character replaced by the sanitizer.
type Replacement struct {
	Line int
	Char rune // utf8.RuneError for invalid byte sequences
}

// Report summarises what Sanitize changed.
type Report struct {
	Replacements []Replacement
}

// Changed reports whether anything was replaced.
func (r Report) Changed() bool {
	return len(r.Replacements) > 0
}

// TotalChars returns the number of replaced characters.
func (r Report) TotalChars() int {
	return len(r.Replacements)
}

// Lines returns the distinct line numbers that had replacements, in order.
func (r Report) Lines() []int {
	var lines []int
	for _, rep := range r.Replacements {
		if len(lines) == 0 || lines[len(lines)-1] != rep.Line {
			lines = append(lines, rep.Line)
		}
	}
	return lines
}

// String renders a one-line summary.
func (r Report) String() string {
	if !r.Changed() {
		return "no invalid characters found"
	}
	return fmt.Sprintf("replaced %d invalid characters on %d lines", r.TotalChars(), len(r.Lines()))
}

// SanitizationError is returned when a file cannot be made well-formed.
type SanitizationError struct {
	Err    error
	Path   string
	Report Report
}

func (e *SanitizationError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Path, common.ErrSanitization, e.Err)
}

func (e *SanitizationError) Unwrap() []error {
	return []error{common.ErrSanitization, e.Err}
}

// Sanitizer repairs character-level defects in raw EAD bytes.
type Sanitizer struct{}

// NewSanitizer creates a new sanitizer.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// Sanitize replaces code points that are illegal in XML 1.0, and invalid
// UTF-8 sequences, with ReplacementChar. It never fails.
func (s *Sanitizer) Sanitize(raw []byte) ([]byte, Report) {
	var report Report
	var out bytes.Buffer
	out.Grow(len(raw))

	line := 1
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRune(raw[i:])
		switch {
		case r == utf8.RuneError && size <= 1:
			report.Replacements = append(report.Replacements, Replacement{Line: line, Char: utf8.RuneError})
			out.WriteRune(ReplacementChar)
		case !isXMLChar(r):
			report.Replacements = append(report.Replacements, Replacement{Line: line, Char: r})
			out.WriteRune(ReplacementChar)
		default:
			out.Write(raw[i : i+size])
		}
		if r == '\n' {
			line++
		}
		i += size
	}

	if !report.Changed() {
		return raw, report
	}
	return out.Bytes(), report
}

// Prepare returns raw unchanged when it already parses, otherwise the
// sanitized bytes. It fails only when the sanitized bytes still do not parse.
func (s *Sanitizer) Prepare(path string, raw []byte) ([]byte, Report, error) {
	if _, err := readDocument(raw); err == nil {
		return raw, Report{}, nil
	}

	clean, report := s.Sanitize(raw)
	if _, err := readDocument(clean); err != nil {
		return nil, report, &SanitizationError{Path: path, Err: err, Report: report}
	}
	return clean, report, nil
}

// SanitizedPath returns the path a sanitized copy of path is written to.
func SanitizedPath(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".xml") {
		return path[:len(path)-4] + "_sanitized.xml"
	}
	return path + "_sanitized.xml"
}

// isXMLChar reports whether r is allowed by the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}
