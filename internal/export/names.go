package export

import (
	"path/filepath"
	"strings"
)

// Variant distinguishes the full data sources from filtered ones.
type Variant int

// Data source variants.
const (
	VariantAll Variant = iota
	VariantBySeries
	VariantByBox
)

// Paths are the data source files written for one label set.
type Paths struct {
	Folders string
	Boxes   string
}

var unsafeChars = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", `"`, "_", "/", "_", `\`, "_", "|", "_", "?", "_", "*", "_",
)

// SafeName makes s usable as a file name on Windows and Unix.
func SafeName(s string) string {
	s = unsafeChars.Replace(s)
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return '_'
		}
		return r
	}, s)
	s = strings.Trim(s, " .")
	if s == "" {
		return "untitled"
	}
	return s
}

// Base returns the "<collection>_<call number>" file name prefix.
func Base(collection, callNumber string) string {
	return SafeName(collection) + "_" + SafeName(callNumber)
}

// DataPaths returns where the data sources of a variant are written.
func DataPaths(dir, collection, callNumber string, v Variant) Paths {
	base := filepath.Join(dir, Base(collection, callNumber))
	switch v {
	case VariantBySeries:
		return Paths{
			Folders: base + "_folders_by_series_specified.xlsx",
			Boxes:   base + "_boxes_by_series_specified.xlsx",
		}
	case VariantByBox:
		return Paths{
			Folders: base + "_folders_by_box_specified.xlsx",
			Boxes:   base + "_boxes_by_box_specified.xlsx",
		}
	default:
		return Paths{
			Folders: base + "_folder.xlsx",
			Boxes:   base + "_box.xlsx",
		}
	}
}
