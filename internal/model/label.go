package model

import (
	"strconv"
)

// Folder label column names, in merge order.
const (
	ColRepository    = "REPOSITORY"
	ColCollection    = "COLLECTION"
	ColCallNumber    = "CALL_NO."
	ColBox           = "BOX"
	ColFolder        = "FOLDER"
	ColContainerType = "CONTAINER_TYPE"
	ColFolderTitle   = "FOLDER TITLE"
	ColFolderDates   = "FOLDER DATES"
	ColNumbering     = "NUMBERING"
	ColNeedsReview   = "NEEDS_REVIEW"
	ColFolderCount   = "FOLDER_COUNT"
	ColFirstFolder   = "FIRST_FOLDER"
	ColLastFolder    = "LAST_FOLDER"
)

// AncestorColumns are the C01..C05 ancestor column names.
var AncestorColumns = [MaxAncestors]string{
	"C01_ANCESTOR", "C02_ANCESTOR", "C03_ANCESTOR", "C04_ANCESTOR", "C05_ANCESTOR",
}

// SeriesColumns are the first-level series columns of a box label.
var SeriesColumns = [MaxAncestors]string{
	"FIRST_C01_SERIES", "SECOND_C01_SERIES", "THIRD_C01_SERIES", "FOURTH_C01_SERIES", "FIFTH_C01_SERIES",
}

// LabelRecord is one folder label ready for merge.
type LabelRecord struct {
	Repository    string
	Collection    string
	CallNumber    string
	Box           string
	ContainerType string
	Title         string
	Date          string
	Ancestors     [MaxAncestors]string
	Source        NumberingSource
	Folder        int
	ItemOrdinal   int
	NeedsReview   bool
}

// FolderColumns returns the folder data source header row.
func FolderColumns() []string {
	cols := []string{ColCollection, ColCallNumber, ColBox, ColFolder, ColContainerType}
	cols = append(cols, AncestorColumns[:]...)
	return append(cols, ColFolderTitle, ColFolderDates, ColNumbering, ColNeedsReview)
}

// BoxLabel renders the box as printed on the label. Only flagged records
// print the bare UnassignedBox marker.
func (r LabelRecord) BoxLabel() string {
	if r.NeedsReview && r.Box == UnassignedBox {
		return UnassignedBox
	}
	return "Box " + r.Box
}

// FolderLabel renders the folder as printed on the label.
func (r LabelRecord) FolderLabel() string {
	return "Folder " + strconv.Itoa(r.Folder)
}

// Fields returns the record as a column name to value mapping.
func (r LabelRecord) Fields() map[string]string {
	f := map[string]string{
		ColRepository:    r.Repository,
		ColCollection:    r.Collection,
		ColCallNumber:    r.CallNumber,
		ColBox:           r.BoxLabel(),
		ColFolder:        r.FolderLabel(),
		ColContainerType: r.ContainerType,
		ColFolderTitle:   r.Title,
		ColFolderDates:   r.Date,
		ColNumbering:     string(r.Source),
		ColNeedsReview:   yesNo(r.NeedsReview),
	}
	for i, col := range AncestorColumns {
		f[col] = r.Ancestors[i]
	}
	return f
}

// Row returns the record values ordered by FolderColumns.
func (r LabelRecord) Row() []string {
	return row(r.Fields(), FolderColumns())
}

// BoxRecord summarises the folders of one box for box labels.
type BoxRecord struct {
	Repository    string
	Collection    string
	CallNumber    string
	Box           string
	ContainerType string
	Series        [MaxAncestors]string
	FolderCount   int
	FirstFolder   int
	LastFolder    int // 0 when the box holds a single folder number
	NeedsReview   bool
}

// BoxColumns returns the box data source header row.
func BoxColumns() []string {
	cols := []string{ColRepository, ColCollection, ColCallNumber, ColBox, ColFolderCount,
		ColFirstFolder, ColLastFolder, ColContainerType}
	cols = append(cols, SeriesColumns[:]...)
	return append(cols, ColNeedsReview)
}

// FolderCountLabel renders "1 folder" or "n folders".
func (b BoxRecord) FolderCountLabel() string {
	if b.FolderCount == 1 {
		return "1 folder"
	}
	return strconv.Itoa(b.FolderCount) + " folders"
}

// Fields returns the record as a column name to value mapping.
// Zero first/last folders are left empty.
func (b BoxRecord) Fields() map[string]string {
	f := map[string]string{
		ColRepository:    b.Repository,
		ColCollection:    b.Collection,
		ColCallNumber:    b.CallNumber,
		ColBox:           b.Box,
		ColFolderCount:   b.FolderCountLabel(),
		ColFirstFolder:   intOrEmpty(b.FirstFolder),
		ColLastFolder:    intOrEmpty(b.LastFolder),
		ColContainerType: b.ContainerType,
		ColNeedsReview:   yesNo(b.NeedsReview),
	}
	for i, col := range SeriesColumns {
		f[col] = b.Series[i]
	}
	return f
}

// Row returns the record values ordered by BoxColumns.
func (b BoxRecord) Row() []string {
	return row(b.Fields(), BoxColumns())
}

func row(fields map[string]string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = fields[c]
	}
	return out
}

func intOrEmpty(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return ""
}
