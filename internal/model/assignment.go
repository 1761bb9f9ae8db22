package model

import "fmt"

// UnassignedBox marks an item for which no box could be determined.
const UnassignedBox = "UNASSIGNED"

// NumberingSource indicates where a folder number came from.
type NumberingSource string

// Numbering source constants.
const (
	SourceExplicit NumberingSource = "EXPLICIT"
	SourceInferred NumberingSource = "INFERRED"
)

// FolderAssignment is the resolved (box, folder) placement of one item.
type FolderAssignment struct {
	Box         string
	Source      NumberingSource
	Folder      int
	LastFolder  int // Equal to Folder unless the item spans several folders
	ItemOrdinal int
	Unassigned  bool // No box label precedes the item; Box holds UnassignedBox
}

// IsUnassigned reports whether the box could not be determined. A box that
// is literally labelled UnassignedBox in the finding aid is not unassigned.
func (a FolderAssignment) IsUnassigned() bool {
	return a.Unassigned
}

// Span returns the number of physical folders covered by the assignment.
func (a FolderAssignment) Span() int {
	if a.LastFolder < a.Folder {
		return 1
	}
	return a.LastFolder - a.Folder + 1
}

// FolderRange renders the folder number, or "first-last" for spans.
func (a FolderAssignment) FolderRange() string {
	if a.Span() == 1 {
		return fmt.Sprintf("%d", a.Folder)
	}
	return fmt.Sprintf("%d-%d", a.Folder, a.LastFolder)
}
