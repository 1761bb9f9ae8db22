// Package model defines the core domain models used throughout the application.
package model

// Defaults used when a finding aid does not state its collection-level fields.
const (
	UnknownRepository = "Unknown Repository"
	UnknownCollection = "Unknown Collection"
	UnknownCallNumber = "Unknown Call Number"
	UnknownAuthor     = "by Unknown Author"
	TitleUnavailable  = "Title unavailable"
	DateUnavailable   = "Date unavailable"
)

// MaxAncestors is the number of ancestor columns carried on folder labels.
const MaxAncestors = 5

// FindingAid represents one EAD document and its terminal descriptive units.
type FindingAid struct {
	Path       string
	Repository string
	Collection string
	CallNumber string
	Author     string
	Items      []ItemNode
}

// ItemNode is a terminal <c>/<cNN> component flattened at extraction time.
// Box and ancestor fields are resolved copies, not references into the tree.
type ItemNode struct {
	BoxLabel      string // Own box container, or the nearest ancestor's
	FolderText    string // Raw folder container text, empty when not stated
	ContainerType string // altrender of the first container
	Title         string
	Date          string
	Ancestors     []string // c01..c05 titles, outermost first
	Ordinal       int      // Position in document order
	Position      int      // Position among its parent's children
	ExtentCount   int      // Folder count from physdesc/extent, 0 when absent
	BoxInherited  bool
}

// HasExplicitFolder reports whether the source states a folder for the node.
func (n ItemNode) HasExplicitFolder() bool {
	return n.FolderText != ""
}

// Ancestor returns the ancestor title at depth i (0-based) or "" when absent.
func (n ItemNode) Ancestor(i int) string {
	if i < 0 || i >= len(n.Ancestors) {
		return ""
	}
	return n.Ancestors[i]
}
