// Package mailmerge plans the Word mail merges that turn the xlsx data
// sources into label documents and hands the plan to an external runner.
package mailmerge

import (
	"fmt"

	"github.com/Veraticus/labelgene/internal/common"
)

// FolderStyle is the folder label layout.
type FolderStyle int

// Folder label layouts.
const (
	NoFolders FolderStyle = iota
	DefaultFolders
	LeftFolders
)

// BoxStyle is the box label layout.
type BoxStyle int

// Box label layouts.
const (
	NoBoxes BoxStyle = iota
	DefaultBoxes
	CustomBoxes
)

// LabelType is one of the label combinations offered to the user.
type LabelType int

// Label combinations, numbered as presented in the menu.
const (
	DefaultFolderAndBox LabelType = iota + 1
	LeftFolderDefaultBox
	LeftFolderCustomBox
	DefaultFolderCustomBox
	DefaultFolderOnly
	LeftFolderOnly
	DefaultBoxOnly
	CustomBoxOnly
)

var labelTypes = []struct {
	name   string
	folder FolderStyle
	box    BoxStyle
}{
	DefaultFolderAndBox - 1:    {"DEFAULT folder/box", DefaultFolders, DefaultBoxes},
	LeftFolderDefaultBox - 1:   {"LEFT label (folder) and DEFAULT box", LeftFolders, DefaultBoxes},
	LeftFolderCustomBox - 1:    {"LEFT label (folder) and CUSTOM box", LeftFolders, CustomBoxes},
	DefaultFolderCustomBox - 1: {"DEFAULT folder and CUSTOM box", DefaultFolders, CustomBoxes},
	DefaultFolderOnly - 1:      {"DEFAULT folder only", DefaultFolders, NoBoxes},
	LeftFolderOnly - 1:         {"LEFT label (folder) only", LeftFolders, NoBoxes},
	DefaultBoxOnly - 1:         {"DEFAULT box only", NoFolders, DefaultBoxes},
	CustomBoxOnly - 1:          {"CUSTOM box only", NoFolders, CustomBoxes},
}

// ParseLabelType validates a menu number.
func ParseLabelType(n int) (LabelType, error) {
	if n < int(DefaultFolderAndBox) || n > int(CustomBoxOnly) {
		return 0, fmt.Errorf("%w: label type must be between %d and %d, got %d",
			common.ErrInvalidSelection, DefaultFolderAndBox, CustomBoxOnly, n)
	}
	return LabelType(n), nil
}

// LabelTypeOptions returns the menu entries in number order.
func LabelTypeOptions() []string {
	out := make([]string, len(labelTypes))
	for i, lt := range labelTypes {
		out[i] = lt.name
	}
	return out
}

func (t LabelType) valid() bool {
	return t >= DefaultFolderAndBox && t <= CustomBoxOnly
}

func (t LabelType) String() string {
	if !t.valid() {
		return fmt.Sprintf("LabelType(%d)", int(t))
	}
	return labelTypes[t-1].name
}

// Styles returns the folder and box layouts of t.
func (t LabelType) Styles() (FolderStyle, BoxStyle) {
	if !t.valid() {
		return NoFolders, NoBoxes
	}
	return labelTypes[t-1].folder, labelTypes[t-1].box
}
