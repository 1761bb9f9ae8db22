package mailmerge

import (
	"strconv"
	"strings"

	"github.com/Veraticus/labelgene/internal/labels"
	"github.com/Veraticus/labelgene/internal/model"
)

// Word templates shipped alongside the merge macros.
const (
	DefaultFolderTemplate = "default_folder_template.docm"
	LeftFolderTemplate    = "left_labels_folder_template.docm"
)

// Macros run by the merge runner.
const (
	MacroFolders = "MergeForFolders"
	MacroBoxes   = "MergeForBoxes"
)

// BoxGroup is a custom box label layout chosen from the container type.
type BoxGroup string

// Custom box groups, in the order they are merged.
const (
	HalfHollinger    BoxGroup = "half_hollinger"
	FlatBoxTall      BoxGroup = "flat_box_tall"
	DefaultHollinger BoxGroup = "default_hollinger"
)

var boxGroupOrder = []BoxGroup{HalfHollinger, FlatBoxTall, DefaultHollinger}

var groupTemplates = map[BoxGroup]string{
	HalfHollinger:    "vertical_half_holl",
	FlatBoxTall:      "half_horizontal_holl",
	DefaultHollinger: "box_template",
}

// BoxTemplate returns the box template for a group and numbering mode.
func BoxTemplate(group BoxGroup, numbering labels.Numbering) string {
	prefix, ok := groupTemplates[group]
	if !ok {
		prefix = groupTemplates[DefaultHollinger]
	}
	if numbering == labels.Count {
		return prefix + "_non_continuous_numbering.docm"
	}
	return prefix + "_continuous_numbering.docm"
}

// FolderTemplate returns the folder template for a layout.
func FolderTemplate(style FolderStyle) string {
	if style == LeftFolders {
		return LeftFolderTemplate
	}
	return DefaultFolderTemplate
}

// ClassifyBox picks the custom box group for a container type. Half
// Hollinger boxes ("archive half legal", "archive half letter") and flat
// boxes taller than two inches get their own layouts.
func ClassifyBox(containerType string) BoxGroup {
	ct := strings.ToLower(strings.TrimSpace(containerType))
	switch {
	case ct == "archive half legal" || ct == "archive half letter":
		return HalfHollinger
	case IsTallFlatBox(ct):
		return FlatBoxTall
	default:
		return DefaultHollinger
	}
}

// IsTallFlatBox reports whether a "flat box" container type has a height
// part ("3h", "3.5h") greater than 2.
func IsTallFlatBox(containerType string) bool {
	ct := strings.ToLower(strings.TrimSpace(containerType))
	if !strings.HasPrefix(ct, "flat box") {
		return false
	}
	for _, part := range strings.Fields(ct) {
		if !strings.Contains(part, "h") {
			continue
		}
		height, err := strconv.ParseFloat(strings.ReplaceAll(part, "h", ""), 64)
		if err != nil {
			continue
		}
		if height > 2 {
			return true
		}
	}
	return false
}

// Group is the boxes of one custom layout.
type Group struct {
	Name  BoxGroup
	Boxes []model.BoxRecord
}

// SplitBoxes divides boxes into custom layout groups. Empty groups are
// omitted and box order is kept within each group.
func SplitBoxes(boxes []model.BoxRecord) []Group {
	byGroup := make(map[BoxGroup][]model.BoxRecord)
	for _, b := range boxes {
		g := ClassifyBox(b.ContainerType)
		byGroup[g] = append(byGroup[g], b)
	}

	var groups []Group
	for _, name := range boxGroupOrder {
		if len(byGroup[name]) > 0 {
			groups = append(groups, Group{Name: name, Boxes: byGroup[name]})
		}
	}
	return groups
}
