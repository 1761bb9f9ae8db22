package resolver

import (
	"fmt"

	"github.com/Veraticus/labelgene/internal/model"
)

// UnassignedBoxWarning flags an item for which no box could be determined.
// It is a data-quality signal for human review, not an error.
type UnassignedBoxWarning struct {
	Path   string `json:"path"`
	Title  string `json:"title"`
	Date   string `json:"date"`
	Folder int    `json:"folder"`
	Item   int    `json:"item"`
}

func (w UnassignedBoxWarning) String() string {
	return fmt.Sprintf("%s: item %d %q (%s) has no box; labelled %s, folder %d",
		w.Path, w.Item+1, w.Title, w.Date, model.UnassignedBox, w.Folder)
}

// UnassignedWarnings lists every assignment left in UnassignedBox.
func UnassignedWarnings(aid *model.FindingAid, assignments []model.FolderAssignment) []UnassignedBoxWarning {
	var warnings []UnassignedBoxWarning
	for i, a := range assignments {
		if !a.IsUnassigned() || i >= len(aid.Items) {
			continue
		}
		item := aid.Items[i]
		warnings = append(warnings, UnassignedBoxWarning{
			Path:   aid.Path,
			Item:   item.Ordinal,
			Title:  item.Title,
			Date:   item.Date,
			Folder: a.Folder,
		})
	}
	return warnings
}

// UnparsedFolderWarnings lists items whose folder text held no number and
// were numbered by inference instead.
func UnparsedFolderWarnings(aid *model.FindingAid) []string {
	var out []string
	for _, item := range aid.Items {
		if !item.HasExplicitFolder() {
			continue
		}
		if _, _, ok := ParseFolderText(item.FolderText); !ok {
			out = append(out, fmt.Sprintf("%s: item %d %q has unreadable folder %q; numbered by inference",
				aid.Path, item.Ordinal+1, item.Title, item.FolderText))
		}
	}
	return out
}
