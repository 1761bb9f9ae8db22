// Package labels turns resolved finding aids into folder and box label
// records ready for a mail-merge data source.
package labels

import (
	"fmt"
	"strings"

	"github.com/Veraticus/labelgene/internal/model"
)

// Numbering selects how box labels describe their folders.
type Numbering string

// Box label numbering modes.
const (
	// Continuous box labels show the first and last folder number.
	Continuous Numbering = "continuous"
	// Count box labels show the number of folders in the box.
	Count Numbering = "count"
)

// ParseNumbering converts a configuration value into a Numbering.
func ParseNumbering(s string) (Numbering, error) {
	switch n := Numbering(strings.ToLower(strings.TrimSpace(s))); n {
	case Continuous, Count:
		return n, nil
	case "":
		return Continuous, nil
	default:
		return "", fmt.Errorf("unknown numbering mode %q (want %s or %s)", s, Continuous, Count)
	}
}

// Set holds every label record derived from one finding aid.
type Set struct {
	Repository string
	Collection string
	CallNumber string
	Folders    []model.LabelRecord
	Boxes      []model.BoxRecord
}

// NeedsReview reports whether any record in the set is flagged.
func (s Set) NeedsReview() bool {
	for _, r := range s.Folders {
		if r.NeedsReview {
			return true
		}
	}
	for _, b := range s.Boxes {
		if b.NeedsReview {
			return true
		}
	}
	return false
}

// Build creates one folder record per physical folder and the matching box
// summaries. Assignments must be index-aligned with aid.Items.
func Build(aid *model.FindingAid, assignments []model.FolderAssignment, numbering Numbering) Set {
	folders := FolderRecords(aid, assignments)
	return Set{
		Repository: aid.Repository,
		Collection: aid.Collection,
		CallNumber: aid.CallNumber,
		Folders:    folders,
		Boxes:      Summarize(aid, folders, numbering),
	}
}

// FolderRecords expands assignments into folder label records in document
// order. An assignment spanning n folders yields n records titled
// "<title> [i of n]".
func FolderRecords(aid *model.FindingAid, assignments []model.FolderAssignment) []model.LabelRecord {
	records := make([]model.LabelRecord, 0, len(assignments))
	for i, a := range assignments {
		if i >= len(aid.Items) {
			break
		}
		item := aid.Items[i]

		base := model.LabelRecord{
			Repository:    aid.Repository,
			Collection:    aid.Collection,
			CallNumber:    aid.CallNumber,
			Box:           a.Box,
			ContainerType: item.ContainerType,
			Title:         item.Title,
			Date:          item.Date,
			Source:        a.Source,
			ItemOrdinal:   item.Ordinal,
			NeedsReview:   a.IsUnassigned(),
		}
		for d := 0; d < model.MaxAncestors; d++ {
			base.Ancestors[d] = item.Ancestor(d)
		}

		span := a.Span()
		for n := 0; n < span; n++ {
			r := base
			r.Folder = a.Folder + n
			if span > 1 {
				r.Title = fmt.Sprintf("%s [%d of %d]", item.Title, n+1, span)
			}
			records = append(records, r)
		}
	}
	return records
}

// Summarize builds one box record per distinct box, in order of first
// appearance. Up to five distinct first-level series are kept per box.
func Summarize(aid *model.FindingAid, folders []model.LabelRecord, numbering Numbering) []model.BoxRecord {
	var boxes []model.BoxRecord
	index := make(map[string]int)

	for _, r := range folders {
		i, ok := index[r.Box]
		if !ok {
			i = len(boxes)
			index[r.Box] = i
			boxes = append(boxes, model.BoxRecord{
				Repository:  aid.Repository,
				Collection:  aid.Collection,
				CallNumber:  aid.CallNumber,
				Box:         r.Box,
				FirstFolder: r.Folder,
				LastFolder:  r.Folder,
			})
		}

		b := &boxes[i]
		b.FolderCount++
		b.FirstFolder = min(b.FirstFolder, r.Folder)
		b.LastFolder = max(b.LastFolder, r.Folder)
		if b.ContainerType == "" {
			b.ContainerType = r.ContainerType
		}
		if r.NeedsReview {
			b.NeedsReview = true
		}
		addSeries(&b.Series, r.Ancestors[0])
	}

	for i := range boxes {
		b := &boxes[i]
		switch numbering {
		case Count:
			b.FirstFolder, b.LastFolder = 0, 0
		default:
			if b.FirstFolder == b.LastFolder {
				b.LastFolder = 0
			}
		}
	}
	return boxes
}

func addSeries(series *[model.MaxAncestors]string, title string) {
	if title == "" {
		return
	}
	for i, s := range series {
		switch s {
		case title:
			return
		case "":
			series[i] = title
			return
		}
	}
}

// CountSources tallies explicit and inferred assignments.
func CountSources(assignments []model.FolderAssignment) (explicit, inferred int) {
	for _, a := range assignments {
		if a.Source == model.SourceExplicit {
			explicit++
		} else {
			inferred++
		}
	}
	return explicit, inferred
}

// MostlyNumbered reports whether the source numbers most of its folders
// itself, in which case no numbering preference needs to be asked.
func MostlyNumbered(assignments []model.FolderAssignment) bool {
	explicit, inferred := CountSources(assignments)
	return explicit > inferred
}
