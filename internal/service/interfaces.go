// Package service defines the interfaces between the labelling pipeline and
// its interactive and output collaborators.
package service

import (
	"context"

	"github.com/Veraticus/labelgene/internal/export"
	"github.com/Veraticus/labelgene/internal/labels"
	"github.com/Veraticus/labelgene/internal/mailmerge"
	"github.com/Veraticus/labelgene/internal/model"
)

// CollectionSummary identifies a parsed finding aid offered for selection.
type CollectionSummary struct {
	Path       string
	Collection string
	CallNumber string
	Items      int
}

// Prompter asks the user for the choices a labelling run needs.
type Prompter interface {
	// SelectCollections returns the indexes of the chosen collections.
	SelectCollections(ctx context.Context, collections []CollectionSummary) ([]int, error)
	NumberingPreference(ctx context.Context) (labels.Numbering, error)
	ChooseLabelType(ctx context.Context) (mailmerge.LabelType, error)
	// SelectOptions returns the chosen options, or nil when the user skips.
	SelectOptions(ctx context.Context, title string, options []string) ([]string, error)
	Confirm(ctx context.Context, question string) (bool, error)
}

// RecordWriter persists label sets as mail-merge data sources.
type RecordWriter interface {
	Write(ctx context.Context, set labels.Set, variant export.Variant) (export.Paths, error)
	WriteBoxes(ctx context.Context, path string, boxes []model.BoxRecord) error
}

// MergeTrigger hands planned merges to whatever produces the documents.
type MergeTrigger interface {
	Trigger(ctx context.Context, manifest mailmerge.Manifest) error
}
