package mailmerge

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Veraticus/labelgene/internal/export"
	"github.com/Veraticus/labelgene/internal/labels"
	"github.com/Veraticus/labelgene/internal/model"
)

// Job is one template merged against one data source.
type Job struct {
	Template   string `yaml:"template"`
	Macro      string `yaml:"macro"`
	DataSource string `yaml:"data_source"`
	Output     string `yaml:"output"`
}

// Plan lists the merges for one finding aid.
type Plan struct {
	Collection string `yaml:"collection"`
	CallNumber string `yaml:"call_number"`
	Numbering  string `yaml:"numbering"`
	LabelType  int    `yaml:"label_type"`
	Jobs       []Job  `yaml:"jobs"`
}

// BoxWriter writes a box data source.
type BoxWriter interface {
	WriteBoxes(ctx context.Context, path string, boxes []model.BoxRecord) error
}

// Planner builds merge plans. Custom box layouts need their own data
// sources, which it writes through its BoxWriter.
type Planner struct {
	writer BoxWriter
	logger *slog.Logger
	dir    string
}

// NewPlanner creates a Planner writing custom box data sources into dir.
func NewPlanner(dir string, writer BoxWriter, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{dir: dir, writer: writer, logger: logger}
}

// Plan builds the merge jobs for set. paths are the data sources already
// written for set; numbering selects the box templates.
func (p *Planner) Plan(ctx context.Context, set labels.Set, paths export.Paths, numbering labels.Numbering, lt LabelType) (Plan, error) {
	if !lt.valid() {
		_, err := ParseLabelType(int(lt))
		return Plan{}, err
	}

	plan := Plan{
		Collection: set.Collection,
		CallNumber: set.CallNumber,
		Numbering:  string(numbering),
		LabelType:  int(lt),
	}

	folderStyle, boxStyle := lt.Styles()

	if folderStyle != NoFolders && len(set.Folders) > 0 {
		plan.Jobs = append(plan.Jobs, NewJob(FolderTemplate(folderStyle), paths.Folders))
	}

	switch boxStyle {
	case DefaultBoxes:
		if len(set.Boxes) > 0 {
			plan.Jobs = append(plan.Jobs, NewJob(BoxTemplate(DefaultHollinger, numbering), paths.Boxes))
		}
	case CustomBoxes:
		jobs, err := p.customBoxJobs(ctx, set, numbering)
		if err != nil {
			return Plan{}, err
		}
		plan.Jobs = append(plan.Jobs, jobs...)
	case NoBoxes:
	}

	p.logger.Debug("planned merges",
		"collection", set.Collection,
		"label_type", lt.String(),
		"jobs", len(plan.Jobs))
	return plan, nil
}

func (p *Planner) customBoxJobs(ctx context.Context, set labels.Set, numbering labels.Numbering) ([]Job, error) {
	var jobs []Job
	for _, g := range SplitBoxes(set.Boxes) {
		path := filepath.Join(p.dir, export.SafeName(set.Collection)+"_"+string(g.Name)+".xlsx")
		if err := p.writer.WriteBoxes(ctx, path, g.Boxes); err != nil {
			return nil, fmt.Errorf("failed to write %s boxes: %w", g.Name, err)
		}
		p.logger.Info("custom box group", "group", g.Name, "boxes", len(g.Boxes))
		jobs = append(jobs, NewJob(BoxTemplate(g.Name, numbering), path))
	}
	return jobs, nil
}

// NewJob pairs a template with a data source, choosing the macro and the
// output document name from the template.
func NewJob(template, dataSource string) Job {
	macro := MacroBoxes
	if strings.Contains(template, "folder") {
		macro = MacroFolders
	}
	return Job{
		Template:   template,
		Macro:      macro,
		DataSource: dataSource,
		Output:     OutputName(template, dataSource),
	}
}

// OutputName derives the merged document path from the data source:
// "<data>_left_labels.docx" for left label templates, otherwise
// "<data>_labels.docx".
func OutputName(template, dataSource string) string {
	suffix := "_labels.docx"
	if strings.Contains(template, "left") {
		suffix = "_left_labels.docx"
	}
	return strings.TrimSuffix(dataSource, filepath.Ext(dataSource)) + suffix
}
