package mailmerge

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/labelgene/internal/common"
	"github.com/Veraticus/labelgene/internal/export"
	"github.com/Veraticus/labelgene/internal/labels"
	"github.com/Veraticus/labelgene/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	err    error
	writes map[string][]model.BoxRecord
}

func (w *recordingWriter) WriteBoxes(_ context.Context, path string, boxes []model.BoxRecord) error {
	if w.err != nil {
		return w.err
	}
	if w.writes == nil {
		w.writes = make(map[string][]model.BoxRecord)
	}
	w.writes[path] = boxes
	return nil
}

func testSet() labels.Set {
	return labels.Set{
		Collection: "Chopin papers",
		CallNumber: "GEN MSS 1234",
		Folders:    []model.LabelRecord{{Box: "1", Folder: 1}},
		Boxes: []model.BoxRecord{
			{Box: "1", ContainerType: "archive half legal"},
			{Box: "2", ContainerType: "flat box 15w 18l 3h"},
			{Box: "3", ContainerType: "flat box 15w 18l 1.5h"},
			{Box: "4", ContainerType: ""},
			{Box: "5", ContainerType: "Archive Half Letter"},
		},
	}
}

var testPaths = export.Paths{Folders: "out/papers_folder.xlsx", Boxes: "out/papers_box.xlsx"}

func TestParseLabelType(t *testing.T) {
	for n := 1; n <= 8; n++ {
		lt, err := ParseLabelType(n)
		require.NoError(t, err)
		assert.Equal(t, LabelType(n), lt)
	}
	for _, n := range []int{0, 9, -1} {
		_, err := ParseLabelType(n)
		assert.ErrorIs(t, err, common.ErrInvalidSelection)
	}

	options := LabelTypeOptions()
	require.Len(t, options, 8)
	assert.Equal(t, "DEFAULT folder/box", options[0])
	assert.Equal(t, "CUSTOM box only", options[7])
	assert.Equal(t, "LabelType(12)", LabelType(12).String())
}

func TestLabelType_Styles(t *testing.T) {
	tests := []struct {
		lt     LabelType
		folder FolderStyle
		box    BoxStyle
	}{
		{DefaultFolderAndBox, DefaultFolders, DefaultBoxes},
		{LeftFolderDefaultBox, LeftFolders, DefaultBoxes},
		{LeftFolderCustomBox, LeftFolders, CustomBoxes},
		{DefaultFolderCustomBox, DefaultFolders, CustomBoxes},
		{DefaultFolderOnly, DefaultFolders, NoBoxes},
		{LeftFolderOnly, LeftFolders, NoBoxes},
		{DefaultBoxOnly, NoFolders, DefaultBoxes},
		{CustomBoxOnly, NoFolders, CustomBoxes},
		{LabelType(0), NoFolders, NoBoxes},
	}
	for _, tt := range tests {
		t.Run(tt.lt.String(), func(t *testing.T) {
			folder, box := tt.lt.Styles()
			assert.Equal(t, tt.folder, folder)
			assert.Equal(t, tt.box, box)
		})
	}
}

func TestTemplates(t *testing.T) {
	assert.Equal(t, "box_template_continuous_numbering.docm", BoxTemplate(DefaultHollinger, labels.Continuous))
	assert.Equal(t, "box_template_non_continuous_numbering.docm", BoxTemplate(DefaultHollinger, labels.Count))
	assert.Equal(t, "vertical_half_holl_non_continuous_numbering.docm", BoxTemplate(HalfHollinger, labels.Count))
	assert.Equal(t, "half_horizontal_holl_continuous_numbering.docm", BoxTemplate(FlatBoxTall, labels.Continuous))
	assert.Equal(t, "box_template_continuous_numbering.docm", BoxTemplate(BoxGroup("other"), labels.Continuous))

	assert.Equal(t, LeftFolderTemplate, FolderTemplate(LeftFolders))
	assert.Equal(t, DefaultFolderTemplate, FolderTemplate(DefaultFolders))
}

func TestClassifyBox(t *testing.T) {
	tests := map[string]BoxGroup{
		"archive half legal":    HalfHollinger,
		"archive half letter":   HalfHollinger,
		" Archive Half Legal ":  HalfHollinger,
		"flat box 15w 18l 3h":   FlatBoxTall,
		"flat box 15w 18l 2.5h": FlatBoxTall,
		"flat box 15w 18l 2h":   DefaultHollinger,
		"flat box 15w 18l 1.5h": DefaultHollinger,
		"flat box heavy":        DefaultHollinger,
		"archive legal":         DefaultHollinger,
		"":                      DefaultHollinger,
		"record carton 3h":      DefaultHollinger,
	}
	for ct, want := range tests {
		t.Run(ct, func(t *testing.T) {
			assert.Equal(t, want, ClassifyBox(ct))
		})
	}
}

func TestSplitBoxes(t *testing.T) {
	groups := SplitBoxes(testSet().Boxes)
	require.Len(t, groups, 3)

	assert.Equal(t, HalfHollinger, groups[0].Name)
	assert.Equal(t, []string{"1", "5"}, boxNames(groups[0].Boxes))
	assert.Equal(t, FlatBoxTall, groups[1].Name)
	assert.Equal(t, []string{"2"}, boxNames(groups[1].Boxes))
	assert.Equal(t, DefaultHollinger, groups[2].Name)
	assert.Equal(t, []string{"3", "4"}, boxNames(groups[2].Boxes))

	assert.Empty(t, SplitBoxes(nil))
}

func boxNames(boxes []model.BoxRecord) []string {
	out := make([]string, len(boxes))
	for i, b := range boxes {
		out[i] = b.Box
	}
	return out
}

func TestPlanner_DefaultLabels(t *testing.T) {
	w := &recordingWriter{}
	p := NewPlanner("out", w, nil)

	plan, err := p.Plan(context.Background(), testSet(), testPaths, labels.Count, DefaultFolderAndBox)
	require.NoError(t, err)

	assert.Equal(t, []Job{
		{
			Template:   DefaultFolderTemplate,
			Macro:      MacroFolders,
			DataSource: "out/papers_folder.xlsx",
			Output:     "out/papers_folder_labels.docx",
		},
		{
			Template:   "box_template_non_continuous_numbering.docm",
			Macro:      MacroBoxes,
			DataSource: "out/papers_box.xlsx",
			Output:     "out/papers_box_labels.docx",
		},
	}, plan.Jobs)
	assert.Equal(t, "count", plan.Numbering)
	assert.Equal(t, 1, plan.LabelType)
	assert.Empty(t, w.writes)
}

func TestPlanner_LeftFolderCustomBox(t *testing.T) {
	w := &recordingWriter{}
	p := NewPlanner("out", w, nil)

	plan, err := p.Plan(context.Background(), testSet(), testPaths, labels.Continuous, LeftFolderCustomBox)
	require.NoError(t, err)
	require.Len(t, plan.Jobs, 4)

	assert.Equal(t, LeftFolderTemplate, plan.Jobs[0].Template)
	assert.Equal(t, "out/papers_folder_left_labels.docx", plan.Jobs[0].Output)

	half := filepath.Join("out", "Chopin papers_half_hollinger.xlsx")
	assert.Equal(t, "vertical_half_holl_continuous_numbering.docm", plan.Jobs[1].Template)
	assert.Equal(t, half, plan.Jobs[1].DataSource)
	assert.Equal(t, filepath.Join("out", "Chopin papers_half_hollinger_labels.docx"), plan.Jobs[1].Output)
	assert.Equal(t, "half_horizontal_holl_continuous_numbering.docm", plan.Jobs[2].Template)
	assert.Equal(t, "box_template_continuous_numbering.docm", plan.Jobs[3].Template)

	require.Len(t, w.writes, 3)
	assert.Equal(t, []string{"1", "5"}, boxNames(w.writes[half]))
}

func TestPlanner_BoxOnlyAndFolderOnly(t *testing.T) {
	p := NewPlanner("out", &recordingWriter{}, nil)

	plan, err := p.Plan(context.Background(), testSet(), testPaths, labels.Continuous, DefaultBoxOnly)
	require.NoError(t, err)
	require.Len(t, plan.Jobs, 1)
	assert.Equal(t, MacroBoxes, plan.Jobs[0].Macro)

	plan, err = p.Plan(context.Background(), testSet(), testPaths, labels.Continuous, LeftFolderOnly)
	require.NoError(t, err)
	require.Len(t, plan.Jobs, 1)
	assert.Equal(t, MacroFolders, plan.Jobs[0].Macro)

	empty := labels.Set{Collection: "Empty"}
	plan, err = p.Plan(context.Background(), empty, testPaths, labels.Continuous, DefaultFolderAndBox)
	require.NoError(t, err)
	assert.Empty(t, plan.Jobs)
}

func TestPlanner_Errors(t *testing.T) {
	p := NewPlanner("out", &recordingWriter{err: errors.New("disk full")}, nil)

	_, err := p.Plan(context.Background(), testSet(), testPaths, labels.Continuous, CustomBoxOnly)
	assert.ErrorContains(t, err, "disk full")

	_, err = p.Plan(context.Background(), testSet(), testPaths, labels.Continuous, LabelType(9))
	assert.ErrorIs(t, err, common.ErrInvalidSelection)
}

func TestPlanner_WritesCustomBoxWorkbooks(t *testing.T) {
	dir := t.TempDir()
	w, err := export.NewWriter(export.DefaultConfig(dir), nil)
	require.NoError(t, err)

	plan, err := NewPlanner(dir, w, nil).Plan(context.Background(), testSet(), testPaths, labels.Count, CustomBoxOnly)
	require.NoError(t, err)
	require.Len(t, plan.Jobs, 3)
	for _, job := range plan.Jobs {
		assert.FileExists(t, job.DataSource)
	}
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "a/b_folder_labels.docx", OutputName(DefaultFolderTemplate, "a/b_folder.xlsx"))
	assert.Equal(t, "a/b_folder_left_labels.docx", OutputName(LeftFolderTemplate, "a/b_folder.xlsx"))
}

func TestManifestTrigger(t *testing.T) {
	dir := t.TempDir()
	trigger := NewManifestTrigger(dir, nil)

	plan, err := NewPlanner(dir, &recordingWriter{}, nil).
		Plan(context.Background(), testSet(), testPaths, labels.Continuous, DefaultFolderAndBox)
	require.NoError(t, err)

	m := Manifest{
		GeneratedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		RunID:       "run-1",
		TemplateDir: "C:/labelgene/templates",
		Plans:       []Plan{plan},
	}
	require.NoError(t, trigger.Trigger(context.Background(), m))

	got, err := ReadManifest(trigger.Path())
	require.NoError(t, err)
	assert.Equal(t, m.RunID, got.RunID)
	assert.Equal(t, m.TemplateDir, got.TemplateDir)
	assert.True(t, got.GeneratedAt.Equal(m.GeneratedAt))
	assert.Equal(t, m.Plans, got.Plans)
	assert.Equal(t, 2, got.Jobs())
}

func TestManifestTrigger_NoJobs(t *testing.T) {
	dir := t.TempDir()
	trigger := NewManifestTrigger(dir, nil)

	require.NoError(t, trigger.Trigger(context.Background(), Manifest{RunID: "empty"}))
	assert.NoFileExists(t, trigger.Path())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, trigger.Trigger(ctx, Manifest{}), context.Canceled)
}
