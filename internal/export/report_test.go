package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/labelgene/internal/resolver"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	r := NewReport(now, "continuous")
	_, err := uuid.Parse(r.RunID)
	require.NoError(t, err)
	assert.False(t, r.NeedsReview())

	r.Files = append(r.Files, FileSummary{Path: "a.xml", Collection: "Papers", Items: 3, Folders: 4})
	r.Failures = append(r.Failures, Failure{Path: "b.xml", Stage: "parse", Error: "not well-formed"})
	r.Unassigned = append(r.Unassigned, resolver.UnassignedBoxWarning{Path: "a.xml", Title: "Sketches", Folder: 1})
	assert.True(t, r.NeedsReview())

	path, err := WriteReport(dir, r)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ReportFileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, r.RunID, got.RunID)
	assert.True(t, got.StartedAt.Equal(now))
	require.Len(t, got.Failures, 1)
	assert.Equal(t, "parse", got.Failures[0].Stage)
	require.Len(t, got.Unassigned, 1)
	assert.Equal(t, "Sketches", got.Unassigned[0].Title)
}

func TestReport_NeedsReviewFromFiles(t *testing.T) {
	r := NewReport(time.Now(), "count")
	r.Files = []FileSummary{{Path: "a.xml"}, {Path: "b.xml", NeedsReview: true}}
	assert.True(t, r.NeedsReview())
	assert.NotEqual(t, NewReport(time.Now(), "count").RunID, r.RunID)
}
