package mailmerge

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the merge manifest written into the output directory.
const ManifestFileName = "merge-manifest.yaml"

// Manifest is the hand-off to the external merge runner.
type Manifest struct {
	GeneratedAt time.Time `yaml:"generated_at"`
	RunID       string    `yaml:"run_id"`
	TemplateDir string    `yaml:"template_dir,omitempty"`
	Plans       []Plan    `yaml:"plans"`
}

// Jobs counts the jobs across all plans.
func (m Manifest) Jobs() int {
	n := 0
	for _, p := range m.Plans {
		n += len(p.Jobs)
	}
	return n
}

// ManifestTrigger hands merges off by writing a YAML manifest that the
// Word macro runner picks up. It never runs Word itself.
type ManifestTrigger struct {
	logger *slog.Logger
	dir    string
}

// NewManifestTrigger creates a trigger writing into dir.
func NewManifestTrigger(dir string, logger *slog.Logger) *ManifestTrigger {
	if logger == nil {
		logger = slog.Default()
	}
	return &ManifestTrigger{dir: dir, logger: logger}
}

// Path returns where the manifest is written.
func (t *ManifestTrigger) Path() string {
	return filepath.Join(t.dir, ManifestFileName)
}

// Trigger writes m. A manifest without jobs is not written.
func (t *ManifestTrigger) Trigger(ctx context.Context, m Manifest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.Jobs() == 0 {
		t.logger.Info("no merge jobs to hand off")
		return nil
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.MkdirAll(t.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if err := os.WriteFile(t.Path(), data, 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	t.logger.Info("merge manifest written", "path", t.Path(), "plans", len(m.Plans), "jobs", m.Jobs())
	return nil
}

// ReadManifest loads a manifest written by Trigger.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided path
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return m, nil
}
