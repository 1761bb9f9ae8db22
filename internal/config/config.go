package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/Veraticus/labelgene/internal/common"
	"github.com/spf13/viper"
)

// Numbering modes for box labels.
const (
	// NumberingContinuous prints the FIRST - LAST folder range on box labels.
	NumberingContinuous = "continuous"
	// NumberingCount prints the total folder count on box labels.
	NumberingCount = "count"
)

// Record orders.
const (
	SortDocument = "document"
	SortBox      = "box"
)

// Config holds the settings for a labelling run.
type Config struct {
	InputDir        string
	OutputDir       string
	DownloadsDir    string
	TemplateDir     string
	Numbering       string
	Sort            string
	Series          string
	Boxes           string
	LabelType       int
	ImplicitStart   int
	Workers         int
	ImportDownloads bool
	DryRun          bool
	WriteManifest   bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("folders.implicit_start_value", 1)
	v.SetDefault("labels.numbering", NumberingContinuous)
	v.SetDefault("labels.type", 1)
	v.SetDefault("labels.sort", SortDocument)
	v.SetDefault("batch.workers", runtime.NumCPU())
	v.SetDefault("downloads.dir", "~/Downloads")
	v.SetDefault("downloads.import", false)
	v.SetDefault("mailmerge.manifest", true)
}

// Load reads the run configuration from v.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	cfg := Config{
		InputDir:        ExpandPath(v.GetString("input.dir")),
		OutputDir:       ExpandPath(v.GetString("output.dir")),
		DownloadsDir:    ExpandPath(v.GetString("downloads.dir")),
		TemplateDir:     ExpandPath(v.GetString("mailmerge.templates")),
		ImportDownloads: v.GetBool("downloads.import"),
		Numbering:       strings.ToLower(v.GetString("labels.numbering")),
		Sort:            strings.ToLower(v.GetString("labels.sort")),
		LabelType:       v.GetInt("labels.type"),
		Series:          v.GetString("labels.series"),
		Boxes:           v.GetString("labels.boxes"),
		ImplicitStart:   v.GetInt("folders.implicit_start_value"),
		Workers:         v.GetInt("batch.workers"),
		DryRun:          v.GetBool("run.dry_run"),
		WriteManifest:   v.GetBool("mailmerge.manifest"),
	}

	if cfg.InputDir == "" {
		cfg.InputDir = "."
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = cfg.InputDir
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.ImplicitStart < 1 {
		return fmt.Errorf("%w: implicit start value must be at least 1, got %d", common.ErrInvalidConfig, c.ImplicitStart)
	}

	switch c.Numbering {
	case NumberingContinuous, NumberingCount:
	default:
		return fmt.Errorf("%w: numbering must be %q or %q, got %q",
			common.ErrInvalidConfig, NumberingContinuous, NumberingCount, c.Numbering)
	}

	switch c.Sort {
	case SortDocument, SortBox:
	default:
		return fmt.Errorf("%w: sort must be %q or %q, got %q", common.ErrInvalidConfig, SortDocument, SortBox, c.Sort)
	}

	if c.LabelType < 1 || c.LabelType > 8 {
		return fmt.Errorf("%w: label type must be between 1 and 8, got %d", common.ErrInvalidConfig, c.LabelType)
	}

	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive", common.ErrInvalidConfig)
	}

	return nil
}
