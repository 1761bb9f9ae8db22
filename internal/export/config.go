// Package export writes label records to xlsx mail-merge data sources and
// records each run in a JSON report.
package export

import (
	"fmt"
)

// Sheet names used for the data sources.
const (
	DefaultFolderSheet = "Folders"
	DefaultBoxSheet    = "Boxes"
)

// Config holds the configuration for the xlsx writer.
type Config struct {
	Dir              string
	FolderSheet      string
	BoxSheet         string
	EnableFormatting bool
}

// DefaultConfig returns a Config writing into dir.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:              dir,
		FolderSheet:      DefaultFolderSheet,
		BoxSheet:         DefaultBoxSheet,
		EnableFormatting: true,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("output directory is required")
	}
	if c.FolderSheet == "" || c.BoxSheet == "" {
		return fmt.Errorf("sheet names must not be empty")
	}
	if c.FolderSheet == c.BoxSheet {
		return fmt.Errorf("folder and box sheets must differ")
	}
	return nil
}
