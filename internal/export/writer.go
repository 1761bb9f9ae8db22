package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/labelgene/internal/labels"
	"github.com/Veraticus/labelgene/internal/model"
	"github.com/xuri/excelize/v2"
)

// Writer writes label records as xlsx data sources.
type Writer struct {
	logger *slog.Logger
	config Config
}

// NewWriter creates a new xlsx writer.
func NewWriter(config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{config: config, logger: logger}, nil
}

// Write writes the folder and box data sources of set.
func (w *Writer) Write(ctx context.Context, set labels.Set, variant Variant) (Paths, error) {
	paths := DataPaths(w.config.Dir, set.Collection, set.CallNumber, variant)

	w.logger.Info("writing data sources",
		"collection", set.Collection,
		"folders", len(set.Folders),
		"boxes", len(set.Boxes))

	if err := os.MkdirAll(w.config.Dir, 0o750); err != nil {
		return Paths{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := w.WriteFolders(ctx, paths.Folders, set.Folders); err != nil {
		return Paths{}, err
	}
	if err := w.WriteBoxes(ctx, paths.Boxes, set.Boxes); err != nil {
		return Paths{}, err
	}

	w.logger.Info("data sources written",
		"folder_data", paths.Folders,
		"box_data", paths.Boxes)
	return paths, nil
}

// WriteFolders writes folder label records to path.
func (w *Writer) WriteFolders(ctx context.Context, path string, records []model.LabelRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.Row())
	}
	return w.writeSheet(ctx, path, w.config.FolderSheet, model.FolderColumns(), rows)
}

// WriteBoxes writes box label records to path.
func (w *Writer) WriteBoxes(ctx context.Context, path string, boxes []model.BoxRecord) error {
	rows := make([][]string, 0, len(boxes))
	for _, b := range boxes {
		rows = append(rows, b.Row())
	}
	return w.writeSheet(ctx, path, w.config.BoxSheet, model.BoxColumns(), rows)
}

// writeSheet streams header and rows into a single-sheet workbook.
func (w *Writer) writeSheet(ctx context.Context, path, sheet string, header []string, rows [][]string) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close workbook: %w", closeErr)
		}
	}()

	if err = f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	var headerOpts []excelize.RowOpts
	if w.config.EnableFormatting {
		opts, formatErr := w.applyFormatting(f, sw, len(header))
		if formatErr != nil {
			// Don't fail the write if formatting fails
			w.logger.Warn("failed to apply formatting", "path", path, "error", formatErr)
		} else {
			headerOpts = opts
		}
	}

	if err = sw.SetRow("A1", toCells(header), headerOpts...); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		if i%500 == 0 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
		}
		cell, cellErr := excelize.CoordinatesToCellName(1, i+2)
		if cellErr != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, cellErr)
		}
		if err = sw.SetRow(cell, toCells(row)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err = sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err = f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}

	w.logger.Debug("wrote sheet", "path", path, "sheet", sheet, "rows", len(rows))
	return nil
}

// applyFormatting freezes and bolds the header row and widens the columns.
// It must run before any row is written to the stream.
func (w *Writer) applyFormatting(f *excelize.File, sw *excelize.StreamWriter, columns int) ([]excelize.RowOpts, error) {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, err
	}
	if err := sw.SetColWidth(1, columns, 22); err != nil {
		return nil, err
	}
	return []excelize.RowOpts{{StyleID: style}}, nil
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
