package roster

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Source supplies a roster snapshot and the link to the board it came from.
type Source interface {
	Rows(ctx context.Context) ([]Row, error)
	BoardURL() string
}

// WorkbookSource reads the roster from a sheet of an .xlsx workbook. An empty
// Sheet means the workbook's active sheet. Rows are padded to at least the
// width Columns needs, so a column left entirely blank reads as empty cells.
type WorkbookSource struct {
	Path    string
	Sheet   string
	URL     string
	Columns Columns
}

func (s WorkbookSource) BoardURL() string {
	return s.URL
}

// Rows returns the sheet's data range. Every row is padded to the width of
// the sheet dimension so that trailing blank cells read as empty strings.
func (s WorkbookSource) Rows(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open roster workbook: %w", err)
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: sheet %q not found in %s", ErrMalformedRoster, sheet, s.Path)
	}

	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read roster sheet %q: %w", sheet, err)
	}
	width := max(sheetWidth(f, sheet), s.Columns.Width())
	for _, r := range raw {
		width = max(width, len(r))
	}
	rows := make([]Row, 0, len(raw))
	for _, r := range raw {
		if len(r) < width {
			padded := make([]string, width)
			copy(padded, r)
			r = padded
		}
		rows = append(rows, Row(r))
	}
	log.Printf("roster: read sheet=%s rows=%d width=%d", sheet, len(rows), width)
	return rows, nil
}

// sheetWidth returns the column count of the sheet's declared dimension, or
// zero if the dimension is missing.
func sheetWidth(f *excelize.File, sheet string) int {
	dim, err := f.GetSheetDimension(sheet)
	if err != nil || dim == "" {
		return 0
	}
	last := dim
	if _, after, ok := strings.Cut(dim, ":"); ok {
		last = after
	}
	col, _, err := excelize.CellNameToCoordinates(last)
	if err != nil {
		return 0
	}
	return col
}
