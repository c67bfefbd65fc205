package invoice

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Book is an invoice workbook on disk.
type Book struct {
	Path string
	Options
}

func (b Book) open() (*excelize.File, error) {
	wb, err := excelize.OpenFile(b.Path)
	if err != nil {
		return nil, fmt.Errorf("open invoice workbook: %w", err)
	}
	return wb, nil
}

func (b Book) Menu(now time.Time) (Menu, error) {
	wb, err := b.open()
	if err != nil {
		return Menu{}, err
	}
	defer wb.Close()
	return MenuFor(wb, now, b.Options), nil
}

// Create adds this month's invoice and saves the workbook in place.
func (b Book) Create(now time.Time) (string, error) {
	wb, err := b.open()
	if err != nil {
		return "", err
	}
	defer wb.Close()

	number, err := Create(wb, now, b.Options)
	if err != nil {
		return "", err
	}
	if err := wb.Save(); err != nil {
		return "", fmt.Errorf("save invoice workbook: %w", err)
	}
	return number, nil
}

// ExportName is the file name an exported invoice is saved under.
func ExportName(prefix, number string) string {
	if prefix == "" {
		return fmt.Sprintf("invoice-%s.xlsx", number)
	}
	return fmt.Sprintf("%s-invoice-%s.xlsx", prefix, number)
}

// Export writes a copy of the workbook that holds only the named invoice
// sheet (the active sheet when sheet is empty) to dir/<year>/. It returns the
// written path.
func (b Book) Export(now time.Time, sheet, dir, prefix string) (string, error) {
	wb, err := b.open()
	if err != nil {
		return "", err
	}
	defer wb.Close()

	if sheet == "" {
		sheet = wb.GetSheetName(wb.GetActiveSheetIndex())
	}
	if idx, err := wb.GetSheetIndex(sheet); err != nil || idx < 0 {
		return "", fmt.Errorf("%w: %q", ErrSheetMissing, sheet)
	}
	for _, name := range wb.GetSheetList() {
		if name == sheet {
			continue
		}
		if err := wb.DeleteSheet(name); err != nil {
			return "", fmt.Errorf("drop sheet %s: %w", name, err)
		}
	}
	wb.SetActiveSheet(0)

	outDir := filepath.Join(dir, strconv.Itoa(now.Year()))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	out := filepath.Join(outDir, ExportName(prefix, sheet))
	if err := wb.SaveAs(out); err != nil {
		return "", fmt.Errorf("save export %s: %w", out, err)
	}
	log.Printf("invoice: exported %s to %s", sheet, out)
	return out, nil
}
