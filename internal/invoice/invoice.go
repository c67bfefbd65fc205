// Package invoice keeps a workbook of monthly invoices, one sheet per month,
// each copied from a template sheet and named after its invoice number.
package invoice

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"officebot/internal/calendar"

	"github.com/xuri/excelize/v2"
)

var (
	ErrTemplateMissing = errors.New("invoice template sheet not found")
	ErrInvoiceExists   = errors.New("invoice already exists")
	ErrSheetMissing    = errors.New("invoice sheet not found")
)

const (
	DefaultTemplateSheet = "YYYY-NNN"
	DefaultDateCell      = "F12"
	DefaultTabColor      = "#6aa84f"
)

// Number is the invoice number for the month containing now, e.g. "2023-009".
func Number(now time.Time) string {
	return calendar.PeriodCode(now)
}

// IssueDate is the last day of the month containing now.
func IssueDate(now time.Time) time.Time {
	return calendar.EndOfMonth(now)
}

type Options struct {
	TemplateSheet string
	DateCell      string
	TabColor      string
}

func (o Options) withDefaults() Options {
	if o.TemplateSheet == "" {
		o.TemplateSheet = DefaultTemplateSheet
	}
	if o.DateCell == "" {
		o.DateCell = DefaultDateCell
	}
	if o.TabColor == "" {
		o.TabColor = DefaultTabColor
	}
	return o
}

// Menu is what can be done with the workbook right now.
type Menu struct {
	Invoices  []string
	Next      string
	CanCreate bool
	Current   string
}

// MenuFor lists the invoice sheets of wb. Creating is offered only while the
// sheet for now's invoice number does not exist. Current is the active sheet.
func MenuFor(wb *excelize.File, now time.Time, opts Options) Menu {
	opts = opts.withDefaults()
	m := Menu{Next: Number(now), Current: wb.GetSheetName(wb.GetActiveSheetIndex())}
	for _, name := range wb.GetSheetList() {
		if name == opts.TemplateSheet {
			continue
		}
		m.Invoices = append(m.Invoices, name)
	}
	m.CanCreate = !slices.Contains(wb.GetSheetList(), m.Next)
	return m
}

// Create copies the template sheet to a new sheet named after now's invoice
// number, stamps the issue date into the date cell, colors its tab, moves it
// to the first tab and makes it the active sheet.
func Create(wb *excelize.File, now time.Time, opts Options) (string, error) {
	opts = opts.withDefaults()
	number := Number(now)

	tmpl, err := wb.GetSheetIndex(opts.TemplateSheet)
	if err != nil || tmpl < 0 {
		return "", fmt.Errorf("%w: %q", ErrTemplateMissing, opts.TemplateSheet)
	}
	if idx, err := wb.GetSheetIndex(number); err == nil && idx >= 0 {
		return "", fmt.Errorf("%w: %s", ErrInvoiceExists, number)
	}

	idx, err := wb.NewSheet(number)
	if err != nil {
		return "", fmt.Errorf("new sheet %s: %w", number, err)
	}
	if err := wb.CopySheet(tmpl, idx); err != nil {
		return "", fmt.Errorf("copy template to %s: %w", number, err)
	}
	if err := wb.SetCellValue(number, opts.DateCell, IssueDate(now)); err != nil {
		return "", fmt.Errorf("set issue date %s!%s: %w", number, opts.DateCell, err)
	}
	color := strings.ToUpper(strings.TrimPrefix(opts.TabColor, "#"))
	if err := wb.SetSheetProps(number, &excelize.SheetPropsOptions{TabColorRGB: &color}); err != nil {
		return "", fmt.Errorf("set tab color %s: %w", number, err)
	}
	if first := wb.GetSheetList()[0]; first != number {
		if err := wb.MoveSheet(number, first); err != nil {
			return "", fmt.Errorf("move %s to the first tab: %w", number, err)
		}
	}
	if idx, err = wb.GetSheetIndex(number); err != nil {
		return "", fmt.Errorf("locate %s: %w", number, err)
	}
	wb.SetActiveSheet(idx)

	log.Printf("invoice: created %s from %s issue_date=%s", number, opts.TemplateSheet, IssueDate(now).Format("2006-01-02"))
	return number, nil
}
