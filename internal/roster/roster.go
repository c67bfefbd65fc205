package roster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrMalformedRoster reports a roster table that is missing the rows or
// columns the rotation is read from.
var ErrMalformedRoster = errors.New("malformed roster")

// Row is one row of the roster table. Row 0 of a table is its header.
type Row []string

// Columns holds the zero-based positions of the two columns the rotation
// is read from.
type Columns struct {
	Assignee     int
	NextAssignee int
}

// ColumnsFromNames converts spreadsheet column letters ("O", "R") to Columns.
func ColumnsFromNames(assignee, nextAssignee string) (Columns, error) {
	a, err := excelize.ColumnNameToNumber(strings.TrimSpace(assignee))
	if err != nil {
		return Columns{}, fmt.Errorf("assignee column %q: %w", assignee, err)
	}
	n, err := excelize.ColumnNameToNumber(strings.TrimSpace(nextAssignee))
	if err != nil {
		return Columns{}, fmt.Errorf("next assignee column %q: %w", nextAssignee, err)
	}
	return Columns{Assignee: a - 1, NextAssignee: n - 1}, nil
}

// Width is the minimum row width both columns fit in.
func (c Columns) Width() int {
	return max(c.Assignee, c.NextAssignee) + 1
}

// Assignment is today's bug hunter and the ordered rotation after them.
type Assignment struct {
	Current  string
	Upcoming []string
}

// Parse derives the Assignment from a roster snapshot. The current assignee
// comes from the first data row. The rotation is read top to bottom and stops
// before the first row whose next-assignee cell is blank; only rows that are
// read are validated.
func Parse(rows []Row, cols Columns) (Assignment, error) {
	if len(rows) < 2 {
		return Assignment{}, fmt.Errorf("%w: want a header and at least one data row, got %d rows", ErrMalformedRoster, len(rows))
	}
	current, err := cell(rows, 1, cols.Assignee)
	if err != nil {
		return Assignment{}, err
	}
	if current == "" {
		return Assignment{}, fmt.Errorf("%w: assignee cell is empty in row 1", ErrMalformedRoster)
	}
	a := Assignment{Current: current, Upcoming: []string{}}
	for i := 1; i < len(rows); i++ {
		next, err := cell(rows, i, cols.NextAssignee)
		if err != nil {
			return Assignment{}, err
		}
		if next == "" {
			break
		}
		a.Upcoming = append(a.Upcoming, next)
	}
	return a, nil
}

func cell(rows []Row, row, col int) (string, error) {
	if col < 0 || col >= len(rows[row]) {
		return "", fmt.Errorf("%w: row %d has %d columns, column %d requested", ErrMalformedRoster, row, len(rows[row]), col)
	}
	return strings.TrimSpace(rows[row][col]), nil
}
