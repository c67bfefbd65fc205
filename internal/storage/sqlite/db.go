package sqlite

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Run is one invocation of the bug hunter entry point.
type Run struct {
	ID        int64
	RanAt     time.Time
	Assignee  string
	Upcoming  []string
	Skipped   bool
	Assigned  bool
	ThreadTS  string
	Error     string
	CreatedAt time.Time
}

func (r Run) Status() string {
	switch {
	case r.Error != "":
		return "error"
	case r.Skipped:
		return "skipped"
	default:
		return "ok"
	}
}

// InvoiceEvent records something done to an invoice: created, exported or emailed.
type InvoiceEvent struct {
	ID        int64
	Number    string
	Action    string
	Detail    string
	CreatedAt time.Time
}

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		ran_at     DATETIME NOT NULL,
		assignee   TEXT DEFAULT '',
		upcoming   TEXT DEFAULT '',
		skipped    INTEGER NOT NULL DEFAULT 0,
		assigned   INTEGER NOT NULL DEFAULT 0,
		thread_ts  TEXT DEFAULT '',
		error      TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_runs_ran_at ON runs(ran_at);

	CREATE TABLE IF NOT EXISTS invoice_events (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		number     TEXT NOT NULL,
		action     TEXT NOT NULL,
		detail     TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_invoice_events_number ON invoice_events(number);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func InsertRun(db *sql.DB, r Run) (int64, error) {
	res, err := db.Exec(
		`INSERT INTO runs (ran_at, assignee, upcoming, skipped, assigned, thread_ts, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.RanAt, r.Assignee, strings.Join(r.Upcoming, "\n"), r.Skipped, r.Assigned, r.ThreadTS, r.Error,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecentRuns returns up to limit runs, newest first.
func RecentRuns(db *sql.DB, limit int) ([]Run, error) {
	rows, err := db.Query(
		`SELECT id, ran_at, assignee, upcoming, skipped, assigned, thread_ts, error, created_at
		 FROM runs ORDER BY ran_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var upcoming string
		if err := rows.Scan(&r.ID, &r.RanAt, &r.Assignee, &upcoming, &r.Skipped, &r.Assigned, &r.ThreadTS, &r.Error, &r.CreatedAt); err != nil {
			return nil, err
		}
		if upcoming != "" {
			r.Upcoming = strings.Split(upcoming, "\n")
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func InsertInvoiceEvent(db *sql.DB, e InvoiceEvent) error {
	_, err := db.Exec(
		`INSERT INTO invoice_events (number, action, detail) VALUES (?, ?, ?)`,
		e.Number, e.Action, e.Detail,
	)
	return err
}

// InvoiceEvents lists the events of one invoice, or of all invoices when
// number is empty, oldest first.
func InvoiceEvents(db *sql.DB, number string) ([]InvoiceEvent, error) {
	query := `SELECT id, number, action, detail, created_at FROM invoice_events`
	var args []any
	if number != "" {
		query += ` WHERE number = ?`
		args = append(args, number)
	}
	query += ` ORDER BY id`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []InvoiceEvent
	for rows.Next() {
		var e InvoiceEvent
		if err := rows.Scan(&e.ID, &e.Number, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
