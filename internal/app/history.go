package app

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"officebot/internal/storage/sqlite"
)

type HistoryCmd struct {
	Limit   int    `help:"Number of runs to list." default:"20"`
	Invoice string `help:"Only list events of this invoice number."`
}

func (cmd *HistoryCmd) Run(ctx *Context) error {
	runs, err := sqlite.RecentRuns(ctx.DB, cmd.Limit)
	if err != nil {
		return fmt.Errorf("load runs: %w", err)
	}
	events, err := sqlite.InvoiceEvents(ctx.DB, cmd.Invoice)
	if err != nil {
		return fmt.Errorf("load invoice events: %w", err)
	}

	w := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RAN AT\tSTATUS\tASSIGNEE\tUPCOMING\tASSIGNED\tDETAIL")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n",
			r.RanAt.Format("2006-01-02 15:04"),
			r.Status(),
			r.Assignee,
			strings.Join(r.Upcoming, ","),
			r.Assigned,
			r.Error,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	fmt.Fprintln(ctx.Out)
	w = tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INVOICE\tACTION\tDETAIL\tAT")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Number, e.Action, e.Detail, e.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
