package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"officebot/internal/bughunter"
	slackbot "officebot/internal/integrations/slack"
	"officebot/internal/roster"
	"officebot/internal/schedule"
	"officebot/internal/storage/sqlite"
)

type NotifyCmd struct{}

func (cmd *NotifyCmd) Run(ctx *Context) error {
	if err := ctx.Config.ValidateBugHunter(); err != nil {
		return err
	}
	res, err := runAndRecord(context.Background(), ctx.DB, newRunner(ctx))
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, describeRun(res))
	return nil
}

type ServeCmd struct{}

func (cmd *ServeCmd) Run(ctx *Context) error {
	if err := ctx.Config.ValidateBugHunter(); err != nil {
		return err
	}
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := newRunner(ctx)
	log.Printf("Starting bug hunter scheduler schedule=%q", ctx.Config.NotifySchedule)
	err := schedule.Run(sigCtx, "bug hunter", ctx.Config.NotifySchedule, ctx.Config.Location, func(jobCtx context.Context) error {
		res, err := runAndRecord(jobCtx, ctx.DB, runner)
		if err != nil {
			return err
		}
		log.Printf("bug hunter: %s", describeRun(res))
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newRunner(ctx *Context) *bughunter.Runner {
	cfg := ctx.Config
	client := slackbot.New(cfg.SlackBotToken)
	return &bughunter.Runner{
		Source: roster.WorkbookSource{
			Path:    cfg.RosterPath,
			Sheet:   cfg.RosterSheet,
			URL:     cfg.RosterBoardURL,
			Columns: cfg.Columns,
		},
		Columns:   cfg.Columns,
		Messenger: client,
		Resolver:  client,
		Channel:   cfg.SlackChannel,
		Group:     cfg.SlackUserGroup,
		Extras:    cfg.Extras(),
		Now:       ctx.now,
	}
}

// runAndRecord runs r once and stores the outcome, failed runs included.
func runAndRecord(ctx context.Context, db *sql.DB, r *bughunter.Runner) (bughunter.RunResult, error) {
	ranAt := time.Now()
	if r.Now != nil {
		ranAt = r.Now()
	}
	res, runErr := r.Run(ctx)

	rec := sqlite.Run{
		RanAt:    ranAt,
		Assignee: res.Assignment.Current,
		Upcoming: res.Assignment.Upcoming,
		Skipped:  res.Notified.Skipped,
		Assigned: res.Assigned,
	}
	if len(res.Notified.Posts) > 0 {
		rec.ThreadTS = res.Notified.Posts[0].Timestamp
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	if _, err := sqlite.InsertRun(db, rec); err != nil {
		log.Printf("bug hunter: record run failed: %v", err)
	}
	return res, runErr
}

func describeRun(res bughunter.RunResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "assignee=%s upcoming=%d", res.Assignment.Current, len(res.Assignment.Upcoming))
	if res.Notified.Skipped {
		b.WriteString(" notified=skipped")
	} else {
		fmt.Fprintf(&b, " notified=%d", len(res.Notified.Posts))
	}
	fmt.Fprintf(&b, " assigned=%t", res.Assigned)
	return b.String()
}
