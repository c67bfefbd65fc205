package bughunter

import (
	"context"
	"fmt"
	"log"
	"time"

	"officebot/internal/roster"
)

// Resolver maps a roster cell that is not already a member ID (a display
// name, say) to a member ID. ok is false when no member matches.
type Resolver interface {
	ResolveMemberID(ctx context.Context, value string) (id string, ok bool, err error)
}

// Runner is the single "notify and assign" entry point a schedule invokes.
type Runner struct {
	Source    roster.Source
	Columns   roster.Columns
	Messenger Messenger
	Resolver  Resolver
	Channel   string
	Group     string
	Extras    Extras
	Now       func() time.Time
}

type RunResult struct {
	Assignment roster.Assignment
	Notified   Result
	Assigned   bool
}

// Run reads a fresh roster snapshot, announces the bug hunter and assigns the
// user group. Any failure ends the run; group assignment is never attempted
// after a failed announcement.
func (r *Runner) Run(ctx context.Context) (RunResult, error) {
	var res RunResult
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}

	rows, err := r.Source.Rows(ctx)
	if err != nil {
		return res, fmt.Errorf("read roster: %w", err)
	}
	a, err := roster.Parse(rows, r.Columns)
	if err != nil {
		log.Printf("bug hunter: roster error: %v", err)
		return res, err
	}
	if r.Resolver != nil {
		id, ok, err := r.Resolver.ResolveMemberID(ctx, a.Current)
		if err != nil {
			return res, fmt.Errorf("resolve assignee %q: %w", a.Current, err)
		}
		if !ok {
			return res, fmt.Errorf("%w: assignee %q matches no member", roster.ErrMalformedRoster, a.Current)
		}
		a.Current = id
	}
	res.Assignment = a

	n := &Notifier{Messenger: r.Messenger, Channel: r.Channel, Extras: r.Extras}
	res.Notified, err = n.Notify(ctx, a, now, r.Source.BoardURL())
	if err != nil {
		return res, err
	}

	if r.Group != "" {
		if err := Assign(ctx, r.Messenger, a, r.Group); err != nil {
			return res, err
		}
		res.Assigned = true
	}
	return res, nil
}
