package bughunter

import (
	"context"
	"errors"
	"fmt"

	"officebot/internal/roster"
)

type groupUpdate struct {
	group   string
	members []string
}

type fakeMessenger struct {
	posts    []Message
	updates  []groupUpdate
	failPost map[int]error
	failUpd  error
	noTS     bool
}

func (f *fakeMessenger) PostMessage(_ context.Context, msg Message) (Posted, error) {
	n := len(f.posts)
	f.posts = append(f.posts, msg)
	if err := f.failPost[n]; err != nil {
		return Posted{}, err
	}
	ts := fmt.Sprintf("123.%03d", 456+n)
	if f.noTS {
		ts = ""
	}
	return Posted{Channel: msg.Channel, Timestamp: ts, Text: msg.Text}, nil
}

func (f *fakeMessenger) UpdateGroupMembers(_ context.Context, group string, members []string) error {
	f.updates = append(f.updates, groupUpdate{group: group, members: append([]string(nil), members...)})
	return f.failUpd
}

type staticSource struct {
	rows []roster.Row
	url  string
	err  error
}

func (s staticSource) Rows(context.Context) ([]roster.Row, error) { return s.rows, s.err }
func (s staticSource) BoardURL() string                           { return s.url }

type mapResolver map[string]string

func (m mapResolver) ResolveMemberID(_ context.Context, value string) (string, bool, error) {
	if value == "boom" {
		return "", false, errors.New("users.list failed")
	}
	id, ok := m[value]
	return id, ok, nil
}

// sampleRows mirrors the shape of the real sheet: ID in column O, rotation in column R.
func sampleRows() []roster.Row {
	row := func(id, next string) roster.Row {
		r := make(roster.Row, 18)
		r[14] = id
		r[17] = next
		return r
	}
	return []roster.Row{
		make(roster.Row, 18),
		row("U000000000X", "Bob"),
		row("           ", "Alice"),
		row("           ", "Charlie"),
		row("", ""),
		row("", "Dave"),
	}
}

var sampleColumns = roster.Columns{Assignee: 14, NextAssignee: 17}
