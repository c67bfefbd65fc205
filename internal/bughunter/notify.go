package bughunter

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"officebot/internal/calendar"
	"officebot/internal/roster"
)

// ErrMessaging wraps any failure reported by the messaging collaborator.
var ErrMessaging = errors.New("messaging failure")

// Message is an outbound chat post. A non-empty ThreadTS posts it as a reply.
type Message struct {
	Channel  string
	Text     string
	ThreadTS string
}

// Posted is the collaborator's acknowledgement of a Message. Timestamp is the
// handle replies are threaded under.
type Posted struct {
	Channel   string
	Timestamp string
	Text      string
}

// Messenger is the chat service the bug hunter is announced through.
type Messenger interface {
	PostMessage(ctx context.Context, msg Message) (Posted, error)
	UpdateGroupMembers(ctx context.Context, group string, members []string) error
}

// Plan returns the texts to post for a, in order: the status message, the
// rotation thread reply, and the optional extras reply. Nothing is planned
// on weekends.
func Plan(a roster.Assignment, ref time.Time, boardURL string, extras Extras) []string {
	if !calendar.IsWorkday(ref) {
		return nil
	}
	texts := []string{StatusMessage(a), RotationMessage(a, boardURL)}
	if msg := ExtrasMessage(extras); msg != "" {
		texts = append(texts, msg)
	}
	return texts
}

// Result describes what Notify did. Skipped is set on weekends, when no
// message was sent.
type Result struct {
	Skipped bool
	Posts   []Posted
}

type Notifier struct {
	Messenger Messenger
	Channel   string
	Extras    Extras
}

// Notify posts the planned messages one after another. Every message after the
// first is threaded under the first one's timestamp, so a failed or handle-less
// first post aborts the sequence.
func (n *Notifier) Notify(ctx context.Context, a roster.Assignment, ref time.Time, boardURL string) (Result, error) {
	texts := Plan(a, ref, boardURL, n.Extras)
	if len(texts) == 0 {
		log.Printf("bug hunter: weekend (%s), not notifying anybody", ref.Weekday())
		return Result{Skipped: true}, nil
	}

	var res Result
	first, err := n.Messenger.PostMessage(ctx, Message{Channel: n.Channel, Text: texts[0]})
	if err != nil {
		return res, fmt.Errorf("%w: post status message: %w", ErrMessaging, err)
	}
	res.Posts = append(res.Posts, first)
	if first.Timestamp == "" {
		return res, fmt.Errorf("%w: status message returned no thread timestamp", ErrMessaging)
	}
	log.Printf("bug hunter: announced current=%s channel=%s ts=%s", a.Current, first.Channel, first.Timestamp)

	for i, text := range texts[1:] {
		posted, err := n.Messenger.PostMessage(ctx, Message{
			Channel:  n.Channel,
			Text:     text,
			ThreadTS: first.Timestamp,
		})
		if err != nil {
			return res, fmt.Errorf("%w: post thread reply %d: %w", ErrMessaging, i+1, err)
		}
		res.Posts = append(res.Posts, posted)
	}
	log.Printf("bug hunter: rotation posted upcoming=%d replies=%d", len(a.Upcoming), len(texts)-1)
	return res, nil
}

// Assign replaces the membership of group with the current bug hunter only.
func Assign(ctx context.Context, m Messenger, a roster.Assignment, group string) error {
	if err := m.UpdateGroupMembers(ctx, group, []string{a.Current}); err != nil {
		return fmt.Errorf("%w: update group %s: %w", ErrMessaging, group, err)
	}
	log.Printf("bug hunter: assigned group=%s member=%s", group, a.Current)
	return nil
}
