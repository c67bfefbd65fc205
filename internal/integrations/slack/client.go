package slackbot

import (
	"context"
	"log"
	"strings"

	"officebot/internal/bughunter"
	"officebot/internal/httpx"

	"github.com/slack-go/slack"
)

// Client implements bughunter.Messenger and bughunter.Resolver on top of the
// Slack Web API.
type Client struct {
	api   *slack.Client
	users userCache
}

// New builds a Client that talks to Slack through the shared external HTTP
// client. Extra options are applied last, so tests can point it elsewhere.
func New(token string, opts ...slack.Option) *Client {
	all := append([]slack.Option{slack.OptionHTTPClient(httpx.Client())}, opts...)
	return &Client{api: slack.New(token, all...)}
}

func (c *Client) PostMessage(ctx context.Context, msg bughunter.Message) (bughunter.Posted, error) {
	opts := []slack.MsgOption{slack.MsgOptionText(msg.Text, false)}
	if msg.ThreadTS != "" {
		opts = append(opts, slack.MsgOptionTS(msg.ThreadTS))
	}
	channel, ts, err := c.api.PostMessageContext(ctx, msg.Channel, opts...)
	if err != nil {
		log.Printf("slack chat.postMessage channel=%s thread=%s error: %v", msg.Channel, msg.ThreadTS, err)
		return bughunter.Posted{}, err
	}
	log.Printf("slack chat.postMessage channel=%s thread=%s ts=%s", channel, msg.ThreadTS, ts)
	return bughunter.Posted{Channel: channel, Timestamp: ts, Text: msg.Text}, nil
}

// UpdateGroupMembers replaces the whole membership of a user group.
func (c *Client) UpdateGroupMembers(ctx context.Context, group string, members []string) error {
	ug, err := c.api.UpdateUserGroupMembersContext(ctx, group, strings.Join(members, ","))
	if err != nil {
		log.Printf("slack usergroups.users.update group=%s error: %v", group, err)
		return err
	}
	log.Printf("slack usergroups.users.update group=%s users=%d", ug.ID, len(ug.Users))
	return nil
}
