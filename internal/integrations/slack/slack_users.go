package slackbot

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/slack-go/slack"
)

const userCacheTTL = 5 * time.Minute

type userCache struct {
	sync.Mutex
	users     []slack.User
	fetchedAt time.Time
}

func (c *Client) cachedUsers(ctx context.Context) ([]slack.User, error) {
	c.users.Lock()
	defer c.users.Unlock()

	if c.users.users != nil && time.Since(c.users.fetchedAt) < userCacheTTL {
		return c.users.users, nil
	}

	users, err := c.api.GetUsersContext(ctx)
	if err != nil {
		return nil, err
	}
	c.users.users = users
	c.users.fetchedAt = time.Now()
	return users, nil
}

// ResolveMemberID returns value unchanged when it already looks like a member
// ID, and otherwise matches it case-insensitively against user names, real
// names and display names.
func (c *Client) ResolveMemberID(ctx context.Context, value string) (string, bool, error) {
	val := strings.TrimPrefix(strings.TrimSpace(value), "@")
	if isLikelySlackID(val) {
		return val, true, nil
	}
	if val == "" {
		return "", false, nil
	}

	users, err := c.cachedUsers(ctx)
	if err != nil {
		log.Printf("resolve users: get users error: %v", err)
		return "", false, err
	}
	key := strings.ToLower(val)
	for _, user := range users {
		if user.Deleted {
			continue
		}
		for _, n := range []string{user.Name, user.RealName, user.Profile.DisplayName} {
			if strings.ToLower(strings.TrimSpace(n)) == key {
				log.Printf("resolve users: %q -> %s", val, user.ID)
				return user.ID, true, nil
			}
		}
	}
	log.Printf("resolve users: %q unresolved among %d users", val, len(users))
	return "", false, nil
}

func isLikelySlackID(val string) bool {
	if len(val) < 9 {
		return false
	}
	for i, r := range val {
		if i == 0 {
			if r != 'U' && r != 'W' {
				return false
			}
			continue
		}
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
