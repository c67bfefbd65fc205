package slackbot

import (
	"time"

	"officebot/internal/roster"
)

var workdayRef = time.Date(2023, 3, 3, 9, 0, 0, 0, time.UTC)

func sampleAssignment() roster.Assignment {
	return roster.Assignment{Current: "U000000000X", Upcoming: []string{"Bob", "Alice", "Charlie"}}
}
