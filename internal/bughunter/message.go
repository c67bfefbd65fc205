package bughunter

import (
	"fmt"
	"strings"

	"officebot/internal/roster"
)

// Link is a titled URL listed in the informational follow-up message.
type Link struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// Extras is the optional static content posted as a third threaded message.
type Extras struct {
	Links    []Link
	Reminder string
}

func (e Extras) empty() bool {
	return len(e.Links) == 0 && strings.TrimSpace(e.Reminder) == ""
}

// StatusMessage announces the current bug hunter with a mention.
func StatusMessage(a roster.Assignment) string {
	return fmt.Sprintf("Today's bug hunter is <@%s>", a.Current)
}

// RotationMessage lists the upcoming bug hunters as inline-code mentions so
// that nobody gets pinged, followed by a link to the roster board.
func RotationMessage(a roster.Assignment, boardURL string) string {
	var b strings.Builder
	b.WriteString("The bug hunter rotation continues as follows:\n\n")
	for _, name := range a.Upcoming {
		fmt.Fprintf(&b, "• `@%s`\n", name)
	}
	fmt.Fprintf(&b, "Check out the <%s|Bug Hunters> slide for more info.", boardURL)
	return b.String()
}

// ExtrasMessage renders e, or returns "" when there is nothing to say.
func ExtrasMessage(e Extras) string {
	if e.empty() {
		return ""
	}
	var lines []string
	if len(e.Links) > 0 {
		lines = append(lines, "Useful links:")
		for _, l := range e.Links {
			title := strings.TrimSpace(l.Title)
			if title == "" {
				lines = append(lines, fmt.Sprintf("• <%s>", l.URL))
				continue
			}
			lines = append(lines, fmt.Sprintf("• <%s|%s>", l.URL, title))
		}
	}
	if r := strings.TrimSpace(e.Reminder); r != "" {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, r)
	}
	return strings.Join(lines, "\n")
}
