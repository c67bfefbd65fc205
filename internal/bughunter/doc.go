// Package bughunter performs the daily administration of the team's bug
// hunter: the engineer holding first-responder duty for bug reports and
// support inquiries. Each run announces today's bug hunter and the upcoming
// rotation in a channel, then makes them the only member of a user group.
package bughunter
