// Package model defines the job board's data structures and the post
// status vocabulary shared by the store, web and template layers.
//
// PostStatus values mirror jobpost.status in PostgreSQL. Only CONFIRMED,
// REVIEWED, ANNOUNCEMENT and CLOSED posts are listed publicly.
package model

import (
	"fmt"
	"time"
)

// PostStatus is the integer status stored on a job post.
type PostStatus int

const (
	StatusDraft        PostStatus = 0
	StatusPending      PostStatus = 1
	StatusConfirmed    PostStatus = 2
	StatusReviewed     PostStatus = 3
	StatusRejected     PostStatus = 4
	StatusWithdrawn    PostStatus = 5
	StatusFlagged      PostStatus = 6
	StatusSpam         PostStatus = 7
	StatusModerated    PostStatus = 8
	StatusAnnouncement PostStatus = 9
	StatusClosed       PostStatus = 10
)

var statusNames = map[PostStatus]string{
	StatusDraft:        "DRAFT",
	StatusPending:      "PENDING",
	StatusConfirmed:    "CONFIRMED",
	StatusReviewed:     "REVIEWED",
	StatusRejected:     "REJECTED",
	StatusWithdrawn:    "WITHDRAWN",
	StatusFlagged:      "FLAGGED",
	StatusSpam:         "SPAM",
	StatusModerated:    "MODERATED",
	StatusAnnouncement: "ANNOUNCEMENT",
	StatusClosed:       "CLOSED",
}

// Listed are the statuses visible on public listings.
var Listed = []PostStatus{StatusConfirmed, StatusReviewed, StatusAnnouncement, StatusClosed}

const (
	// AgeLimit is how long any post stays listed.
	AgeLimit = 30 * 24 * time.Hour
	// NewLimit is how long an unpinned post stays on the front page.
	NewLimit = 24 * time.Hour
)

func (s PostStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("PostStatus(%d)", int(s))
}

// ParsePostStatus converts a status name to a PostStatus, returning an error
// for unknown values.
func ParsePostStatus(name string) (PostStatus, error) {
	for st, n := range statusNames {
		if n == name {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown post status %q", name)
}

// IsListed reports whether posts with status s appear on public listings.
func IsListed(s PostStatus) bool {
	for _, l := range Listed {
		if l == s {
			return true
		}
	}
	return false
}
