package model

import "time"

// DefaultBoardName is the board served on the bare domain. Listings on it
// are not restricted to posts attached to the board.
const DefaultBoardName = "www"

// Board is a sub-site of the job board, selected by subdomain.
type Board struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
}

// IsDefault reports whether b is the catch-all www board.
func (b *Board) IsDefault() bool { return b != nil && b.Name == DefaultBoardName }

// JobType is a post's employment type, e.g. "fulltime".
type JobType struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
}

// JobCategory is a post's functional area, e.g. "programming".
type JobCategory struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
}

// JobPost is the listing view of a post. The long description and
// application fields are deferred and never loaded by listing queries.
type JobPost struct {
	ID          int64       `json:"id"`
	Hashid      string      `json:"hashid"`
	Datetime    time.Time   `json:"datetime"`
	Headline    string      `json:"headline"`
	Type        JobType     `json:"type"`
	Category    JobCategory `json:"category"`
	Location    string      `json:"location"`
	CompanyName string      `json:"companyName"`
	CompanyURL  string      `json:"companyUrl"`
	EmailDomain string      `json:"emailDomain"`
	Pinned      bool        `json:"pinned"`
	Status      PostStatus  `json:"status"`
}

// TagCount is one row of the tag cloud.
type TagCount struct {
	Name   string `json:"name"`
	Title  string `json:"title"`
	Public bool   `json:"public"`
	Count  int64  `json:"count"`
}

// CampaignPosition is where on a page a campaign renders.
type CampaignPosition int

const (
	PositionHeader     CampaignPosition = 0
	PositionSidebar    CampaignPosition = 1
	PositionBeforePost CampaignPosition = 2
	PositionAfterPost  CampaignPosition = 3
)

// Campaign is a promotional banner shown to visitors.
type Campaign struct {
	ID       int64            `json:"id"`
	Name     string           `json:"name"`
	Title    string           `json:"title"`
	Position CampaignPosition `json:"position"`
	Priority int              `json:"priority"`
	Public   bool             `json:"public"`
	StartAt  time.Time        `json:"startAt"`
	EndAt    time.Time        `json:"endAt"`
	HTML     string           `json:"html"`
}
