package models

import "time"

// AuthorSummary is the compact author projection joined into tree results.
type AuthorSummary struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// CommunitySummary is the compact community projection joined into tree results.
type CommunitySummary struct {
	CommunityID string `json:"community_id"`
	Name        string `json:"name"`
	Username    string `json:"username"`
	AvatarURL   string `json:"avatar_url"`
}

// MessageNode is a hydrated message joined with its author and optional
// community. Replies is populated one level deep for feed listings and to
// unbounded depth for single-thread detail views; in either case ReplyCount
// and ChildIDs describe the next level without requiring hydration.
type MessageNode struct {
	MsgID      string            `json:"id"`
	Body       string            `json:"body"`
	ParentID   string            `json:"parent_id,omitempty"`
	Author     AuthorSummary     `json:"author"`
	Community  *CommunitySummary `json:"community,omitempty"`
	Replies    []*MessageNode    `json:"replies,omitempty"`
	ChildIDs   []string          `json:"child_ids"`
	ReplyCount int               `json:"reply_count"`
	CreatedAt  time.Time         `json:"created_at"`
}

// ActivityItem is a reply someone else left under one of the user's
// messages, joined with the replier's summary.
type ActivityItem struct {
	MsgID     string        `json:"id"`
	ParentID  string        `json:"parent_id"`
	Body      string        `json:"body"`
	Author    AuthorSummary `json:"author"`
	CreatedAt time.Time     `json:"created_at"`
}

// UserPage is a paginated user listing result.
type UserPage struct {
	Users   []*User `json:"users"`
	HasNext bool    `json:"has_next"`
}

// FeedPage is a paginated root-message listing result.
type FeedPage struct {
	Messages []*MessageNode `json:"messages"`
	HasNext  bool           `json:"has_next"`
}
