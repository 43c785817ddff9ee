package models

import "time"

// Message is a unit of authored content, either a root message (empty
// ParentID, eligible for the feed) or a reply inside another message's
// subtree. AuthorID/CommunityID/ParentID hold logical keys; ChildIDs is the
// ordered set of direct reply ids maintained by the reference maintainer.
//
// Invariants (enforced by refs + verified by the test suite):
//   - ParentID != "" implies the parent exists and its ChildIDs contains MsgID
//   - CommunityID != "" implies that community's MessageIDs contains MsgID
//   - the author's MessageIDs always contains MsgID
type Message struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	MsgID       string    `gorm:"size:64;not null;uniqueIndex" json:"id"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	AuthorID    string    `gorm:"size:64;not null;index" json:"author_id"`
	CommunityID string    `gorm:"size:64;index" json:"community_id,omitempty"`
	ParentID    string    `gorm:"size:64;index" json:"parent_id,omitempty"`
	ChildIDs    IDList    `gorm:"type:text" json:"child_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsRoot reports whether the message is eligible for top-level feed listing.
func (m *Message) IsRoot() bool {
	return m.ParentID == ""
}
