package models

import "time"

// Community represents a named space messages can be posted into,
// keyed by an external identifier alongside its internal row id.
type Community struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	CommunityID string    `gorm:"size:64;not null;uniqueIndex" json:"community_id"`
	Username    string    `gorm:"size:64;uniqueIndex" json:"username"`
	Name        string    `gorm:"size:120" json:"name"`
	Bio         string    `gorm:"type:text" json:"bio"`
	AvatarURL   string    `gorm:"size:512" json:"avatar_url"`
	MessageIDs  IDList    `gorm:"type:text" json:"message_ids"`
	MemberIDs   IDList    `gorm:"type:text" json:"member_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Summary returns the join projection used when hydrating message trees.
func (c *Community) Summary() CommunitySummary {
	return CommunitySummary{
		CommunityID: c.CommunityID,
		Name:        c.Name,
		Username:    c.Username,
		AvatarURL:   c.AvatarURL,
	}
}
