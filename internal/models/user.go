package models

import "time"

// User represents a participant in the discussion platform. The record is
// keyed by an external identity key assigned by the auth collaborator; the
// numeric primary key is storage-internal and never leaves the store.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	UserID       string    `gorm:"size:64;not null;uniqueIndex" json:"user_id"`
	Username     string    `gorm:"size:64;uniqueIndex" json:"username"`
	Name         string    `gorm:"size:120" json:"name"`
	Bio          string    `gorm:"type:text" json:"bio"`
	AvatarURL    string    `gorm:"size:512" json:"avatar_url"`
	Onboarded    bool      `gorm:"not null;default:false" json:"onboarded"`
	MessageIDs   IDList    `gorm:"type:text" json:"message_ids"`
	CommunityIDs IDList    `gorm:"type:text" json:"community_ids"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Summary returns the join projection used when hydrating message trees.
func (u *User) Summary() AuthorSummary {
	return AuthorSummary{
		UserID:    u.UserID,
		Name:      u.Name,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
	}
}
