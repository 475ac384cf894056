package domain

import "time"

// Session is the locally stored credential for one profile.
//
// The token is opaque to the client. When it is a JWT its exp claim is
// copied into ExpiresAt so an expired session reads as logged out.
type Session struct {
	ID int64 `json:"id" gorm:"primaryKey"`

	Profile string `json:"profile" gorm:"size:64;uniqueIndex;not null"`
	Token   string `json:"-" gorm:"type:text;not null"`
	Email   string `json:"email,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt *time.Time `json:"expires_at" gorm:"index"`
}

func (s *Session) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}
