package models

import "time"

// RefreshToken is a server-stored, single-use token rotated on every
// refresh. Deleting a user's rows revokes their refresh capability.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
