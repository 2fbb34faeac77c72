package model

import "time"

// Token is the opaque bearer credential of a user. One per user, never rotated.
type Token struct {
	Key       string
	UserID    string
	CreatedAt time.Time
}
