package models

import "time"

// BlacklistedToken is a refresh token that can no longer be exchanged
// for access tokens.
type BlacklistedToken struct {
	JTI           string
	UserID        string
	ExpiresAt     time.Time
	BlacklistedAt time.Time
}
