package models

import "time"

// RefreshToken is a persisted refresh session. Only the SHA-256 of the token is stored.
type RefreshToken struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	CreatedAt time.Time  `db:"created_at"`
	Revoked   bool       `db:"revoked"`
	RevokedAt *time.Time `db:"revoked_at"`
	IPAddress string     `db:"ip_address"`
	UserAgent string     `db:"user_agent"`
}
