package models

import "time"

// Session is the server-side record behind an opaque token issued on a
// successful login. A session is valid iff now < ExpiresAt and the
// presented client address matches the one recorded at issuance.
type Session struct {
	// Token is an unguessable opaque identifier; it carries no decodable
	// account information.
	Token string

	AccountID     string
	ClientAddress string
	UserAgent     string

	IssuedAt       time.Time
	LastActivityAt time.Time
	ExpiresAt      time.Time
}

// Expired reports whether the session's lifetime has passed at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
