package models

import "time"

// Session is a row in the sessions table. TokenReference is an opaque digest
// of the token issued at login; the raw token is never stored.
type Session struct {
	ID             string    `json:"id"`
	UserID         int64     `json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
	TokenReference string    `json:"token_reference"`
}
