// Package models holds the persistent row types shared by repositories and
// services.
package models

// User is a row in the users table. Password carries the hashed secret and
// is never rendered in JSON responses. SessionIDs mirrors the set of this
// user's live session rows and is mutated only inside session transactions.
type User struct {
	ID         int64    `json:"id"`
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	Password   string   `json:"-"`
	TotalScore int64    `json:"total_score"`
	IsAdmin    bool     `json:"isAdmin"`
	SessionIDs []string `json:"session_ids"`
}

// UserUpdate carries a partial field replacement for a user row. Nil fields
// retain their stored values.
type UserUpdate struct {
	Username   *string `json:"username"`
	Email      *string `json:"email"`
	Password   *string `json:"password"`
	TotalScore *int64  `json:"total_score"`
	IsAdmin    *bool   `json:"isAdmin"`
}
