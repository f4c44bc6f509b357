// Package auth implements login sessions for the JSON API.
package auth

import "time"

// User is an account able to sign in.
type User struct {
	ID           int64
	Email        string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is the server-side state behind an opaque bearer token.
type Session struct {
	Token     string    `json:"-"`
	UserID    int64     `json:"userId"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
