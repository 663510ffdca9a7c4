package model

import "time"

// User is a registered account. Email is stored lowercased so uniqueness is
// case-insensitive. Password holds the argon2id hash, never the plaintext —
// the `json:"-"` tag keeps it out of every response.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	Photo     string    `json:"photo"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
