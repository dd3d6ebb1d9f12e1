package auth

import "time"

// User is an application account. The password hash never leaves the
// package.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"nombre"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"activo"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is the payload stored in redis under an issued bearer token.
type Session struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}
