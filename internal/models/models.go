// Package models defines the domain types shared by storage and transports.
package models

import "time"

// HistoryRecord is one saved conversion owned by a user.
type HistoryRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Timestamp time.Time `json:"timestamp"`
	Category  string    `json:"category"`
	FromValue float64   `json:"from_value"`
	FromUnit  string    `json:"from_unit"`
	ToValue   float64   `json:"to_value"`
	ToUnit    string    `json:"to_unit"`
}

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is an authenticated session bound to a signed token.
type Session struct {
	Token     string    `json:"token"`
	TokenID   string    `json:"-"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}
