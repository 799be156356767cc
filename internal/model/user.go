package model

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     *string   `json:"full_name,omitempty"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TokenPayload is the claim set carried by an issued access token.
type TokenPayload struct {
	Subject   string   `json:"sub"`
	ExpiresAt int64    `json:"exp"`
	Scopes    []string `json:"scopes"`
}
