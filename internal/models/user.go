package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                   uuid.UUID  `json:"id"`
	Email                string     `json:"email"`
	PasswordHash         string     `json:"-"`
	FullName             string     `json:"full_name"`
	IsActive             bool       `json:"is_active"`
	Plan                 string     `json:"plan"` // "free" | "paid"
	StripeCustomerID     *string    `json:"-"`
	DailyGenerationCount int        `json:"daily_generation_count"`
	LastResetDate        time.Time  `json:"last_reset_date"`
	TotalGenerationCount int        `json:"total_generation_count"`
	CreatedAt            time.Time  `json:"created_at"`
	LastLoginAt          *time.Time `json:"last_login_at"`
}

type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}
