package dto

import (
	"time"

	"github.com/google/uuid"
)

type MagicLinkRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	Analyst     AnalystResponse `json:"analyst"`
}

type AnalystResponse struct {
	Id          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}
