package entity

import (
	"time"

	"github.com/google/uuid"
)

type Analyst struct {
	Id          uuid.UUID
	Email       string
	FullName    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time
}

// LoginToken is one issued magic link. The raw token is only ever emailed;
// the database keeps its sha256 digest.
type LoginToken struct {
	Id        uuid.UUID
	AnalystId uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
