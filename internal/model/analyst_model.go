package model

import (
	"time"

	"github.com/google/uuid"
)

type Analyst struct {
	Id          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email       string     `gorm:"type:varchar(255);unique;not null"`
	FullName    string     `gorm:"type:varchar(255)"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
	LastLoginAt *time.Time `gorm:""`
}

func (Analyst) TableName() string {
	return "analysts"
}

type LoginToken struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AnalystId uuid.UUID  `gorm:"type:uuid;not null;index"`
	TokenHash string     `gorm:"type:varchar(64);uniqueIndex;not null"`
	ExpiresAt time.Time  `gorm:"not null"`
	UsedAt    *time.Time `gorm:""`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
}

func (LoginToken) TableName() string {
	return "login_tokens"
}
