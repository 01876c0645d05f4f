package specification

import (
	"gorm.io/gorm"

	"github.com/google/uuid"
)

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

type ByAnalyst struct {
	AnalystID uuid.UUID
}

func (s ByAnalyst) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("analyst_id = ?", s.AnalystID)
}

// Token Specs

type ByTokenHash struct {
	Hash string
}

func (s ByTokenHash) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("token_hash = ?", s.Hash)
}

type UnusedTokens struct{}

func (s UnusedTokens) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("used_at IS NULL")
}
