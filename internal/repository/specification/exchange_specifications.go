package specification

import (
	"gorm.io/gorm"

	"github.com/google/uuid"
)

type BySession struct {
	SessionID uuid.UUID
}

func (s BySession) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type ByOrdinal struct {
	Ordinal int
}

func (s ByOrdinal) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("ordinal = ?", s.Ordinal)
}

type ByState struct {
	State string
}

func (s ByState) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("state = ?", s.State)
}
