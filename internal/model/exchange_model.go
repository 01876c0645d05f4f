package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type RagExchange struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId     uuid.UUID      `gorm:"type:uuid;not null;index:idx_exchange_session_ordinal,unique"`
	AnalystId     uuid.UUID      `gorm:"type:uuid;not null;index"`
	Ordinal       int            `gorm:"not null;index:idx_exchange_session_ordinal,unique"`
	Model         string         `gorm:"type:varchar(128);not null"`
	Question      string         `gorm:"type:text;not null"`
	Contents      datatypes.JSON `gorm:"type:jsonb"` // []string, selection order
	Responses     datatypes.JSON `gorm:"type:jsonb"` // []entity.PartialResponse, same order
	FinalResponse string         `gorm:"type:text"`
	State         string         `gorm:"type:varchar(16);not null"`
	FailReason    string         `gorm:"type:text"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
}

func (RagExchange) TableName() string {
	return "rag_exchanges"
}
