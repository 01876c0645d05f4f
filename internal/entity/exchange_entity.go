package entity

import (
	"time"

	"github.com/google/uuid"
)

// PartialResponse is one map output (or its failure) inside an exchange.
type PartialResponse struct {
	SourceId string `json:"source_id"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RagExchange is the persisted record of one map-reduce query. Ordinal is
// monotonically increasing per session and serves as the identity key
// within it; per-document responses keep the original selection order.
type RagExchange struct {
	Id            uuid.UUID
	SessionId     uuid.UUID
	AnalystId     uuid.UUID
	Ordinal       int
	Model         string
	Question      string
	Contents      []string
	Responses     []PartialResponse
	FinalResponse string
	State         string
	FailReason    string
	CreatedAt     time.Time
}
