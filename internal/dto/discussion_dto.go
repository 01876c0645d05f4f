package dto

import (
	"time"

	"github.com/google/uuid"
)

type AskRequest struct {
	SessionId uuid.UUID `json:"session_id,omitempty"` // zero value targets the analyst's current session
	Question  string    `json:"question" validate:"required"`
	Selected  []string  `json:"selected,omitempty"` // overrides the stored session selection when set
	Model     string    `json:"model,omitempty"`
}

type PartialResponseDTO struct {
	SourceId string `json:"source_id"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

type AskResponse struct {
	SessionId     uuid.UUID            `json:"session_id"`
	Ordinal       int                  `json:"ordinal"`
	State         string               `json:"state"`
	FinalResponse string               `json:"final_response,omitempty"`
	Responses     []PartialResponseDTO `json:"responses"`
	FailReason    string               `json:"fail_reason,omitempty"`
}

// Client-driven two-phase mode: one map call for one document.
type MapRequest struct {
	Question string `json:"question" validate:"required"`
	RecordId string `json:"record_id" validate:"required"`
	Model    string `json:"model,omitempty"`
}

type MapResponse struct {
	RecordId string `json:"record_id"`
	Response string `json:"response"`
}

type ReduceRequest struct {
	Question  string   `json:"question" validate:"required"`
	Responses []string `json:"responses" validate:"required,min=1"`
	Model     string   `json:"model,omitempty"`
}

type ReduceResponse struct {
	Response string `json:"response"`
}

type ExchangeResponse struct {
	Id            uuid.UUID            `json:"id"`
	Ordinal       int                  `json:"ordinal"`
	Model         string               `json:"model"`
	Question      string               `json:"question"`
	Responses     []PartialResponseDTO `json:"responses"`
	FinalResponse string               `json:"final_response,omitempty"`
	State         string               `json:"state"`
	FailReason    string               `json:"fail_reason,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

type SessionHistoryResponse struct {
	SessionId uuid.UUID          `json:"session_id"`
	Exchanges []ExchangeResponse `json:"exchanges"`
}
