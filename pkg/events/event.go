package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicQueryLifecycle carries every query lifecycle event over the
// in-process bus. Consumers fan the payloads out to connected clients.
const TopicQueryLifecycle = "RAG_QUERY_LIFECYCLE"

// Query lifecycle event types.
const (
	QueryMapping  = "QUERY_MAPPING"
	QueryReducing = "QUERY_REDUCING"
	QueryDone     = "QUERY_DONE"
	QueryFailed   = "QUERY_FAILED"
)

// QueryLifecycleEvent is published at each state transition of a running
// map-reduce query.
type QueryLifecycleEvent struct {
	Type       string    `json:"type"`
	AnalystID  uuid.UUID `json:"analyst_id"`
	SessionID  uuid.UUID `json:"session_id"`
	Ordinal    int       `json:"ordinal"`
	Question   string    `json:"question"`
	Sources    int       `json:"sources"`
	Failures   int       `json:"failures"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
