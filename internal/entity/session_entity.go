package entity

import (
	"time"

	"github.com/google/uuid"
)

// DiscussionSession is the live, in-memory state of one analyst's working
// session: which transcripts are currently selected (in the order they
// were picked) and which model the next query will use.
type DiscussionSession struct {
	Id        uuid.UUID `json:"id"`
	AnalystId uuid.UUID `json:"analyst_id"`
	Selected  []string  `json:"selected"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *DiscussionSession) IsSelected(recordID string) bool {
	for _, id := range s.Selected {
		if id == recordID {
			return true
		}
	}
	return false
}

// Toggle adds the record to the selection, or removes it when already
// present. Returns true when the record ends up selected.
func (s *DiscussionSession) Toggle(recordID string) bool {
	for i, id := range s.Selected {
		if id == recordID {
			s.Selected = append(s.Selected[:i], s.Selected[i+1:]...)
			return false
		}
	}
	s.Selected = append(s.Selected, recordID)
	return true
}
