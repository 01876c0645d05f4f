package memory

import (
	"time"

	"socioscope-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Create a cache with a default expiration time of 12 hours, and which
	// purges expired items every 10 minutes
	c := cache.New(12*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

// Save indexes the session under both its own id and its analyst, so the
// websocket path (session id) and the HTTP path (authenticated analyst)
// reach the same live state.
func (r *SessionRepository) Save(session *entity.DiscussionSession) {
	session.UpdatedAt = time.Now()
	r.cache.Set(session.Id.String(), session, cache.DefaultExpiration)
	r.cache.Set("analyst:"+session.AnalystId.String(), session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*entity.DiscussionSession, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*entity.DiscussionSession), true
	}
	return nil, false
}

func (r *SessionRepository) GetByAnalyst(analystID string) (*entity.DiscussionSession, bool) {
	if x, found := r.cache.Get("analyst:" + analystID); found {
		return x.(*entity.DiscussionSession), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	if session, found := r.Get(sessionID); found {
		r.cache.Delete("analyst:" + session.AnalystId.String())
	}
	r.cache.Delete(sessionID)
}
