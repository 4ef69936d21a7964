package memory

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"ai-tutor-be/pkg/tutor"
)

// SessionEntry guards one tutoring session. Serving mode handles
// concurrent requests, but turns within a session must stay ordered, so
// callers lock the entry around Ask.
type SessionEntry struct {
	Mu      sync.Mutex
	Session *tutor.Session
}

type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Sessions expire after an hour of inactivity, purged every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *tutor.Session) {
	r.cache.Set(session.ID(), &SessionEntry{Session: session}, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*SessionEntry, bool) {
	if x, found := r.cache.Get(sessionID); found {
		// Refresh the expiration window on access.
		r.cache.Set(sessionID, x, cache.DefaultExpiration)
		return x.(*SessionEntry), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
