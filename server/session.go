package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"scribe/content"
)

const sessionCookie = "scribe_session"

// Session is a state of a single browser between requests. Values are never
// modified once stored, handlers store updated copies.
type Session struct {
	ID string

	SourceName string
	Source     string
	Questions  string
	Analysis   string

	Clarifications string
	Assignment     *content.Assignment
}

type sessions struct {
	c       *cache.Cache
	ttl     time.Duration
	release func(*content.Assignment)
}

// newSessions creates session store, release is called for assignments
// which are no longer reachable.
func newSessions(ttl time.Duration, release func(*content.Assignment)) *sessions {
	c := cache.New(ttl, max(ttl/4, time.Minute))
	c.OnEvicted(func(_ string, v any) {
		if s, ok := v.(*Session); ok && s.Assignment != nil {
			release(s.Assignment)
		}
	})
	return &sessions{c: c, ttl: ttl, release: release}
}

func (ss *sessions) get(id string) (*Session, bool) {
	if v, ok := ss.c.Get(id); ok {
		return v.(*Session), true
	}
	return nil, false
}

func (ss *sessions) put(s *Session) {
	if old, ok := ss.get(s.ID); ok && old.Assignment != nil && old.Assignment != s.Assignment {
		ss.release(old.Assignment)
	}
	ss.c.SetDefault(s.ID, s)
}

// fromRequest returns session for request cookie or a fresh one, cookie is
// (re)issued in both cases.
func (ss *sessions) fromRequest(w http.ResponseWriter, r *http.Request) *Session {
	var s *Session
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			s, _ = ss.get(cookie.Value)
		}
	}
	if s == nil {
		s = &Session{ID: uuid.NewString()}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    s.ID,
		Path:     "/",
		MaxAge:   int(ss.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s
}

// drop removes all sessions releasing their assignments.
func (ss *sessions) drop() {
	for id := range ss.c.Items() {
		ss.c.Delete(id)
	}
}

// lookup returns session for request cookie without issuing new one.
func (ss *sessions) lookup(r *http.Request) (*Session, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	return ss.get(cookie.Value)
}
