// SteamLens - Catalog Discovery and Recommendation Engine
// Copyright 2026 SteamLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/steamlens/steamlens

// Package library keeps per-session game libraries in memory. A library
// is an insertion-ordered set of titles; the order matters because the
// recommendation cache key preserves it. Sessions idle past their TTL
// are evicted lazily. Nothing is persisted across restarts.
package library

import (
	"errors"
	"sync"
	"time"
)

// ErrTooManySessions is returned when creating a session would exceed
// the configured bound and no idle session could be reclaimed.
var ErrTooManySessions = errors.New("library: session limit reached")

// session is one library plus its idle tracking.
type session struct {
	titles   []string
	index    map[string]struct{}
	lastSeen time.Time
}

// Store holds every active session library.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*session
	ttl         time.Duration
	maxSessions int
	now         func() time.Time // test hook
}

// NewStore creates a session store. Sessions untouched for ttl are
// reclaimed; at most maxSessions can be live at once.
func NewStore(ttl time.Duration, maxSessions int) *Store {
	return &Store{
		sessions:    make(map[string]*session),
		ttl:         ttl,
		maxSessions: maxSessions,
		now:         time.Now,
	}
}

// Add appends title to the session's library if absent. It reports
// whether the library changed.
func (s *Store) Add(sessionID, title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return false, err
	}
	if _, ok := sess.index[title]; ok {
		return false, nil
	}
	sess.index[title] = struct{}{}
	sess.titles = append(sess.titles, title)
	return true, nil
}

// Remove drops title from the session's library, reporting whether it
// was present.
func (s *Store) Remove(sessionID, title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(sessionID)
	if !ok {
		return false
	}
	if _, present := sess.index[title]; !present {
		return false
	}
	delete(sess.index, title)
	for i, t := range sess.titles {
		if t == title {
			sess.titles = append(sess.titles[:i], sess.titles[i+1:]...)
			break
		}
	}
	return true
}

// Clear empties the session's library. The session itself stays alive.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.live(sessionID); ok {
		sess.titles = nil
		sess.index = make(map[string]struct{})
	}
}

// Titles returns a snapshot of the session's library in insertion
// order. An unknown or expired session yields an empty slice.
func (s *Store) Titles(sessionID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(sessionID)
	if !ok {
		return []string{}
	}
	out := make([]string, len(sess.titles))
	copy(out, sess.titles)
	return out
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpired()
	return len(s.sessions)
}

// live returns the session if present and unexpired, refreshing its
// idle clock (must hold mu).
func (s *Store) live(sessionID string) (*session, bool) {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	if s.expired(sess) {
		delete(s.sessions, sessionID)
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess, true
}

// touch returns the session, creating it if needed (must hold mu).
func (s *Store) touch(sessionID string) (*session, error) {
	if sess, ok := s.live(sessionID); ok {
		return sess, nil
	}
	if len(s.sessions) >= s.maxSessions {
		s.evictExpired()
		if len(s.sessions) >= s.maxSessions {
			return nil, ErrTooManySessions
		}
	}
	sess := &session{index: make(map[string]struct{}), lastSeen: s.now()}
	s.sessions[sessionID] = sess
	return sess, nil
}

// evictExpired removes every expired session (must hold mu).
func (s *Store) evictExpired() {
	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
		}
	}
}

func (s *Store) expired(sess *session) bool {
	return s.ttl > 0 && s.now().Sub(sess.lastSeen) > s.ttl
}
