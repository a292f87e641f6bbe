package storage

import (
	"errors"
	"sort"
	"sync"

	"github.com/lehigh-university-libraries/captioner/internal/models"
)

// ErrNotFound is returned when no session has the requested ID.
var ErrNotFound = errors.New("session not found")

// Store holds caption sessions between requests. Callers must Set a
// session after mutating it.
type Store interface {
	Get(sessionID string) (*models.CaptionSession, error)
	Set(session *models.CaptionSession) error
	List() ([]*models.CaptionSession, error)
	Delete(sessionID string) error
	Close() error
}

// SessionStore keeps sessions in memory; they are lost on restart.
type SessionStore struct {
	sessions map[string]*models.CaptionSession
	mu       sync.RWMutex
}

func New() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.CaptionSession),
	}
}

func (s *SessionStore) Get(sessionID string) (*models.CaptionSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, ErrNotFound
	}
	return session, nil
}

func (s *SessionStore) Set(session *models.CaptionSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *SessionStore) List() ([]*models.CaptionSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.CaptionSession, 0, len(s.sessions))
	for _, v := range s.sessions {
		result = append(result, v)
	}
	sortSessions(result)
	return result, nil
}

func (s *SessionStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[sessionID]; !exists {
		return ErrNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *SessionStore) Close() error {
	return nil
}

func sortSessions(sessions []*models.CaptionSession) {
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
}
