package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kaeeraventures/expertchat/internal/model/chat"
)

var (
	ErrSessionRequired = errors.New("session id is required")
	ErrSessionNotFound = errors.New("session not found")
)

// Service is the durable transcript store. Appends to the same session are
// serialized by a per-session lock so a reply entry can never be observed
// without the message that triggered it.
type Service struct {
	db *gorm.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService wraps the provided database handle.
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:    db,
		locks: make(map[string]*sync.Mutex),
	}
}

// NewSessionID mints an opaque session identifier.
func (s *Service) NewSessionID() string {
	return uuid.NewString()
}

// sessionLock returns the append lock for a session, creating it on first use.
// Locks are never removed; sessions accumulate for the process lifetime.
func (s *Service) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}

// Append stores entries for a session in order, creating the session record
// on first use. The whole batch commits in one transaction, so a message and
// its automated reply land atomically with respect to readers.
func (s *Service) Append(ctx context.Context, sessionID, category string, entries ...chat.Message) error {
	if sessionID == "" {
		return ErrSessionRequired
	}
	if len(entries) == 0 {
		return nil
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session chat.Session
		err := tx.First(&session, "id = ?", sessionID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			session = chat.Session{
				ID:        sessionID,
				Category:  category,
				CreatedAt: time.Now().UTC(),
			}
			if err := tx.Create(&session).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		for i := range entries {
			entry := entries[i]
			entry.SessionID = sessionID
			if entry.ID == "" {
				entry.ID = uuid.NewString()
			}
			if entry.CreatedAt.IsZero() {
				entry.CreatedAt = time.Now().UTC()
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append transcript: %w", err)
	}
	return nil
}

// Transcript returns the session's messages in append order. Unknown sessions
// yield an empty transcript.
func (s *Service) Transcript(ctx context.Context, sessionID string) ([]chat.Message, error) {
	if sessionID == "" {
		return nil, ErrSessionRequired
	}

	var messages []chat.Message
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("seq asc").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	return messages, nil
}

// Category reports the category a session was created under.
func (s *Service) Category(ctx context.Context, sessionID string) (string, error) {
	var session chat.Session
	err := s.db.WithContext(ctx).First(&session, "id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	return session.Category, nil
}

// ListSessions returns every session with its transcript, oldest first.
func (s *Service) ListSessions(ctx context.Context) ([]chat.Session, error) {
	var sessions []chat.Session
	err := s.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("seq asc") }).
		Order("created_at asc").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}
