package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yigit/applicant-wizard/internal/app/wizard"
	"github.com/yigit/applicant-wizard/internal/pkg/apperrors"
)

// SessionRecord is a persisted wizard session
type SessionRecord struct {
	ID        string
	Snapshot  wizard.Snapshot
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session outlived its deadline at now
func (s *SessionRecord) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// SessionRepository stores wizard session snapshots
type SessionRepository interface {
	// Create stores a new session; an existing id is ErrConflict.
	Create(ctx context.Context, s *SessionRecord) error
	// Get returns ErrSessionNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (*SessionRecord, error)
	// Save overwrites the snapshot and deadline of an existing session.
	Save(ctx context.Context, s *SessionRecord) error
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes sessions whose deadline passed and returns their ids.
	DeleteExpired(ctx context.Context, now time.Time) ([]string, error)
}

// MemorySessionRepository keeps sessions in process memory
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*SessionRecord
	now      func() time.Time
}

// NewMemorySessionRepository creates an empty in-memory store
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]*SessionRecord),
		now:      time.Now,
	}
}

func cloneSession(s *SessionRecord) *SessionRecord {
	out := *s
	out.Snapshot = s.Snapshot.Clone()
	return &out
}

// Create stores a new session
func (r *MemorySessionRepository) Create(ctx context.Context, s *SessionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; ok {
		return apperrors.NewConflictError("session " + s.ID + " already exists")
	}
	now := r.now()
	stored := cloneSession(s)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	r.sessions[s.ID] = stored
	return nil
}

// Get returns a copy of the session
func (r *MemorySessionRepository) Get(ctx context.Context, id string) (*SessionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok || s.Expired(r.now()) {
		return nil, apperrors.ErrSessionNotFound
	}
	return cloneSession(s), nil
}

// Save overwrites an existing session
func (r *MemorySessionRepository) Save(ctx context.Context, s *SessionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.sessions[s.ID]
	if !ok {
		return apperrors.ErrSessionNotFound
	}
	stored := cloneSession(s)
	stored.CreatedAt = prev.CreatedAt
	stored.UpdatedAt = r.now()
	r.sessions[s.ID] = stored
	return nil
}

// Delete removes a session; deleting an unknown id is not an error
func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// DeleteExpired removes every session past its deadline
func (r *MemorySessionRepository) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, s := range r.sessions {
		if s.Expired(now) {
			ids = append(ids, id)
			delete(r.sessions, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Len returns the number of stored sessions
func (r *MemorySessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
