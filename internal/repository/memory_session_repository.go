package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"pdf-study-aid/internal/domain"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemorySessionRepository keeps sessions in process memory until their TTL elapses.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionRepository creates an in-memory store; a zero ttl never expires sessions.
func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Save stores a snapshot of the session and refreshes its TTL.
func (r *MemorySessionRepository) Save(ctx context.Context, session *domain.StudySession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	entry := memoryEntry{data: data}
	if r.ttl > 0 {
		entry.expiresAt = r.now().Add(r.ttl)
	}

	r.mu.Lock()
	r.sessions[session.ID] = entry
	r.mu.Unlock()
	return nil
}

// Get returns a copy of the session or domain.ErrSessionNotFound.
func (r *MemorySessionRepository) Get(ctx context.Context, id string) (*domain.StudySession, error) {
	r.mu.RLock()
	entry, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok || r.expired(entry) {
		return nil, domain.ErrSessionNotFound
	}

	var session domain.StudySession
	if err := json.Unmarshal(entry.data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete removes the session; deleting a missing session is not an error.
func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (r *MemorySessionRepository) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, entry := range r.sessions {
		if r.expired(entry) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is done.
func (r *MemorySessionRepository) StartSweeper(ctx context.Context, interval time.Duration, logger domain.Logger) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.Sweep(); n > 0 {
					logger.Debug("Expired sessions removed", "count", n)
				}
			}
		}
	}()
}

func (r *MemorySessionRepository) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt)
}
