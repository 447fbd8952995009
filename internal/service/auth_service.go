package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"pdf-study-aid/internal/domain"
)

const tokenCacheTTL = 30 * time.Second

type tokenCacheEntry struct {
	user      *domain.SupabaseUser
	expiresAt time.Time
}

type authService struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger

	tokenCacheMu sync.RWMutex
	tokenCache   map[string]tokenCacheEntry
}

func NewAuthService(
	supabaseClient domain.SupabaseClient,
	logger domain.Logger,
) *authService {
	return &authService{
		supabaseClient: supabaseClient,
		logger:         logger,
		tokenCache:     make(map[string]tokenCacheEntry),
	}
}

// ValidateToken validates a Supabase access token and returns user info.
// Successful validations are cached for tokenCacheTTL.
func (s *authService) ValidateToken(token string) (*domain.SupabaseUser, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", domain.ErrInvalidToken)
	}

	now := time.Now()
	s.tokenCacheMu.RLock()
	entry, ok := s.tokenCache[token]
	s.tokenCacheMu.RUnlock()
	if ok && now.Before(entry.expiresAt) {
		return entry.user, nil
	}

	user, err := s.supabaseClient.ValidateToken(token)
	if err != nil {
		s.logger.Error("Failed to validate token with Supabase", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	s.tokenCacheMu.Lock()
	for key, cached := range s.tokenCache {
		if now.After(cached.expiresAt) {
			delete(s.tokenCache, key)
		}
	}
	s.tokenCache[token] = tokenCacheEntry{user: user, expiresAt: now.Add(tokenCacheTTL)}
	s.tokenCacheMu.Unlock()

	return user, nil
}
