package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/loomhouse/storefront/internal/domain"
)

// MaxRecentSearches caps the recent-search list
const MaxRecentSearches = 5

// HistoryService keeps each session's recent searches in the cache repository
type HistoryService struct {
	cache domain.CacheRepository
	ttl   time.Duration
}

// NewHistoryService creates a history service. ttl bounds how long an idle session's list survives.
func NewHistoryService(cache domain.CacheRepository, ttl time.Duration) *HistoryService {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &HistoryService{cache: cache, ttl: ttl}
}

func historyKey(session string) string {
	return "recent_searches:" + session
}

// PushRecent returns list with query moved to the front, duplicates removed and the length capped
func PushRecent(list []string, query string) []string {
	out := make([]string, 0, MaxRecentSearches)
	out = append(out, query)
	for _, s := range list {
		if s == query {
			continue
		}
		if len(out) == MaxRecentSearches {
			break
		}
		out = append(out, s)
	}
	return out
}

// List returns the session's recent searches, most recent first
func (s *HistoryService) List(ctx context.Context, session string) ([]string, error) {
	raw, err := s.cache.Get(ctx, historyKey(session))
	if errors.Is(err, domain.ErrCacheMiss) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load recent searches: %w", err)
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		// A corrupt entry is treated as an empty history
		log.Warn().Err(err).Str("session", session).Msg("discarding unreadable recent searches")
		return []string{}, nil
	}
	if len(list) > MaxRecentSearches {
		list = list[:MaxRecentSearches]
	}
	return list, nil
}

// Add records a submitted query. Blank queries leave the history untouched.
func (s *HistoryService) Add(ctx context.Context, session, query string) ([]string, error) {
	list, err := s.List(ctx, session)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return list, nil
	}

	list = PushRecent(list, query)
	raw, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("encode recent searches: %w", err)
	}
	if err := s.cache.Set(ctx, historyKey(session), raw, s.ttl); err != nil {
		return nil, fmt.Errorf("save recent searches: %w", err)
	}
	return list, nil
}

// Clear forgets the session's recent searches
func (s *HistoryService) Clear(ctx context.Context, session string) error {
	if err := s.cache.Delete(ctx, historyKey(session)); err != nil {
		return fmt.Errorf("clear recent searches: %w", err)
	}
	return nil
}
