package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/loomhouse/storefront/internal/domain"
	"github.com/loomhouse/storefront/internal/metrics"
)

// SuggestDebounce is the idle time a keystroke must survive before suggestions are fetched
const SuggestDebounce = 300 * time.Millisecond

// Debouncer lets only the latest call per key through after an idle delay.
// Older calls for the same key return domain.ErrSuperseded.
type Debouncer struct {
	delay  time.Duration
	mu     sync.Mutex
	seq    uint64
	latest map[string]uint64
}

// NewDebouncer creates a debouncer with the given idle delay
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay, latest: make(map[string]uint64)}
}

// Wait blocks for the idle delay and reports whether this call is still the latest for key.
// Tokens come from one counter shared by all keys and are never reused.
func (d *Debouncer) Wait(ctx context.Context, key string) error {
	d.mu.Lock()
	d.seq++
	token := d.seq
	d.latest[key] = token
	d.mu.Unlock()

	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		d.release(key, token)
		return ctx.Err()
	case <-timer.C:
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.latest[key] != token {
		return domain.ErrSuperseded
	}
	delete(d.latest, key)
	return nil
}

// release forgets key only if it still holds token
func (d *Debouncer) release(key string, token uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.latest[key] == token {
		delete(d.latest, key)
	}
}

// Pending returns the number of keys with a call in flight
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.latest)
}

// SuggestService serves debounced search suggestions
type SuggestService struct {
	catalog   domain.CatalogClient
	cache     domain.CacheRepository
	debouncer *Debouncer
	cacheTTL  time.Duration
}

// NewSuggestService creates a suggestion service
func NewSuggestService(catalog domain.CatalogClient, cache domain.CacheRepository, debounce, cacheTTL time.Duration) *SuggestService {
	if debounce <= 0 {
		debounce = SuggestDebounce
	}
	return &SuggestService{
		catalog:   catalog,
		cache:     cache,
		debouncer: NewDebouncer(debounce),
		cacheTTL:  cacheTTL,
	}
}

// Suggest returns suggestions for a partial query typed in session.
// Queries of one character or less get no suggestions and cause no request.
// An upstream failure is logged and yields an empty list.
func (s *SuggestService) Suggest(ctx context.Context, session, query string) ([]domain.Suggestion, error) {
	if len([]rune(strings.TrimSpace(query))) <= 1 {
		return []domain.Suggestion{}, nil
	}

	if err := s.debouncer.Wait(ctx, session); err != nil {
		return nil, err
	}

	cacheKey := "suggestions:" + strings.ToLower(strings.TrimSpace(query))
	if s.cache != nil && s.cacheTTL > 0 {
		if raw, err := s.cache.Get(ctx, cacheKey); err == nil {
			var cached []domain.Suggestion
			if json.Unmarshal(raw, &cached) == nil {
				metrics.ObserveCacheLookup(true)
				return cached, nil
			}
		}
		metrics.ObserveCacheLookup(false)
	}

	suggestions, err := s.catalog.SearchSuggestions(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Suggestions are optional; the dropdown just stays empty
		log.Error().Err(err).Str("query", query).Msg("error fetching suggestions")
		return []domain.Suggestion{}, nil
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if raw, err := json.Marshal(suggestions); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, s.cacheTTL); err != nil {
				log.Warn().Err(err).Msg("failed to cache suggestions")
			}
		}
	}

	return suggestions, nil
}
