package elements

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/HenrINC/sat-cluster-predictor/internal/config"
)

// ErrNoElements means neither the network nor the cache produced a usable
// element set. A run cannot proceed without one.
var ErrNoElements = errors.New("no orbital elements available")

// StaleAfter is how old cached elements may grow before they count as
// stale. Passes computed from week-old elements drift by minutes.
const StaleAfter = 7 * 24 * time.Hour

// Source resolves element sets with a tiered strategy: live fetch from the
// configured URLs first, falling back to the last-known-good disk cache.
type Source struct {
	fetcher *Fetcher
	cache   *Cache
	log     *log.Logger
}

func NewSource(cfg config.ElementsConfig, logger *log.Logger) *Source {
	return &Source{
		fetcher: NewFetcher(cfg.Sources, cfg.Timeout(), logger),
		cache:   NewCache(cfg.CachePath),
		log:     logger,
	}
}

// Load returns the freshest element set available.
func (s *Source) Load(ctx context.Context) (Set, error) {
	set, err := s.Refresh(ctx)
	if err == nil {
		return set, nil
	}
	s.log.Printf("elements: live fetch failed (%v), falling back to cache", err)

	set, fetchedAt, cacheErr := s.cache.Load()
	if cacheErr != nil {
		return nil, fmt.Errorf("%w: fetch: %v; cache: %v", ErrNoElements, err, cacheErr)
	}
	if age := time.Since(fetchedAt); age > StaleAfter {
		s.log.Printf("elements: warning: cached elements are %s old", age.Round(time.Hour))
	}
	s.log.Printf("elements: using %d cached sets fetched %s", len(set), fetchedAt.UTC().Format(time.RFC3339))
	return set, nil
}

// Refresh forces a network fetch and rewrites the cache on success.
func (s *Source) Refresh(ctx context.Context) (Set, error) {
	raw, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	set := Parse(raw, s.log)
	if len(set) == 0 {
		return nil, errors.New("fetched data contained no parseable element sets")
	}

	if err := s.cache.Write(set, time.Now().UTC()); err != nil {
		s.log.Printf("elements: cache write failed (continuing with in-memory data): %v", err)
	}
	return set, nil
}

// CachePath reports where the cache lives, for status displays.
func (s *Source) CachePath() string {
	return s.cache.Path()
}
