// Package exercise serves the exercise catalog: a free-exercise-db mirror
// fetched over HTTP and searched in memory, plus a small curated table of
// stretch resources with demo videos.
//
// The upstream catalog (~870 entries) is downloaded on first use and cached
// until the TTL passes; concurrent cold-cache searches share one fetch. A
// failed refresh falls back to the stale copy when one exists.
package exercise

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/flexflow/flexflow/pkg/logger"
	"github.com/flexflow/flexflow/pkg/metrics"
)

// Upstream endpoints and cache defaults.
const (
	DefaultURL       = "https://raw.githubusercontent.com/yuhonas/free-exercise-db/main/dist/exercises.json"
	DefaultImageBase = "https://raw.githubusercontent.com/yuhonas/free-exercise-db/main/exercises"

	defaultCacheTTL     = 24 * time.Hour
	defaultFetchTimeout = 20 * time.Second

	// Relevance floors: results below these are noise, not matches.
	bestMatchFloor = 15
	listFloor      = 5

	defaultSearchLimit = 3
)

// Entry is one exercise as published by the upstream catalog.
type Entry struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	Equipment        string   `json:"equipment"`
	PrimaryMuscles   []string `json:"primaryMuscles"`
	SecondaryMuscles []string `json:"secondaryMuscles"`
	Instructions     []string `json:"instructions"`
	Images           []string `json:"images"`
}

// Match is a best-match search result with render-ready image URLs.
type Match struct {
	Name             string   `json:"name"`
	ImageURL         string   `json:"image_url"`
	ImageURLEnd      string   `json:"image_url_end"`
	Instructions     []string `json:"instructions"`
	Category         string   `json:"category"`
	PrimaryMuscles   []string `json:"primary_muscles"`
	SecondaryMuscles []string `json:"secondary_muscles"`
	Equipment        string   `json:"equipment"`
}

// Summary is one row of a multi-result search.
type Summary struct {
	Name           string   `json:"name"`
	ImageURL       string   `json:"image_url"`
	Category       string   `json:"category"`
	PrimaryMuscles []string `json:"primary_muscles"`
}

// Catalog fetches, caches and searches the exercise database.
type Catalog struct {
	client    *http.Client
	url       string
	imageBase string
	ttl       time.Duration

	sf singleflight.Group

	mu        sync.RWMutex
	entries   []Entry
	byName    map[string]*Entry
	fetchedAt time.Time

	log logger.Logger
}

// New creates a catalog backed by the public free-exercise-db mirror.
// Nothing is fetched until the first search.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		client:    &http.Client{Timeout: defaultFetchTimeout},
		url:       DefaultURL,
		imageBase: DefaultImageBase,
		ttl:       defaultCacheTTL,
		log:       logger.Get().Named("exercise"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BestMatch returns the highest-scoring exercise for a free-text query.
// Curated overrides win outright; otherwise every entry is scored and the
// best returned, or ErrNoMatch when nothing clears the relevance floor.
func (c *Catalog) BestMatch(ctx context.Context, query string) (*Match, error) {
	entries, byName, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	metrics.RecordExerciseSearch()

	best := overrideMatch(query, byName)
	if best == nil {
		bestScore := 0.0
		for i := range entries {
			if s := score(query, &entries[i]); s > bestScore {
				bestScore = s
				best = &entries[i]
			}
		}
		if bestScore < bestMatchFloor {
			best = nil
		}
	}
	if best == nil {
		return nil, ErrNoMatch
	}

	m := &Match{
		Name:             best.Name,
		Instructions:     best.Instructions,
		Category:         best.Category,
		PrimaryMuscles:   best.PrimaryMuscles,
		SecondaryMuscles: best.SecondaryMuscles,
		Equipment:        best.Equipment,
	}
	if len(best.Images) > 0 {
		m.ImageURL = c.imageBase + "/" + best.Images[0]
	}
	if len(best.Images) > 1 {
		m.ImageURLEnd = c.imageBase + "/" + best.Images[1]
	}
	return m, nil
}

// Search returns up to limit exercises scoring at or above the list floor,
// ordered by relevance. Ties keep catalog order.
func (c *Catalog) Search(ctx context.Context, query string, limit int) ([]Summary, error) {
	entries, _, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	metrics.RecordExerciseSearch()

	if limit <= 0 {
		limit = defaultSearchLimit
	}

	type scoredEntry struct {
		score float64
		entry *Entry
	}
	var hits []scoredEntry
	for i := range entries {
		if s := score(query, &entries[i]); s >= listFloor {
			hits = append(hits, scoredEntry{score: s, entry: &entries[i]})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > limit {
		hits = hits[:limit]
	}

	results := make([]Summary, 0, len(hits))
	for _, h := range hits {
		s := Summary{
			Name:           h.entry.Name,
			Category:       h.entry.Category,
			PrimaryMuscles: h.entry.PrimaryMuscles,
		}
		if len(h.entry.Images) > 0 {
			s.ImageURL = c.imageBase + "/" + h.entry.Images[0]
		}
		results = append(results, s)
	}
	return results, nil
}

// Cached returns the number of catalog entries currently in memory.
func (c *Catalog) Cached() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// load returns the cached catalog, fetching from upstream when the cache is
// empty or older than the TTL. Concurrent cold-cache callers share a single
// fetch; a failed refresh serves the stale copy when one exists.
func (c *Catalog) load(ctx context.Context) ([]Entry, map[string]*Entry, error) {
	c.mu.RLock()
	fresh := c.entries != nil && time.Since(c.fetchedAt) < c.ttl
	entries, byName := c.entries, c.byName
	c.mu.RUnlock()

	if fresh {
		return entries, byName, nil
	}

	_, err, _ := c.sf.Do("catalog", func() (any, error) {
		return nil, c.refresh(ctx)
	})

	c.mu.RLock()
	entries, byName = c.entries, c.byName
	c.mu.RUnlock()

	if err != nil && entries == nil {
		return nil, nil, err
	}
	return entries, byName, nil
}

// refresh downloads the catalog and replaces the cache.
func (c *Catalog) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCatalogFetch, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordErrorByComponent("exercise", "fetch_failed")
		c.log.Error(ctx, "exercise catalog fetch failed", logger.Error(err))
		return fmt.Errorf("%w: %w", ErrCatalogFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordErrorByComponent("exercise", "fetch_failed")
		c.log.Error(ctx, "exercise catalog fetch failed",
			logger.String("status", resp.Status))
		return fmt.Errorf("%w: upstream returned %s", ErrCatalogFetch, resp.Status)
	}

	var entries []Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		metrics.RecordErrorByComponent("exercise", "decode_failed")
		return fmt.Errorf("%w: %w", ErrCatalogFetch, err)
	}

	byName := make(map[string]*Entry, len(entries))
	for i := range entries {
		if entries[i].Name != "" {
			byName[strings.ToLower(entries[i].Name)] = &entries[i]
		}
	}

	c.mu.Lock()
	c.entries = entries
	c.byName = byName
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	metrics.RecordExerciseCacheRefresh()
	metrics.UpdateExerciseCatalogSize(len(entries))
	c.log.Info(ctx, "exercise catalog loaded", logger.Int("exercises", len(entries)))
	return nil
}
