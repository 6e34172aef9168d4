package gtfs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"tripplanner.dev/gtfs/downloader"
	"tripplanner.dev/gtfs/model"
	"tripplanner.dev/gtfs/parse"
)

const (
	DefaultStaticTTL     = 24 * time.Hour
	DefaultStaticTimeout = 30 * time.Second
	DefaultStaticMaxSize = 800 << 20 // 800 MB
)

type cacheEntry struct {
	tables    *parse.TableSet
	fetchedAt time.Time
	expiresAt time.Time
}

// StaticCache holds the decoded tables of each source's static
// archive for TTL.
//
// Archives are only downloaded on miss or expiry. Concurrent requests
// for the same source share a single download. Failed downloads
// leave the cache untouched, so the next request tries again.
type StaticCache struct {
	TTL     time.Duration
	Timeout time.Duration
	MaxSize int

	// Passed on to the Downloader, for downloaders that keep their
	// own copy of the archive (e.g. downloader.Filesystem).
	CacheArchives bool

	Downloader downloader.Downloader
	TimeNow    func() time.Time
	Logger     *slog.Logger

	registry *Registry
	mutex    sync.RWMutex
	entries  map[string]*cacheEntry
	flight   singleflight.Group

	// Bumped by Clear. A fetch only stores its result if the
	// generation it started under is still current.
	generations map[string]uint64
}

func NewStaticCache(registry *Registry) *StaticCache {
	return &StaticCache{
		TTL:         DefaultStaticTTL,
		Timeout:     DefaultStaticTimeout,
		MaxSize:     DefaultStaticMaxSize,
		Downloader:  downloader.NewMemoryDownloader(),
		TimeNow:     time.Now,
		Logger:      slog.Default(),
		registry:    registry,
		entries:     map[string]*cacheEntry{},
		generations: map[string]uint64{},
	}
}

func (c *StaticCache) Sources() *Registry {
	return c.registry
}

// Returns the entry for sourceID if present and not expired.
func (c *StaticCache) valid(sourceID string) *cacheEntry {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, found := c.entries[sourceID]
	if !found || !c.TimeNow().Before(entry.expiresAt) {
		return nil
	}
	return entry
}

// Returns the decoded tables of a source, fetching the archive if
// necessary.
//
// A caller whose context is done stops waiting, but an in-flight
// fetch is never aborted on its behalf. Other callers may be waiting
// for the same result.
func (c *StaticCache) GetData(ctx context.Context, sourceID string) (*parse.TableSet, error) {
	source, err := c.registry.Get(sourceID)
	if err != nil {
		return nil, err
	}

	if entry := c.valid(sourceID); entry != nil {
		c.Logger.Debug("static cache hit", "source", sourceID)
		return entry.tables, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(sourceID, func() (interface{}, error) {
		// A fetch may have completed between the check above
		// and joining the flight.
		if entry := c.valid(sourceID); entry != nil {
			return entry.tables, nil
		}
		return c.fetch(fetchCtx, source, c.generation(sourceID))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*parse.TableSet), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *StaticCache) generation(sourceID string) uint64 {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.generations[sourceID]
}

func (c *StaticCache) fetch(ctx context.Context, source model.Source, generation uint64) (*parse.TableSet, error) {
	c.Logger.Info("fetching static archive", "source", source.ID, "url", source.URL)

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	buf, err := c.Downloader.Get(ctx, source.URL, nil, downloader.GetOptions{
		Cache:    c.CacheArchives,
		CacheTTL: c.TTL,
		Timeout:  c.Timeout,
		MaxSize:  c.MaxSize,
	})
	if err != nil {
		c.Logger.Error("fetching static archive", "source", source.ID, "op", OpDownload, "err", err)
		return nil, &FetchError{SourceID: source.ID, Op: OpDownload, Err: err}
	}

	tables, err := parse.ParseStatic(buf, c.Logger.With("source", source.ID))
	if err != nil {
		c.Logger.Error("decoding static archive", "source", source.ID, "op", OpDecode, "err", err)
		return nil, &FetchError{SourceID: source.ID, Op: OpDecode, Err: err}
	}

	now := c.TimeNow()
	entry := &cacheEntry{
		tables:    tables,
		fetchedAt: now,
		expiresAt: now.Add(c.TTL),
	}

	c.mutex.Lock()
	current := c.generations[source.ID] == generation
	if current {
		c.entries[source.ID] = entry
	}
	c.mutex.Unlock()

	if !current {
		c.Logger.Info("static archive cleared while loading, not cached", "source", source.ID)
		return tables, nil
	}

	c.Logger.Info(
		"static archive loaded",
		"source", source.ID,
		"stops", len(tables.Stops()),
		"stop_times", len(tables.StopTimes()),
		"bytes", len(buf),
	)

	return tables, nil
}

func (c *StaticCache) status(source model.Source, entry *cacheEntry) model.CacheStatus {
	fetchedAt := entry.fetchedAt
	expiresAt := entry.expiresAt
	return model.CacheStatus{
		SourceID:    source.ID,
		SourceName:  source.Name,
		Cached:      true,
		LastFetched: &fetchedAt,
		ExpiresAt:   &expiresAt,
		IsExpired:   !c.TimeNow().Before(expiresAt),
	}
}

// Cache status of one source. Expired entries are still reported,
// flagged IsExpired.
func (c *StaticCache) CacheInfo(sourceID string) (model.CacheStatus, error) {
	source, err := c.registry.Get(sourceID)
	if err != nil {
		return model.CacheStatus{}, err
	}

	c.mutex.RLock()
	entry, found := c.entries[sourceID]
	c.mutex.RUnlock()

	if !found {
		return model.CacheStatus{SourceID: sourceID}, nil
	}

	return c.status(source, entry), nil
}

// Cache status of every source with an entry, in registry order.
func (c *StaticCache) CacheInfoAll() model.CacheSummary {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	statuses := []model.CacheStatus{}
	for _, source := range c.registry.List() {
		entry, found := c.entries[source.ID]
		if !found {
			continue
		}
		statuses = append(statuses, c.status(source, entry))
	}

	return model.CacheSummary{
		Cached:       len(statuses) > 0,
		Sources:      statuses,
		TotalSources: len(statuses),
	}
}

// Drops the entries of the given sources, or all entries if none are
// given, along with any archive copies the Downloader keeps.
//
// Fetches in flight still answer the callers already waiting on them,
// but their result is not cached. Later callers start a new fetch.
func (c *StaticCache) Clear(sourceIDs ...string) error {
	sources := []model.Source{}
	for _, id := range sourceIDs {
		source, err := c.registry.Get(id)
		if err != nil {
			return err
		}
		sources = append(sources, source)
	}
	if len(sourceIDs) == 0 {
		sources = c.registry.List()
	}

	c.mutex.Lock()
	if len(sourceIDs) == 0 {
		c.entries = map[string]*cacheEntry{}
	}
	for _, source := range sources {
		delete(c.entries, source.ID)
		c.generations[source.ID]++
	}
	c.mutex.Unlock()

	for _, source := range sources {
		c.flight.Forget(source.ID)
	}

	forgetter, ok := c.Downloader.(downloader.Forgetter)
	for _, source := range sources {
		c.Logger.Info("static cache cleared", "source", source.ID)
		if !ok {
			continue
		}
		err := forgetter.Forget(source.URL)
		if err != nil {
			return fmt.Errorf("dropping archive copy of %s: %w", source.ID, err)
		}
	}

	return nil
}

// Source report for a contained per-source failure.
func failedSource(sourceID string, err error) model.SourceReport {
	return model.SourceReport{
		SourceID: sourceID,
		OK:       false,
		Error:    err.Error(),
	}
}
