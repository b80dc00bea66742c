// Package cache provides the read-through cache in front of form reads.
// Fournit le cache en lecture devant les lectures de formulaires.
package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/Walehamdi1/QNA/internal/domain"
	"github.com/Walehamdi1/QNA/internal/ports"
)

var _ ports.FormulaireCache = (*FormCache)(nil)

const listKey = "formulaires:list"

// Recorder receives hit/miss events / Reçoit les événements hit/miss
type Recorder interface {
	RecordCacheLookup(hit bool)
}

// FormCache caches form lists and details, collapsing concurrent misses.
// Met en cache listes et détails, en regroupant les miss concurrents.
type FormCache struct {
	c   *gocache.Cache
	sf  singleflight.Group
	rec Recorder
	ttl time.Duration

	// mu makes Invalidate and the generation check-and-store of a load mutually exclusive
	mu         sync.Mutex
	generation uint64
}

// NewFormCache creates cache; ttl <= 0 disables caching / Crée le cache; ttl <= 0 le désactive
func NewFormCache(ttl time.Duration, rec Recorder) *FormCache {
	cleanup := ttl * 2
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &FormCache{
		c:   gocache.New(ttl, cleanup),
		rec: rec,
		ttl: ttl,
	}
}

// List returns the cached form list or loads it / Retourne la liste en cache ou la charge
func (fc *FormCache) List(ctx context.Context, load func(context.Context) ([]*domain.Formulaire, error)) ([]*domain.Formulaire, error) {
	v, err := fc.get(ctx, listKey, func(ctx context.Context) (any, error) { return load(ctx) })
	if err != nil {
		return nil, err
	}
	return v.([]*domain.Formulaire), nil
}

// Detail returns the cached form detail or loads it / Retourne le détail en cache ou le charge
func (fc *FormCache) Detail(ctx context.Context, id int64, load func(context.Context) (*domain.FormulaireDetail, error)) (*domain.FormulaireDetail, error) {
	key := "formulaires:" + strconv.FormatInt(id, 10)
	v, err := fc.get(ctx, key, func(ctx context.Context) (any, error) { return load(ctx) })
	if err != nil {
		return nil, err
	}
	return v.(*domain.FormulaireDetail), nil
}

// Invalidate drops every cached form / Supprime tous les formulaires en cache
func (fc *FormCache) Invalidate() {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.generation++
	fc.c.Flush()
}

func (fc *FormCache) get(ctx context.Context, key string, load func(context.Context) (any, error)) (any, error) {
	if fc.ttl <= 0 {
		return load(ctx)
	}
	if v, ok := fc.c.Get(key); ok {
		fc.record(true)
		return v, nil
	}
	fc.record(false)

	fc.mu.Lock()
	gen := fc.generation
	fc.mu.Unlock()

	// Shared key includes generation so a fill started before Invalidate is not reused after it
	sfKey := key + "@" + strconv.FormatUint(gen, 10)
	v, err, _ := fc.sf.Do(sfKey, func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		fc.storeIfCurrent(key, v, gen)
		return v, nil
	})
	return v, err
}

// storeIfCurrent caches v unless an Invalidate ran since gen was read / Stocke v sauf si une invalidation a eu lieu
func (fc *FormCache) storeIfCurrent(key string, v any, gen uint64) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.generation == gen {
		fc.c.SetDefault(key, v)
	}
}

func (fc *FormCache) record(hit bool) {
	if fc.rec != nil {
		fc.rec.RecordCacheLookup(hit)
	}
}
