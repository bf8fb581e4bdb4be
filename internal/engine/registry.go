package engine

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const DefaultMaxOpen = 256

// flusher is implemented by writers that can confirm queued rows reached the
// store. *persist.Writer implements it.
type flusher interface {
	Flush(ctx context.Context) error
}

// #region registry

// Registry holds the most recently used journeys in memory. A journey pushed
// out of the cache re-enqueues its row and stays retired until the writer
// confirms the row is stored; a Get in the meantime revives the same
// *Journey instead of reading a stale or missing row.
//
// Callers should not hold a *Journey across Get calls for other keys.
type Registry struct {
	loader Loader
	deps   Deps

	mu      sync.Mutex
	cache   *lru.Cache[string, *Journey]
	retired map[string]*Journey
}

// NewRegistry builds a registry holding at most maxOpen journeys.
func NewRegistry(loader Loader, maxOpen int, deps Deps) (*Registry, error) {
	if maxOpen <= 0 {
		maxOpen = DefaultMaxOpen
	}
	r := &Registry{
		loader:  loader,
		deps:    deps.withDefaults(),
		retired: make(map[string]*Journey),
	}
	cache, err := lru.NewWithEvict(maxOpen, r.onEvict)
	if err != nil {
		return nil, fmt.Errorf("journey registry: %w", err)
	}
	r.cache = cache
	return r, nil
}

// Get returns the open journey for key. On a miss it revives a retired
// journey, or waits for retired rows to be stored and restores key from the
// store.
func (r *Registry) Get(ctx context.Context, key string) (*Journey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if j, ok := r.cache.Get(key); ok {
		return j, nil
	}
	if j, ok := r.retired[key]; ok {
		delete(r.retired, key)
		r.cache.Add(key, j)
		r.deps.Metrics.SetOpen(r.cache.Len())
		r.deps.Logger.Debug("journey revived", zap.String("key", key))
		return j, nil
	}
	if err := r.settle(ctx); err != nil {
		return nil, err
	}
	j, err := Open(ctx, r.loader, key, r.deps)
	if err != nil {
		return nil, err
	}
	r.cache.Add(key, j)
	r.deps.Metrics.SetOpen(r.cache.Len())
	return j, nil
}

// Peek returns an open journey without touching recency or the store.
func (r *Registry) Peek(key string) (*Journey, bool) {
	return r.cache.Peek(key)
}

// Remove flushes and drops key from the cache.
func (r *Registry) Remove(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	ok := r.cache.Remove(key)
	r.deps.Metrics.SetOpen(r.cache.Len())
	return ok
}

// Len reports the number of open journeys.
func (r *Registry) Len() int { return r.cache.Len() }

// Retired reports how many evicted journeys await write confirmation.
func (r *Registry) Retired() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.retired)
}

// Keys lists open journeys from oldest to newest use.
func (r *Registry) Keys() []string { return r.cache.Keys() }

// Close flushes and drops every journey.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Purge()
	clear(r.retired)
	r.deps.Metrics.SetOpen(0)
}

// onEvict runs inside cache calls made under r.mu.
func (r *Registry) onEvict(key string, j *Journey) {
	j.Flush()
	if r.deps.Writer != nil {
		r.retired[key] = j
	}
	r.deps.Logger.Debug("journey evicted", zap.String("key", key))
}

// settle waits for retired rows to reach the store, then releases them.
// Writers that cannot confirm writes keep their journeys retired.
func (r *Registry) settle(ctx context.Context) error {
	if len(r.retired) == 0 {
		return nil
	}
	f, ok := r.deps.Writer.(flusher)
	if !ok {
		return nil
	}
	if err := f.Flush(ctx); err != nil {
		return fmt.Errorf("journey registry: flush retired journeys: %w", err)
	}
	clear(r.retired)
	return nil
}

// #endregion registry
