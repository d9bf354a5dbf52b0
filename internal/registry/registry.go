// Package registry scopes phase instances to the server: each visit to a
// phase gets a fresh instance keyed by its id, and instances that go idle
// for longer than the TTL are evicted and closed.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alkime/practicum/internal/workflow"
	"github.com/patrickmn/go-cache"
)

// ErrNotFound is returned for unknown or expired instance ids.
var ErrNotFound = errors.New("phase instance not found")

// Registry holds live phase instances.
type Registry struct {
	cache  *cache.Cache
	logger *slog.Logger
}

// New creates a registry. Instances expire after ttl without access and
// are swept every sweep interval; a zero sweep disables the background
// janitor.
func New(ttl, sweep time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{
		cache:  cache.New(ttl, sweep),
		logger: logger.With("component", "registry"),
	}

	r.cache.OnEvicted(r.evicted)

	return r
}

func (r *Registry) evicted(id string, value any) {
	inst, ok := value.(workflow.Instance)
	if !ok {
		return
	}

	if err := inst.Close(); err != nil {
		r.logger.Warn("failed to close evicted instance", "instance", id, "error", err)
	}

	r.logger.Debug("instance discarded", "instance", id, "phase", inst.Phase())
}

// Add registers inst under its id.
func (r *Registry) Add(inst workflow.Instance) {
	r.cache.Set(inst.ID(), inst, cache.DefaultExpiration)
	r.logger.Debug("instance added", "instance", inst.ID(), "phase", inst.Phase(), "variant", inst.Variant())
}

// Learn returns the learn instance for id and refreshes its expiry.
func (r *Registry) Learn(id string) (*workflow.Learn, error) {
	return get[*workflow.Learn](r, id)
}

// Practice returns the practice instance for id and refreshes its expiry.
func (r *Registry) Practice(id string) (*workflow.Practice, error) {
	return get[*workflow.Practice](r, id)
}

func get[T workflow.Instance](r *Registry, id string) (T, error) {
	var zero T

	x, found := r.cache.Get(id)
	if !found {
		return zero, fmt.Errorf("instance %q: %w", id, ErrNotFound)
	}

	inst, ok := x.(T)
	if !ok {
		return zero, fmt.Errorf("instance %q is a %s instance: %w", id, x.(workflow.Instance).Phase(), ErrNotFound)
	}

	// Replace only succeeds for a live entry, so an instance evicted
	// since the Get is never re-added.
	if err := r.cache.Replace(id, inst, cache.DefaultExpiration); err != nil {
		return zero, fmt.Errorf("instance %q: %w", id, ErrNotFound)
	}

	return inst, nil
}

// Discard removes and closes the instance for id, if present.
func (r *Registry) Discard(id string) {
	r.cache.Delete(id)
}

// Sweep evicts and closes expired instances now.
func (r *Registry) Sweep() {
	r.cache.DeleteExpired()
}

// Len returns the number of live instances, including expired ones not
// yet swept.
func (r *Registry) Len() int {
	return r.cache.ItemCount()
}

// Close discards every instance.
func (r *Registry) Close() {
	for id := range r.cache.Items() {
		r.cache.Delete(id)
	}
}
