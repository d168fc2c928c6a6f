package enum

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Registry resolves enumeration type names to their symbol tables.
//
// The symbol tables typically live in the storage engine; the codec only
// reads them. Implementations must return types whose symbol order matches
// the stored order, otherwise ordinals will not line up.
type Registry interface {
	ResolveEnumType(ctx context.Context, name string) (*Type, error)
}

// StaticRegistry is a Registry backed by a fixed set of types.
// Useful for tests and for self-contained schemas.
type StaticRegistry map[string]*Type

// ResolveEnumType implements Registry.
func (r StaticRegistry) ResolveEnumType(_ context.Context, name string) (*Type, error) {
	t, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("enum registry: type %q not found", name)
	}
	return t, nil
}

// CachedRegistry memoizes lookups against a slower backing Registry.
//
// Concurrent lookups for the same name are collapsed into a single call to
// the backing registry. Resolved types are cached forever; enumeration
// types are immutable in storage, so there is nothing to invalidate.
type CachedRegistry struct {
	inner Registry
	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]*Type
}

// NewCachedRegistry wraps the given registry with a memoizing cache.
func NewCachedRegistry(inner Registry) *CachedRegistry {
	return &CachedRegistry{
		inner: inner,
		cache: make(map[string]*Type),
	}
}

// ResolveEnumType implements Registry.
func (r *CachedRegistry) ResolveEnumType(ctx context.Context, name string) (*Type, error) {
	r.mu.RLock()
	t, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}

	v, err, _ := r.group.Do(name, func() (any, error) {
		t, err := r.inner.ResolveEnumType(ctx, name)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cache[name] = t
		r.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Type), nil
}
