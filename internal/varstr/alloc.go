package varstr

import "sync/atomic"

// Allocator provides native memory for embedded text. Alloc returns the
// address of a zero-initialized region of at least size bytes; Free
// releases a region previously returned by Alloc.
//
// Implementations must be safe for concurrent use; the same allocator is
// typically shared by every buffer of a compound type.
type Allocator interface {
	Alloc(size int) (uintptr, error)
	Free(addr uintptr) error
}

// Default returns the process-wide default allocator.
func Default() Allocator { return defaultAllocator }

// CountingAllocator wraps an allocator and counts allocations and frees.
// It exists so tests can verify that the net allocation balance of a
// release pass reaches zero.
type CountingAllocator struct {
	inner  Allocator
	allocs atomic.Int64
	frees  atomic.Int64
}

// NewCountingAllocator wraps inner; nil selects the process default.
func NewCountingAllocator(inner Allocator) *CountingAllocator {
	if inner == nil {
		inner = Default()
	}
	return &CountingAllocator{inner: inner}
}

// Alloc implements Allocator.
func (c *CountingAllocator) Alloc(size int) (uintptr, error) {
	addr, err := c.inner.Alloc(size)
	if err == nil {
		c.allocs.Add(1)
	}
	return addr, err
}

// Free implements Allocator.
func (c *CountingAllocator) Free(addr uintptr) error {
	err := c.inner.Free(addr)
	if err == nil {
		c.frees.Add(1)
	}
	return err
}

// Allocs returns the number of successful allocations.
func (c *CountingAllocator) Allocs() int64 { return c.allocs.Load() }

// Frees returns the number of successful frees.
func (c *CountingAllocator) Frees() int64 { return c.frees.Load() }

// Balance returns outstanding allocations: Allocs() - Frees().
func (c *CountingAllocator) Balance() int64 { return c.allocs.Load() - c.frees.Load() }
