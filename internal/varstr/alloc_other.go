//go:build !unix

package varstr

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"
)

var defaultAllocator Allocator = newPinnedAllocator()

// pinnedAllocator is the fallback for platforms without anonymous memory
// mappings. Allocations come from the Go heap, pinned so their addresses
// stay stable; a registry keyed by address keeps them alive until Free.
type pinnedAllocator struct {
	mu   sync.Mutex
	live map[uintptr]*pinnedBlock
}

type pinnedBlock struct {
	buf []byte
	pin runtime.Pinner
}

func newPinnedAllocator() *pinnedAllocator {
	return &pinnedAllocator{live: make(map[uintptr]*pinnedBlock)}
}

func (p *pinnedAllocator) Alloc(size int) (uintptr, error) {
	if size <= 0 {
		size = 1
	}
	blk := &pinnedBlock{buf: make([]byte, size)}
	blk.pin.Pin(&blk.buf[0])
	addr := uintptr(unsafe.Pointer(&blk.buf[0]))

	p.mu.Lock()
	p.live[addr] = blk
	p.mu.Unlock()
	return addr, nil
}

func (p *pinnedAllocator) Free(addr uintptr) error {
	p.mu.Lock()
	blk, ok := p.live[addr]
	if ok {
		delete(p.live, addr)
	}
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("varstr: free of unknown address %#x", addr)
	}
	blk.pin.Unpin()
	return nil
}
