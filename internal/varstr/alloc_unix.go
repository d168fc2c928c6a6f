//go:build unix

package varstr

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// headerSize is the bookkeeping prefix of every allocation: the total
// mapped length, needed to unmap without a side table.
const headerSize = 8

var defaultAllocator Allocator = mmapAllocator{}

// mmapAllocator hands out anonymous memory mappings. The memory lives
// outside the Go heap, so the addresses embedded into record buffers stay
// stable and survive until explicitly unmapped.
type mmapAllocator struct{}

func (mmapAllocator) Alloc(size int) (uintptr, error) {
	total := size + headerSize
	b, err := unix.Mmap(-1, 0, total, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return 0, err
	}
	*(*uint64)(unsafe.Pointer(&b[0])) = uint64(total) //nolint:gosec // header of our own mapping
	return uintptr(unsafe.Pointer(&b[0])) + headerSize, nil
}

func (mmapAllocator) Free(addr uintptr) error {
	base := unsafe.Pointer(addr - headerSize) //nolint:gosec // mmap memory, not GC managed
	total := *(*uint64)(base)
	return unix.Munmap(unsafe.Slice((*byte)(base), int(total)))
}
