// Package varstr implements the variable-length text embedding protocol
// for fixed-size compound records.
//
// A fixed-size record cannot hold unbounded text inline. Instead, the
// member's slot holds a native pointer (PointerSize bytes) to a separately
// allocated, NUL-terminated copy of the text, living outside the Go heap.
//
// # Lifetime contract
//
// Ownership of every allocation made by EncodeString transfers to the
// buffer until it is explicitly released. ReleaseAll must be invoked
// exactly once per successfully encoded buffer, after the buffer's final
// consumer has read it: invoking it zero times leaks every embedded
// allocation; invoking it more than once, or with a wrong record size or
// wrong offsets, is undefined behavior — no guard is maintained, and
// correctness rests on the caller supplying verified layout values.
//
// All unsafe pointer reads and writes of the protocol are confined to this
// package.
package varstr

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unsafe"
)

// PointerSize is the native pointer width of the platform in bytes. Every
// variable-length text member occupies exactly this many bytes in the
// record.
const PointerSize = int(unsafe.Sizeof(uintptr(0)))

var (
	// ErrNilBuffer is returned when the record buffer is absent.
	ErrNilBuffer = errors.New("varstr: nil buffer")
	// ErrNilOffsets is returned when the offset list is absent.
	ErrNilOffsets = errors.New("varstr: nil offsets")
	// ErrShortBuffer is returned when the pointer slot does not fit the buffer.
	ErrShortBuffer = errors.New("varstr: buffer too short for pointer slot")
	// ErrOutOfMemory is returned when the native text allocation fails. The
	// in-flight record encode must be aborted; continuing to encode members
	// into a partially written buffer is not allowed.
	ErrOutOfMemory = errors.New("varstr: out of memory")
)

// EncodeString allocates a NUL-terminated native copy of s and writes its
// address into buf at off. Ownership of the allocation transfers to the
// buffer; see the package lifetime contract.
//
// A nil allocator selects the process default.
func EncodeString(a Allocator, s string, buf []byte, off int) error {
	if buf == nil {
		return ErrNilBuffer
	}
	if off < 0 || off+PointerSize > len(buf) {
		return fmt.Errorf("%w: offset %d in buffer of %d bytes", ErrShortBuffer, off, len(buf))
	}
	if a == nil {
		a = Default()
	}

	n := len(s)
	addr, err := a.Alloc(n + 1)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}
	dst := unsafe.Slice((*byte)(unsafe.Pointer(addr)), n+1) //nolint:gosec // off-heap memory owned by the allocator
	copy(dst, s)
	dst[n] = 0

	putPointer(buf[off:], addr)
	return nil
}

// DecodeString reads the pointer at off and copies the NUL-terminated text
// it points to. The allocation is not released. A zero pointer (slot never
// encoded) decodes as the empty string.
func DecodeString(buf []byte, off int) (string, error) {
	if buf == nil {
		return "", ErrNilBuffer
	}
	if off < 0 || off+PointerSize > len(buf) {
		return "", fmt.Errorf("%w: offset %d in buffer of %d bytes", ErrShortBuffer, off, len(buf))
	}

	addr := getPointer(buf[off:])
	if addr == 0 {
		return "", nil
	}
	n := 0
	for *(*byte)(unsafe.Pointer(addr + uintptr(n))) != 0 { //nolint:gosec // bounded by the NUL terminator
		n++
	}
	if n == 0 {
		return "", nil
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(addr)), n)), nil //nolint:gosec // copied before return
}

// Release frees the single embedded allocation whose pointer is stored at
// off and zeroes the slot. Used to undo already-encoded members when a
// record encode is aborted; a zero slot is a no-op.
func Release(a Allocator, buf []byte, off int) error {
	if buf == nil {
		return ErrNilBuffer
	}
	if off < 0 || off+PointerSize > len(buf) {
		return fmt.Errorf("%w: offset %d in buffer of %d bytes", ErrShortBuffer, off, len(buf))
	}
	if a == nil {
		a = Default()
	}

	addr := getPointer(buf[off:])
	if addr == 0 {
		return nil
	}
	putPointer(buf[off:], 0)
	return a.Free(addr)
}

// ReleaseAll frees every embedded text allocation of a buffer holding
// len(buf)/recordSize contiguous records, reading the pointer at
// recordBase+offset for every record and every offset.
//
// Preconditions per the package lifetime contract: call exactly once per
// successfully encoded buffer, with the record size and variable-length
// offsets the buffer was encoded with. Violations are not detected;
// out-of-range offsets panic.
func ReleaseAll(a Allocator, buf []byte, recordSize int, offsets []int) error {
	if buf == nil {
		return ErrNilBuffer
	}
	if offsets == nil {
		return ErrNilOffsets
	}
	if recordSize <= 0 {
		return fmt.Errorf("varstr: invalid record size %d", recordSize)
	}
	if a == nil {
		a = Default()
	}

	for base := 0; base+recordSize <= len(buf); base += recordSize {
		for _, off := range offsets {
			addr := getPointer(buf[base+off:])
			if addr == 0 {
				continue
			}
			if err := a.Free(addr); err != nil {
				return err
			}
		}
	}
	return nil
}

func putPointer(b []byte, addr uintptr) {
	if PointerSize == 8 {
		binary.NativeEndian.PutUint64(b, uint64(addr))
	} else {
		binary.NativeEndian.PutUint32(b, uint32(addr))
	}
}

func getPointer(b []byte) uintptr {
	if PointerSize == 8 {
		return uintptr(binary.NativeEndian.Uint64(b))
	}
	return uintptr(binary.NativeEndian.Uint32(b))
}
