package compoundgo

import (
	"time"

	"github.com/hupe1980/compoundgo/internal/varstr"
)

// Release frees the native text allocations embedded in a successfully
// encoded buffer, treating it as len(buf)/RecordSize contiguous records.
// For types without variable-length members it is a no-op.
//
// Release must be called exactly once per successfully encoded buffer,
// after its final consumer has read it. Skipping the call leaks every
// embedded allocation; calling it twice, or with a buffer the type did
// not encode, is undefined behavior. No guard is maintained.
func (t *Type) Release(buf []byte) error {
	start := time.Now()

	var err error
	slots := 0
	switch {
	case buf == nil:
		err = ErrNilBuffer
	case len(t.varOffsets) == 0:
		// Nothing embedded, nothing to free.
	default:
		slots = (len(buf) / t.recordSize) * len(t.varOffsets)
		err = varstr.ReleaseAll(t.alloc, buf, t.recordSize, t.varOffsets)
	}

	t.metrics.RecordRelease(slots, time.Since(start), err)
	t.logger.LogRelease(len(buf)/t.recordSize, slots, err)
	return err
}
