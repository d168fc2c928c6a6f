package compoundgo

import (
	"errors"

	"github.com/hupe1980/compoundgo/internal/varstr"
)

var (
	// ErrNilBuffer is returned when the record buffer is absent.
	ErrNilBuffer = varstr.ErrNilBuffer

	// ErrShortBuffer is returned when the buffer cannot hold the records
	// of an operation.
	ErrShortBuffer = varstr.ErrShortBuffer

	// ErrNilValue is returned when a required record value is absent.
	ErrNilValue = errors.New("compoundgo: nil value")

	// ErrOutOfMemory is returned when the native allocation for an
	// embedded text fails. The in-flight record encode is aborted and
	// already embedded allocations of the operation are released; the
	// buffer does not need a Release call afterwards.
	ErrOutOfMemory = varstr.ErrOutOfMemory
)
