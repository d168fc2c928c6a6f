package mapping

import (
	"errors"
	"fmt"
)

// ErrSchemaMismatch is the sentinel matched by errors.Is when a mapping
// disagrees with the declared kind of its field.
var ErrSchemaMismatch = errors.New("schema mismatch")

// SchemaMismatchError indicates that a member mapping's declared length or
// kind disagrees with the bound field. It is raised during validation,
// before any buffer is touched.
type SchemaMismatchError struct {
	Field  string
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch for field %q: %s", e.Field, e.Reason)
}

func (e *SchemaMismatchError) Unwrap() error { return ErrSchemaMismatch }
