// Package compoundgo maps typed records onto fixed-size binary compound
// buffers for an external record store.
//
// A compound Type is assembled from a name, a schema descriptor and an
// ordered list of member mappings. Mappings can be declared explicitly,
// inferred from a struct prototype (honoring `compound` tags) or inferred
// from runtime values:
//
//   - Explicit: mapping.Mapping("date").FieldName("Date"), ...
//   - Struct: compoundgo.NewTypeFromStruct("link", Link{}, enumTypes)
//   - Values: compoundgo.NewTypeFromValues("row", map[string]any{...})
//
// Supported member kinds are booleans, sized integers, floats, fixed and
// variable-length text, bit-sets, enumerations and their arrays and
// matrices. All binary placement uses the platform's native byte order.
//
// # Quick Start
//
//	typ, err := compoundgo.NewTypeFromStruct("link", Link{}, nil)
//	if err != nil {
//	    panic(err)
//	}
//
//	buf := make([]byte, typ.RecordSize())
//	if err := typ.EncodeRecord(link, buf); err != nil {
//	    panic(err)
//	}
//	// hand buf to the record store, read it back ...
//	rec, err := typ.DecodeRecord(buf)
//
// # Buffer Ownership
//
// Record buffers are caller-owned and single-threaded: a buffer and the
// text allocations it embeds must not be used by more than one
// encode/decode/release call at a time. A buffer with variable-length
// text members owns native allocations; Release must be called exactly
// once per successfully encoded buffer, after its final consumer has read
// it. See Type.Release.
package compoundgo
