package mapping

import "fmt"

// Bind locates the field for mapping m and validates kind compatibility.
//
// The field is resolved against the descriptor first; mappings inferred
// from runtime values carry their own field hint and resolve against that
// when the descriptor has no matching field. Absence is reported as
// found == false rather than an error: the caller decides whether a
// missing field is fatal.
//
// Validation is fail-fast and happens before any encode/decode attempt:
// a mapped length > 1 requires a field that can hold a sequence (text,
// array, bit-set, enumeration array or multi-dimensional array), and a
// mapped length of 0 on such a field is illegal.
func Bind(m *MemberMapping, desc *Descriptor) (FieldDescriptor, bool, error) {
	if err := m.Err(); err != nil {
		return FieldDescriptor{}, false, err
	}

	fd, found := desc.Lookup(m.Field())
	if !found {
		fd, found = m.FieldHint()
	}
	if !found {
		return FieldDescriptor{}, false, nil
	}

	if m.ElementCount() > 1 && !fd.IsSequence() {
		return FieldDescriptor{}, true, &SchemaMismatchError{
			Field: m.Field(),
			Reason: fmt.Sprintf("field kind %s is scalar, but a length of %d is given",
				fd.Kind, m.ElementCount()),
		}
	}
	if m.ElementCount() == 0 && fd.IsSequence() {
		return FieldDescriptor{}, true, &SchemaMismatchError{
			Field:  m.Field(),
			Reason: fmt.Sprintf("field kind %s requires a length >= 1, but 0 is given", fd.Kind),
		}
	}
	if fd.Kind == KindEnum && m.Enum() == nil {
		return FieldDescriptor{}, true, &SchemaMismatchError{
			Field:  m.Field(),
			Reason: "enumeration member has no enumeration type",
		}
	}
	return fd, true, nil
}
