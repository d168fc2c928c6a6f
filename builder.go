// Package compoundgo maps typed records onto fixed binary layouts.
//
// This file implements a fluent builder API for assembling compound types.
// The builder is immutable - each method returns a new builder with the
// updated configuration.
package compoundgo

import (
	"fmt"

	"github.com/hupe1980/compoundgo/enum"
	"github.com/hupe1980/compoundgo/mapping"
)

// Builder creates a new compound type builder with the given type name.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration. This ensures thread-safety and prevents
// accidental state sharing.
//
// Example:
//
//	typ, err := compoundgo.Builder("link").
//	    Struct(Link{}).
//	    EnumTypes(mapping.InferEnumTypes(link)).
//	    Logger(compoundgo.NewTextLogger(slog.LevelDebug)).
//	    Build()
func Builder(name string) TypeBuilder {
	return TypeBuilder{name: name}
}

// TypeBuilder is an immutable fluent builder for creating compound types.
// Exactly one source must be configured: Members, Struct or Values.
type TypeBuilder struct {
	name      string
	desc      *mapping.Descriptor
	members   []*mapping.MemberMapping
	prototype any
	values    map[string]any
	enumTypes map[string]*enum.Type
	optFns    []Option
}

// Members sets an explicit member mapping list as the type source.
func (b TypeBuilder) Members(members ...*mapping.MemberMapping) TypeBuilder {
	b.members = members
	return b
}

// Descriptor sets the schema descriptor the explicit members bind
// against. Only meaningful together with Members.
func (b TypeBuilder) Descriptor(desc *mapping.Descriptor) TypeBuilder {
	b.desc = desc
	return b
}

// Struct sets a struct prototype as the type source; the schema and the
// member mappings are inferred from it, honoring `compound` tags.
func (b TypeBuilder) Struct(prototype any) TypeBuilder {
	b.prototype = prototype
	return b
}

// EnumTypes sets the field-name-to-enumeration-type map consulted by
// struct inference. Only meaningful together with Struct.
func (b TypeBuilder) EnumTypes(enumTypes map[string]*enum.Type) TypeBuilder {
	b.enumTypes = enumTypes
	return b
}

// Values sets a name-keyed value map as the type source; member
// declarations are inferred from the values.
func (b TypeBuilder) Values(values map[string]any) TypeBuilder {
	b.values = values
	return b
}

// Logger configures structured logging for operations.
func (b TypeBuilder) Logger(logger *Logger) TypeBuilder {
	b.optFns = append(b.optFns[:len(b.optFns):len(b.optFns)], WithLogger(logger))
	return b
}

// Metrics configures a metrics collector for monitoring operations.
func (b TypeBuilder) Metrics(mc MetricsCollector) TypeBuilder {
	b.optFns = append(b.optFns[:len(b.optFns):len(b.optFns)], WithMetricsCollector(mc))
	return b
}

// Allocator configures the native allocator backing variable-length text.
func (b TypeBuilder) Allocator(a Allocator) TypeBuilder {
	b.optFns = append(b.optFns[:len(b.optFns):len(b.optFns)], WithAllocator(a))
	return b
}

// VariantTable replaces the variant table consulted during inference.
func (b TypeBuilder) VariantTable(t mapping.VariantTable) TypeBuilder {
	b.optFns = append(b.optFns[:len(b.optFns):len(b.optFns)], WithVariantTable(t))
	return b
}

// MapAllFields controls whether struct inference includes untagged fields.
func (b TypeBuilder) MapAllFields(mapAll bool) TypeBuilder {
	b.optFns = append(b.optFns[:len(b.optFns):len(b.optFns)], WithMapAllFields(mapAll))
	return b
}

// Build assembles and validates the compound type.
func (b TypeBuilder) Build() (*Type, error) {
	sources := 0
	for _, set := range []bool{b.members != nil, b.prototype != nil, b.values != nil} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return nil, fmt.Errorf("compoundgo: builder needs exactly one of Members, Struct or Values, got %d", sources)
	}

	switch {
	case b.prototype != nil:
		return NewTypeFromStruct(b.name, b.prototype, b.enumTypes, b.optFns...)
	case b.values != nil:
		return NewTypeFromValues(b.name, b.values, b.optFns...)
	default:
		return NewType(b.name, b.desc, b.members, b.optFns...)
	}
}
