package grid

import (
	"fmt"
	"maps"
	"slices"
)

// MetadataValue is a closed set of typed metadata values. The concrete types are
// Vec3i, Vec3d, Int, Float, String, Bool and Unsupported.
type MetadataValue interface {
	fmt.Stringer
	metadataValue()
}

type (
	Vec3i  [3]int32
	Vec3d  [3]float64
	Int    int64
	Float  float64
	String string
	Bool   bool
	// Unsupported keeps the type name of a value the reader does not decode.
	Unsupported struct{ Type string }
)

func (Vec3i) metadataValue()       {}
func (Vec3d) metadataValue()       {}
func (Int) metadataValue()         {}
func (Float) metadataValue()       {}
func (String) metadataValue()      {}
func (Bool) metadataValue()        {}
func (Unsupported) metadataValue() {}

func (v Vec3i) String() string       { return fmt.Sprintf("vec3i%v", [3]int32(v)) }
func (v Vec3d) String() string       { return fmt.Sprintf("vec3d%v", [3]float64(v)) }
func (v Int) String() string         { return fmt.Sprintf("int(%d)", int64(v)) }
func (v Float) String() string       { return fmt.Sprintf("float(%g)", float64(v)) }
func (v String) String() string      { return fmt.Sprintf("string(%q)", string(v)) }
func (v Bool) String() string        { return fmt.Sprintf("bool(%t)", bool(v)) }
func (v Unsupported) String() string { return fmt.Sprintf("unsupported(%s)", v.Type) }

// TypeName is the variant name used in manifests and diagnostics.
func TypeName(v MetadataValue) string {
	switch v := v.(type) {
	case Vec3i:
		return "vec3i"
	case Vec3d:
		return "vec3d"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Bool:
		return "bool"
	case Unsupported:
		return v.Type
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Metadata maps keys to typed values. A nil Metadata is empty.
type Metadata map[string]MetadataValue

// Lookup returns the value stored under key.
func (m Metadata) Lookup(key string) (MetadataValue, bool) {
	v, ok := m[key]
	return v, ok
}

// Keys returns the keys in sorted order.
func (m Metadata) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}
