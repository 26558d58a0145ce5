package dbd

import (
	"fmt"
	"strconv"
)

// TypeKind discriminates the resolved Type union.
type TypeKind int

const (
	TypeInt8 TypeKind = iota
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUInt8
	TypeUInt16
	TypeUInt32
	TypeUInt64
	TypeFloat
	TypeLocString
	TypeString
	TypeForeignKey
	TypeArray
)

// Type is the concrete field type produced by resolution: either a scalar,
// a foreign-keyed integer, or an array of any of those. ForeignKey and Array
// each own exactly one inner Type; wrapping strictly nests, so no cycles are
// possible.
type Type struct {
	Kind TypeKind

	// Key is set when Kind is TypeForeignKey.
	Key ForeignKey

	// Inner is the wrapped type when Kind is TypeForeignKey or TypeArray.
	Inner *Type

	// Len is the element count when Kind is TypeArray.
	Len int
}

// IsInteger reports whether the type is a scalar of the integer family.
// Only these may be wrapped in a foreign key.
func (t Type) IsInteger() bool {
	switch t.Kind {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64,
		TypeUInt8, TypeUInt16, TypeUInt32, TypeUInt64:
		return true
	}
	return false
}

// String renders the type compactly, e.g. "uint32", "int16<Map::ID>",
// "int8[4]".
func (t Type) String() string {
	switch t.Kind {
	case TypeInt8:
		return "int8"
	case TypeInt16:
		return "int16"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeUInt8:
		return "uint8"
	case TypeUInt16:
		return "uint16"
	case TypeUInt32:
		return "uint32"
	case TypeUInt64:
		return "uint64"
	case TypeFloat:
		return "float"
	case TypeLocString:
		return "locstring"
	case TypeString:
		return "string"
	case TypeForeignKey:
		return t.Inner.String() + t.Key.String()
	case TypeArray:
		return t.Inner.String() + "[" + strconv.Itoa(t.Len) + "]"
	}
	return fmt.Sprintf("TypeKind(%d)", int(t.Kind))
}

// ResolvedEntry is an entry merged with its column declaration: the final
// Type plus the flags and comments carried through from both sides. The
// entry and column comments stay separate.
type ResolvedEntry struct {
	Name string
	Type Type

	Comment       string
	ColumnComment string

	Verified   bool
	PrimaryKey bool
	Inline     bool
	Relation   bool
}

// HasTag reports whether the entry must be written back with a $...$ block.
func (e *ResolvedEntry) HasTag() bool {
	return e.PrimaryKey || !e.Inline || e.Relation
}

// ResolvedDefinition mirrors Definition with typed entries.
type ResolvedDefinition struct {
	Versions []Version
	Ranges   []VersionRange
	Layouts  []Layout
	Entries  []ResolvedEntry
}

func (d *ResolvedDefinition) matchesRange(v Version) bool {
	for _, r := range d.Ranges {
		if r.Contains(v) {
			return true
		}
	}
	return false
}

func (d *ResolvedDefinition) matchesExact(v Version) bool {
	for _, ev := range d.Versions {
		if ev == v {
			return true
		}
	}
	return false
}

// ResolvedFile is the semantic tier of a .dbd document. The column registry
// is gone: every entry carries its full type.
type ResolvedFile struct {
	Name        string
	Definitions []ResolvedDefinition
}

// SpecificVersion returns the definition covering the given build, or nil,
// with the same search order as File.SpecificVersion.
func (f *ResolvedFile) SpecificVersion(v Version) *ResolvedDefinition {
	for i := range f.Definitions {
		if f.Definitions[i].matchesRange(v) {
			return &f.Definitions[i]
		}
	}
	for i := range f.Definitions {
		if f.Definitions[i].matchesExact(v) {
			return &f.Definitions[i]
		}
	}
	return nil
}
