package dbd

import (
	"fmt"
	"sort"
)

// Version is a four-component client build number, ordered lexicographically
// by (Major, Minor, Patch, Build).
type Version struct {
	Major uint8
	Minor uint8
	Patch uint8
	Build uint16
}

// NewVersion constructs a Version value.
func NewVersion(major, minor, patch uint8, build uint16) Version {
	return Version{Major: major, Minor: minor, Patch: patch, Build: build}
}

// Compare returns -1, 0, or 1 depending on whether v orders before, equal to,
// or after other.
func (v Version) Compare(other Version) int {
	pairs := [4][2]int{
		{int(v.Major), int(other.Major)},
		{int(v.Minor), int(other.Minor)},
		{int(v.Patch), int(other.Patch)},
		{int(v.Build), int(other.Build)},
	}
	for _, p := range pairs {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}

// Less reports whether v orders strictly before other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// String renders the version as "major.minor.patch.build".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Build)
}

// VersionRange is an inclusive span of versions. A range whose From orders
// after its To is legal and contains nothing.
type VersionRange struct {
	From Version
	To   Version
}

// Contains reports whether v lies within the range, inclusive at both ends.
func (r VersionRange) Contains(v Version) bool {
	return r.From.Compare(v) <= 0 && r.To.Compare(v) >= 0
}

// String renders the range as "from-to".
func (r VersionRange) String() string {
	return r.From.String() + "-" + r.To.String()
}

// Layout is an opaque 32-bit fingerprint grouping definitions by binary
// layout compatibility. It is parsed from hex and carries no meaning beyond
// identity.
type Layout uint32

// String renders the layout as eight uppercase hex digits.
func (l Layout) String() string {
	return fmt.Sprintf("%08X", uint32(l))
}

// ColumnType is the storage kind a column is declared with.
type ColumnType int

const (
	Int ColumnType = iota
	Float
	LocString
	String
)

// String returns the .dbd keyword for the storage kind.
func (t ColumnType) String() string {
	switch t {
	case Int:
		return "int"
	case Float:
		return "float"
	case LocString:
		return "locstring"
	case String:
		return "string"
	}
	return fmt.Sprintf("ColumnType(%d)", int(t))
}

// columnTypes maps .dbd type keywords to their storage kind.
var columnTypes = map[string]ColumnType{
	"int":       Int,
	"float":     Float,
	"locstring": LocString,
	"string":    String,
}

// ForeignKey names the table and column a column references. It is purely
// descriptive; the target is never resolved against another file.
type ForeignKey struct {
	Table  string
	Column string
}

// String renders the annotation as "<Table::Column>".
func (k ForeignKey) String() string {
	return "<" + k.Table + "::" + k.Column + ">"
}

// Column is a file-scoped declaration of a column's storage kind. Declared
// once in the COLUMNS section and shared by every definition that uses it.
type Column struct {
	Name       string
	Type       ColumnType
	ForeignKey *ForeignKey

	// Verified is false when the declaration carried a trailing '?',
	// marking it as inferred rather than confirmed.
	Verified bool

	Comment string
}

// Entry is one definition's usage of a declared column, carrying the
// annotations specific to that build range.
type Entry struct {
	Name    string
	Comment string

	// Width is the declared integer width in bits, nil when the entry has
	// no <N> annotation. Unsigned is set by the 'u' prefix in <uN>.
	Width    *int
	Unsigned bool

	// ArraySize is the declared element count, nil when the entry has no
	// [N] annotation.
	ArraySize *int

	PrimaryKey bool
	Inline     bool
	Relation   bool
}

// HasTag reports whether the entry carries any annotation that must be
// written back as a $...$ tag block.
func (e *Entry) HasTag() bool {
	return e.PrimaryKey || !e.Inline || e.Relation
}

// Definition is one version-scoped variant of the table: the builds it
// applies to and the entries it uses, in declaration order.
type Definition struct {
	// Versions holds the exact builds this definition applies to, sorted
	// and deduplicated.
	Versions []Version

	// Ranges holds the build spans this definition applies to, in
	// declaration order.
	Ranges []VersionRange

	// Layouts holds the layout fingerprints, sorted and deduplicated.
	Layouts []Layout

	Entries []Entry
}

// AddVersion inserts an exact version, keeping the set sorted and unique.
func (d *Definition) AddVersion(v Version) {
	i := sort.Search(len(d.Versions), func(i int) bool {
		return d.Versions[i].Compare(v) >= 0
	})
	if i < len(d.Versions) && d.Versions[i] == v {
		return
	}
	d.Versions = append(d.Versions, Version{})
	copy(d.Versions[i+1:], d.Versions[i:])
	d.Versions[i] = v
}

// AddLayout inserts a layout, keeping the set sorted and unique.
func (d *Definition) AddLayout(l Layout) {
	i := sort.Search(len(d.Layouts), func(i int) bool {
		return d.Layouts[i] >= l
	})
	if i < len(d.Layouts) && d.Layouts[i] == l {
		return
	}
	d.Layouts = append(d.Layouts, 0)
	copy(d.Layouts[i+1:], d.Layouts[i:])
	d.Layouts[i] = l
}

func (d *Definition) matchesRange(v Version) bool {
	for _, r := range d.Ranges {
		if r.Contains(v) {
			return true
		}
	}
	return false
}

func (d *Definition) matchesExact(v Version) bool {
	for _, ev := range d.Versions {
		if ev == v {
			return true
		}
	}
	return false
}

// File is the raw tier of a parsed .dbd document: the column registry plus
// every definition block, before resolution.
type File struct {
	Name string

	// Columns is keyed by column name. Duplicate declarations overwrite;
	// the last one in the document wins.
	Columns map[string]Column

	// Definitions preserves document order, which is significant: build
	// lookup returns the first match.
	Definitions []Definition
}

// NewFile returns an empty File with the given display name.
func NewFile(name string) *File {
	return &File{
		Name:    name,
		Columns: make(map[string]Column),
	}
}

// AddColumn registers a column declaration, replacing any earlier
// declaration with the same name.
func (f *File) AddColumn(c Column) {
	f.Columns[c.Name] = c
}

// AddDefinition appends a definition block in document order.
func (f *File) AddDefinition(d Definition) {
	f.Definitions = append(f.Definitions, d)
}

// Column looks up the declaration an entry refers to.
func (f *File) Column(name string) (Column, bool) {
	c, ok := f.Columns[name]
	return c, ok
}

// SpecificVersion returns the definition covering the given build, or nil.
// Definitions are searched in document order, ranges before exact versions:
// the first definition with a covering range wins, and only if no range
// matches does the first definition listing the exact build win.
func (f *File) SpecificVersion(v Version) *Definition {
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
