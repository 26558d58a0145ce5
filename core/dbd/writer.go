package dbd

import (
	"sort"
	"strconv"
	"strings"
)

// Emit renders the raw tier back to canonical .dbd text. The output is not
// byte-identical to the source the file was parsed from: columns are sorted
// by name and BUILD lists are regrouped. Re-parsing the output yields an
// equivalent model.
func (f *File) Emit() string {
	var b strings.Builder

	b.WriteString(columnsHeader)
	b.WriteByte('\n')
	for _, name := range sortedColumnNames(f.Columns) {
		emitColumn(&b, f.Columns[name])
	}

	for i := range f.Definitions {
		b.WriteByte('\n')
		emitDefinition(&b, &f.Definitions[i])
	}

	return b.String()
}

// Emit renders the resolved tier back to canonical .dbd text. The column
// registry consumed by resolution is reconstructed from the entries' types,
// so the output round-trips through Parse and Resolve to an equivalent
// model.
func (f *ResolvedFile) Emit() string {
	columns := make(map[string]Column)
	for i := range f.Definitions {
		for j := range f.Definitions[i].Entries {
			entry := &f.Definitions[i].Entries[j]
			columns[entry.Name] = columnOf(entry)
		}
	}

	var b strings.Builder

	b.WriteString(columnsHeader)
	b.WriteByte('\n')
	for _, name := range sortedColumnNames(columns) {
		emitColumn(&b, columns[name])
	}

	for i := range f.Definitions {
		b.WriteByte('\n')
		emitResolvedDefinition(&b, &f.Definitions[i])
	}

	return b.String()
}

func sortedColumnNames(columns map[string]Column) []string {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func emitColumn(b *strings.Builder, c Column) {
	b.WriteString(c.Type.String())
	if c.ForeignKey != nil {
		b.WriteString(c.ForeignKey.String())
	}
	b.WriteByte(' ')
	b.WriteString(c.Name)
	if !c.Verified {
		b.WriteByte('?')
	}
	if c.Comment != "" {
		b.WriteString(" ")
		b.WriteString(commentMarker)
		b.WriteByte(' ')
		b.WriteString(c.Comment)
	}
	b.WriteByte('\n')
}

func emitDefinitionHeader(b *strings.Builder, layouts []Layout, ranges []VersionRange, versions []Version) {
	if len(layouts) > 0 {
		parts := make([]string, len(layouts))
		for i, l := range layouts {
			parts[i] = l.String()
		}
		b.WriteString(layoutKeyword)
		b.WriteByte(' ')
		b.WriteString(strings.Join(parts, ", "))
		b.WriteByte('\n')
	}

	for _, r := range ranges {
		b.WriteString(buildKeyword)
		b.WriteByte(' ')
		b.WriteString(r.String())
		b.WriteByte('\n')
	}

	if len(versions) > 0 {
		parts := make([]string, len(versions))
		for i, v := range versions {
			parts[i] = v.String()
		}
		b.WriteString(buildKeyword)
		b.WriteByte(' ')
		b.WriteString(strings.Join(parts, ", "))
		b.WriteByte('\n')
	}
}

func emitDefinition(b *strings.Builder, d *Definition) {
	emitDefinitionHeader(b, d.Layouts, d.Ranges, d.Versions)
	for i := range d.Entries {
		emitEntry(b, &d.Entries[i])
	}
}

func emitResolvedDefinition(b *strings.Builder, d *ResolvedDefinition) {
	emitDefinitionHeader(b, d.Layouts, d.Ranges, d.Versions)
	for i := range d.Entries {
		entry := &d.Entries[i]
		_, _, w, unsigned, arraySize := splitType(entry.Type)
		var width *int
		if w > 0 {
			width = &w
		}
		emitEntryLine(b, entry.Name, entry.Comment, width, unsigned, arraySize,
			entry.PrimaryKey, entry.Inline, entry.Relation)
	}
}

func emitEntry(b *strings.Builder, e *Entry) {
	emitEntryLine(b, e.Name, e.Comment, e.Width, e.Unsigned, e.ArraySize,
		e.PrimaryKey, e.Inline, e.Relation)
}

// emitEntryLine writes one entry declaration. A nil width or arraySize means
// the entry carries no such annotation.
func emitEntryLine(b *strings.Builder, name, comment string, width *int, unsigned bool, arraySize *int, primaryKey, inline, relation bool) {
	if primaryKey || !inline || relation {
		var tags []string
		if primaryKey {
			tags = append(tags, "id")
		}
		if !inline {
			tags = append(tags, "noninline")
		}
		if relation {
			tags = append(tags, "relation")
		}
		b.WriteByte('$')
		b.WriteString(strings.Join(tags, ","))
		b.WriteByte('$')
	}

	b.WriteString(name)

	if width != nil {
		b.WriteByte('<')
		if unsigned {
			b.WriteByte('u')
		}
		b.WriteString(strconv.Itoa(*width))
		b.WriteByte('>')
	}

	if arraySize != nil {
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(*arraySize))
		b.WriteByte(']')
	}

	if comment != "" {
		b.WriteString(" ")
		b.WriteString(commentMarker)
		b.WriteByte(' ')
		b.WriteString(comment)
	}

	b.WriteByte('\n')
}

// columnOf reconstructs the column declaration a resolved entry was merged
// from.
func columnOf(e *ResolvedEntry) Column {
	columnType, fk, _, _, _ := splitType(e.Type)
	return Column{
		Name:       e.Name,
		Type:       columnType,
		ForeignKey: fk,
		Verified:   e.Verified,
		Comment:    e.ColumnComment,
	}
}

// splitType decomposes a resolved Type into the raw-tier pieces it was built
// from: the column storage kind, the foreign key if any, the integer width
// and signedness (width 0 for non-integer kinds), and the array size if any.
func splitType(t Type) (ColumnType, *ForeignKey, int, bool, *int) {
	var arraySize *int
	if t.Kind == TypeArray {
		n := t.Len
		arraySize = &n
		t = *t.Inner
	}

	var fk *ForeignKey
	if t.Kind == TypeForeignKey {
		key := t.Key
		fk = &key
		t = *t.Inner
	}

	switch t.Kind {
	case TypeInt8:
		return Int, fk, 8, false, arraySize
	case TypeInt16:
		return Int, fk, 16, false, arraySize
	case TypeInt32:
		return Int, fk, 32, false, arraySize
	case TypeInt64:
		return Int, fk, 64, false, arraySize
	case TypeUInt8:
		return Int, fk, 8, true, arraySize
	case TypeUInt16:
		return Int, fk, 16, true, arraySize
	case TypeUInt32:
		return Int, fk, 32, true, arraySize
	case TypeUInt64:
		return Int, fk, 64, true, arraySize
	case TypeFloat:
		return Float, fk, 0, false, arraySize
	case TypeLocString:
		return LocString, fk, 0, false, arraySize
	default:
		return String, fk, 0, false, arraySize
	}
}
