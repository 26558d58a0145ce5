package dbd

// Resolve converts the raw tier into the semantic tier, merging each entry
// with its column declaration. It fails atomically on the first
// contradiction: no partial result is returned.
func (f *File) Resolve() (*ResolvedFile, error) {
	defs := make([]ResolvedDefinition, 0, len(f.Definitions))
	for i := range f.Definitions {
		def, err := f.Definitions[i].resolve(f.Columns)
		if err != nil {
			return nil, err
		}
		defs = append(defs, *def)
	}

	return &ResolvedFile{
		Name:        f.Name,
		Definitions: defs,
	}, nil
}

func (d *Definition) resolve(columns map[string]Column) (*ResolvedDefinition, error) {
	entries := make([]ResolvedEntry, 0, len(d.Entries))
	for i := range d.Entries {
		entry, err := resolveEntry(&d.Entries[i], columns)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	return &ResolvedDefinition{
		Versions: d.Versions,
		Ranges:   d.Ranges,
		Layouts:  d.Layouts,
		Entries:  entries,
	}, nil
}

func resolveEntry(entry *Entry, columns map[string]Column) (*ResolvedEntry, error) {
	column, ok := columns[entry.Name]
	if !ok {
		return nil, &ResolveError{Kind: ColumnNotFound, Name: entry.Name}
	}

	var ty Type
	switch column.Type {
	case Int:
		if entry.Width == nil {
			return nil, &ResolveError{Kind: NoIntegerWidth}
		}
		kind, err := integerKind(*entry.Width, entry.Unsigned)
		if err != nil {
			return nil, err
		}
		ty = Type{Kind: kind}
	case Float:
		ty = Type{Kind: TypeFloat}
	case LocString:
		ty = Type{Kind: TypeLocString}
	case String:
		ty = Type{Kind: TypeString}
	}

	if column.ForeignKey != nil {
		switch {
		case ty.IsInteger():
			inner := ty
			ty = Type{Kind: TypeForeignKey, Key: *column.ForeignKey, Inner: &inner}
		case ty.Kind == TypeFloat:
			return nil, &ResolveError{Kind: FloatAsForeignKey}
		case ty.Kind == TypeLocString:
			return nil, &ResolveError{Kind: LocStringAsForeignKey}
		default:
			return nil, &ResolveError{Kind: StringAsForeignKey}
		}
	}

	if entry.ArraySize != nil {
		inner := ty
		ty = Type{Kind: TypeArray, Inner: &inner, Len: *entry.ArraySize}
	}

	return &ResolvedEntry{
		Name:          entry.Name,
		Type:          ty,
		Comment:       entry.Comment,
		ColumnComment: column.Comment,
		Verified:      column.Verified,
		PrimaryKey:    entry.PrimaryKey,
		Inline:        entry.Inline,
		Relation:      entry.Relation,
	}, nil
}

func integerKind(width int, unsigned bool) (TypeKind, error) {
	if unsigned {
		switch width {
		case 8:
			return TypeUInt8, nil
		case 16:
			return TypeUInt16, nil
		case 32:
			return TypeUInt32, nil
		case 64:
			return TypeUInt64, nil
		}
	} else {
		switch width {
		case 8:
			return TypeInt8, nil
		case 16:
			return TypeInt16, nil
		case 32:
			return TypeInt32, nil
		case 64:
			return TypeInt64, nil
		}
	}
	return 0, &ResolveError{Kind: InvalidIntegerWidth, Width: width}
}
