package dbd

import (
	"errors"
	"testing"
)

func resolveErr(t *testing.T, contents string) *ResolveError {
	t.Helper()
	f := mustParse(t, contents, "broken.dbd")
	_, err := f.Resolve()
	if err == nil {
		t.Fatal("Resolve should fail")
	}
	var rerr *ResolveError
	if !errors.As(err, &rerr) {
		t.Fatalf("error is %T, want *ResolveError", err)
	}
	return rerr
}

func TestResolve(t *testing.T) {
	f := mustParse(t, mapContents, "Map.dbd")
	resolved, err := f.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if resolved.Name != "Map.dbd" {
		t.Errorf("Name = %q", resolved.Name)
	}
	if len(resolved.Definitions) != 2 {
		t.Fatalf("got %d definitions, want 2", len(resolved.Definitions))
	}

	first := &resolved.Definitions[0]

	id := first.Entries[0]
	if id.Type.Kind != TypeInt32 {
		t.Errorf("ID type = %s, want int32", id.Type)
	}
	if !id.PrimaryKey || !id.Verified {
		t.Errorf("ID flags wrong: %+v", id)
	}

	parent := first.Entries[1]
	if parent.Type.Kind != TypeForeignKey {
		t.Fatalf("ParentMapID type = %s, want a foreign key", parent.Type)
	}
	if parent.Type.Key.Table != "Map" || parent.Type.Key.Column != "ID" {
		t.Errorf("foreign key = %s", parent.Type.Key)
	}
	if parent.Type.Inner.Kind != TypeUInt16 {
		t.Errorf("inner type = %s, want uint16", parent.Type.Inner)
	}

	dir := first.Entries[2]
	if dir.Type.Kind != TypeString {
		t.Errorf("Directory type = %s, want string", dir.Type)
	}
	if dir.ColumnComment != `reference to World\Map\` {
		t.Errorf("column comment = %q", dir.ColumnComment)
	}

	lang := first.Entries[3]
	if lang.Type.Kind != TypeLocString {
		t.Errorf("MapName_lang type = %s, want locstring", lang.Type)
	}

	flags := first.Entries[4]
	if flags.Type.Kind != TypeArray || flags.Type.Len != 2 {
		t.Fatalf("Flags type = %s, want an array of 2", flags.Type)
	}
	if flags.Type.Inner.Kind != TypeUInt32 {
		t.Errorf("Flags element type = %s, want uint32", flags.Type.Inner)
	}

	second := &resolved.Definitions[1]

	scale := second.Entries[2]
	if scale.Type.Kind != TypeFloat {
		t.Errorf("Scale type = %s, want float", scale.Type)
	}
	if scale.Verified {
		t.Error("Scale should stay unverified")
	}

	tagged := second.Entries[3]
	if tagged.Inline || !tagged.Relation {
		t.Errorf("tag flags lost in resolution: %+v", tagged)
	}
	if tagged.Comment != "moved out of the record" {
		t.Errorf("entry comment = %q", tagged.Comment)
	}
}

func TestResolve_IntegerWidths(t *testing.T) {
	for _, width := range []string{"8", "16", "32", "64", "u8", "u16", "u32", "u64"} {
		contents := "COLUMNS\nint ID\n\nBUILD 1.0.0.1\nID<" + width + ">\n"
		f := mustParse(t, contents, "W.dbd")
		if _, err := f.Resolve(); err != nil {
			t.Errorf("width %s should resolve: %v", width, err)
		}
	}
}

func TestResolve_InvalidIntegerWidth(t *testing.T) {
	rerr := resolveErr(t, "COLUMNS\nint ID\n\nBUILD 1.0.0.1\nID<24>\n")
	if rerr.Kind != InvalidIntegerWidth {
		t.Errorf("kind = %v, want InvalidIntegerWidth", rerr.Kind)
	}
	if rerr.Width != 24 {
		t.Errorf("width = %d, want 24", rerr.Width)
	}
}

func TestResolve_NoIntegerWidth(t *testing.T) {
	rerr := resolveErr(t, "COLUMNS\nint ID\n\nBUILD 1.0.0.1\nID\n")
	if rerr.Kind != NoIntegerWidth {
		t.Errorf("kind = %v, want NoIntegerWidth", rerr.Kind)
	}
}

func TestResolve_ColumnNotFound(t *testing.T) {
	rerr := resolveErr(t, "COLUMNS\nint ID\n\nBUILD 1.0.0.1\nGhost<32>\n")
	if rerr.Kind != ColumnNotFound {
		t.Errorf("kind = %v, want ColumnNotFound", rerr.Kind)
	}
	if rerr.Name != "Ghost" {
		t.Errorf("name = %q, want Ghost", rerr.Name)
	}
}

func TestResolve_ForeignKeyTypeRestriction(t *testing.T) {
	cases := []struct {
		columnType string
		kind       ResolveErrorKind
	}{
		{"float", FloatAsForeignKey},
		{"locstring", LocStringAsForeignKey},
		{"string", StringAsForeignKey},
	}

	for _, c := range cases {
		contents := "COLUMNS\n" + c.columnType + "<Map::ID> Ref\n\nBUILD 1.0.0.1\nRef\n"
		rerr := resolveErr(t, contents)
		if rerr.Kind != c.kind {
			t.Errorf("%s: kind = %v, want %v", c.columnType, rerr.Kind, c.kind)
		}
	}
}

func TestResolve_ForeignKeyArray(t *testing.T) {
	// An integer column with a foreign key and an array annotation
	// resolves to array-of-foreign-key, with the key wrapped first.
	f := mustParse(t, "COLUMNS\nint<Map::ID> Refs\n\nBUILD 1.0.0.1\nRefs<u32>[3]\n", "R.dbd")
	resolved, err := f.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	ty := resolved.Definitions[0].Entries[0].Type
	if ty.Kind != TypeArray || ty.Len != 3 {
		t.Fatalf("type = %s, want an array of 3", ty)
	}
	if ty.Inner.Kind != TypeForeignKey {
		t.Fatalf("element type = %s, want a foreign key", ty.Inner)
	}
	if ty.Inner.Inner.Kind != TypeUInt32 {
		t.Errorf("key inner type = %s, want uint32", ty.Inner.Inner)
	}
	if got := ty.String(); got != "uint32<Map::ID>[3]" {
		t.Errorf("String() = %q", got)
	}
}

func TestResolve_WidthIgnoredOnNonInteger(t *testing.T) {
	// A width annotation on a float column is ignored, not rejected.
	f := mustParse(t, "COLUMNS\nfloat Scale\n\nBUILD 1.0.0.1\nScale<32>\n", "S.dbd")
	resolved, err := f.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if ty := resolved.Definitions[0].Entries[0].Type; ty.Kind != TypeFloat {
		t.Errorf("type = %s, want float", ty)
	}
}

func TestResolve_FailsWhole(t *testing.T) {
	// The second definition is broken; the first resolving cleanly must
	// not produce a partial result.
	contents := "COLUMNS\nint ID\n\nBUILD 1.0.0.1\nID<32>\n\nBUILD 2.0.0.1\nID\n"
	f := mustParse(t, contents, "Partial.dbd")

	resolved, err := f.Resolve()
	if err == nil {
		t.Fatal("Resolve should fail")
	}
	if resolved != nil {
		t.Error("failing Resolve must not return a partial file")
	}
}
