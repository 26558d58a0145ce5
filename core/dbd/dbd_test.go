package dbd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "Map.dbd")
	if err := os.WriteFile(path, []byte(mapContents), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if f.Name != "Map.dbd" {
		t.Errorf("Name = %q, want %q", f.Name, "Map.dbd")
	}
	if len(f.Definitions) != 2 {
		t.Errorf("got %d definitions, want 2", len(f.Definitions))
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.dbd"))
	if err == nil {
		t.Fatal("LoadFile should fail")
	}

	// Read failures stay out of the parse error channel.
	var perr *ParseError
	if errors.As(err, &perr) {
		t.Error("a read failure must not be a *ParseError")
	}
	if !os.IsNotExist(err) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}

func TestLoadFile_ParseFailure(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "Broken.dbd")
	if err := os.WriteFile(path, []byte("COLUMNS\nintFlags\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(path)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error is %T, want *ParseError", err)
	}
}

func TestLocate(t *testing.T) {
	contents := "first\nsecond\nthird"

	if got, ok := Locate(contents, 0, 0); !ok || got != contents {
		t.Errorf("line 0 column 0 = %q, %v", got, ok)
	}
	if got, ok := Locate(contents, 0, 2); !ok || got != "rst\nsecond\nthird" {
		t.Errorf("line 0 column 2 = %q, %v", got, ok)
	}
	if got, ok := Locate(contents, 1, 0); !ok || got != "second\nthird" {
		t.Errorf("line 1 column 0 = %q, %v", got, ok)
	}
	if got, ok := Locate(contents, 2, 3); !ok || got != "rd" {
		t.Errorf("line 2 column 3 = %q, %v", got, ok)
	}
}

func TestLocate_OutOfBounds(t *testing.T) {
	contents := "one\ntwo"

	if _, ok := Locate(contents, 5, 0); ok {
		t.Error("line past the end should not locate")
	}
	if _, ok := Locate(contents, 1, 10); ok {
		t.Error("column past the line should not locate")
	}
	if _, ok := Locate(contents, -1, 0); ok {
		t.Error("negative line should not locate")
	}
	if _, ok := Locate(contents, 0, -1); ok {
		t.Error("negative column should not locate")
	}
}

func TestLocate_ErrorPositionAlwaysValid(t *testing.T) {
	// Every location the parser reports must exist in the source.
	broken := []string{
		"COLUMNS\nintFlags\n",
		"COLUMNS\nuint64 ID\n",
		"COLUMNS\nint<Map.ID> Ref\n",
		"COLUMNS\nint ID\n\nBUILD junk\nID<32>\n",
		"COLUMNS\nint ID\n\nLAYOUT nothex\nID<32>\n",
		"COLUMNS\nint ID\n\nBUILD 1.0.0.1\nID<32\n",
		"COLUMNS\nint ID\n\nBUILD 1.0.0.1\n$id ID<32>\n",
	}

	for _, contents := range broken {
		_, err := Parse(contents, "broken.dbd")
		if err == nil {
			t.Errorf("document should fail: %q", contents)
			continue
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("error is %T, want *ParseError", err)
			continue
		}
		if _, ok := Locate(contents, perr.Line, perr.Column); !ok {
			t.Errorf("parser reported a location outside the source: %v for %q", perr, contents)
		}
	}
}
