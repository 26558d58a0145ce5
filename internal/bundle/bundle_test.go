package bundle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/dbdef/core/dbd"
)

const mapContents = `COLUMNS
int ID
string Directory

BUILD 1.0.0.1
$id$ID<32>
Directory
`

const spellContents = `COLUMNS
int ID
int SchoolMask

BUILD 1.12.1.5875
$id$ID<32>
SchoolMask<u32>
`

func writeTestDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Map.dbd"), []byte(mapContents), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Spell.dbd"), []byte(spellContents), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.txt"), []byte("not a definition"), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestCreateAndIterate(t *testing.T) {
	srcDir := writeTestDir(t)
	dstPath := filepath.Join(t.TempDir(), "defs.tar.xz")

	count, err := Create(srcDir, dstPath)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if count != 2 {
		t.Errorf("packed %d files, want 2", count)
	}

	seen := map[string]string{}
	err = Iterate(dstPath, func(name string, contents []byte) (bool, error) {
		seen[name] = string(contents)
		return false, nil
	})
	if err != nil {
		t.Fatalf("Iterate failed: %v", err)
	}

	if len(seen) != 2 {
		t.Fatalf("got %d entries, want 2", len(seen))
	}
	if _, ok := seen["README.txt"]; ok {
		t.Error("non-.dbd file should not be bundled")
	}

	// Bundled content is canonical and parses back.
	mapText, ok := seen["Map.dbd"]
	if !ok {
		t.Fatal("Map.dbd missing from bundle")
	}
	if !strings.HasPrefix(mapText, "COLUMNS\n") {
		t.Errorf("bundled content is not canonical:\n%s", mapText)
	}
	if _, err := dbd.Parse(mapText, "Map.dbd"); err != nil {
		t.Errorf("bundled content does not parse: %v", err)
	}
}

func TestCreate_Reproducible(t *testing.T) {
	srcDir := writeTestDir(t)
	tmpDir := t.TempDir()

	first := filepath.Join(tmpDir, "a.tar.xz")
	second := filepath.Join(tmpDir, "b.tar.xz")
	if _, err := Create(srcDir, first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := Create(srcDir, second); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	a, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(second)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("identical input should produce byte-identical bundles")
	}
}

func TestCreate_BrokenDefinition(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Broken.dbd"), []byte("COLUMNS\nintFlags\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Create(dir, filepath.Join(t.TempDir(), "out.tar.xz")); err == nil {
		t.Error("bundling a broken definition should fail")
	}
}

func TestIterate_Stop(t *testing.T) {
	srcDir := writeTestDir(t)
	dstPath := filepath.Join(t.TempDir(), "defs.tar.xz")
	if _, err := Create(srcDir, dstPath); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var visited int
	err := Iterate(dstPath, func(string, []byte) (bool, error) {
		visited++
		return true, nil
	})
	if err != nil {
		t.Fatalf("Iterate failed: %v", err)
	}
	if visited != 1 {
		t.Errorf("visited %d entries after stop, want 1", visited)
	}
}
