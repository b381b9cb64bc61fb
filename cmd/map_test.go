package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeRootsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roots.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadRootsFile(t *testing.T) {
	t.Parallel()

	path := writeRootsFile(t, "STL-1\n\n# release roots\nSTL-2\n  STL-3  \n")

	roots, err := readRootsFile(path)
	if err != nil {
		t.Fatalf("readRootsFile: %v", err)
	}
	want := []string{"STL-1", "STL-2", "STL-3"}
	if !reflect.DeepEqual(roots, want) {
		t.Errorf("roots = %v, want %v", roots, want)
	}
}

func TestReadRootsFile_Missing(t *testing.T) {
	t.Parallel()

	if _, err := readRootsFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestResolveRoots_MergesArgsAndFile(t *testing.T) {
	t.Parallel()

	path := writeRootsFile(t, "STL-9\n")

	roots, err := resolveRoots([]string{"STL-1"}, path)
	if err != nil {
		t.Fatalf("resolveRoots: %v", err)
	}
	want := []string{"STL-1", "STL-9"}
	if !reflect.DeepEqual(roots, want) {
		t.Errorf("roots = %v, want %v", roots, want)
	}
}

func TestDefaultWorkbookPath(t *testing.T) {
	t.Parallel()

	if got := defaultWorkbookPath([]string{"STL-1"}); got != "STL-1.xlsx" {
		t.Errorf("path = %q", got)
	}
	if got := defaultWorkbookPath([]string{"STL-1", "STL-2"}); got != "STL-1_STL-2.xlsx" {
		t.Errorf("path = %q", got)
	}

	var many []string
	for i := 0; i < 20; i++ {
		many = append(many, "PROJECT-1234")
	}
	if got := defaultWorkbookPath(many); got != "PROJECT-1234_and_more.xlsx" {
		t.Errorf("long roots path = %q", got)
	}
}
