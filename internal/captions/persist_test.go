package captions

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
)

func readFile(fsys billy.Filesystem, path string) ([]byte, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func TestPersistVerbatim(t *testing.T) {
	fsys := memfs.New()
	writeFiles(t, fsys, map[string]string{
		"d/a.png": "x",
		"d/a.txt": "old caption that is much longer than the new one",
	})

	records := []Record{
		NewRecord("d/a.png", "  spaced  "),
		NewRecord("d/b.png", "new\n"),
	}
	if err := Persist(fsys, records); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	tests := map[string]string{
		"d/a.txt": "  spaced  ",
		"d/b.txt": "new\n",
	}
	for path, expected := range tests {
		data, err := readFile(fsys, path)
		if err != nil {
			t.Fatalf("Failed to read %s: %v", path, err)
		}
		if string(data) != expected {
			t.Errorf("%s: expected %q, got %q", path, expected, string(data))
		}
	}
}

func TestPersistRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"cat.png", "dog.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("Failed to create image: %v", err)
		}
	}

	records, err := ScanDir(dir, "p3rs0n")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	records[1].Caption = "p3rs0n, a dog on a beach"

	if err := PersistDir(records); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	rescanned, err := ScanDir(dir, "other")
	if err != nil {
		t.Fatalf("Rescan failed: %v", err)
	}
	if !reflect.DeepEqual(records, rescanned) {
		t.Errorf("Expected %+v, got %+v", records, rescanned)
	}

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("Expected 4 files, got %d", len(entries))
	}
}

func TestPersistContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("not a directory"), 0644); err != nil {
		t.Fatalf("Failed to create blocker: %v", err)
	}

	records := []Record{
		NewRecord(filepath.Join(dir, "a.png"), "first"),
		NewRecord(filepath.Join(blocker, "b.png"), "unwritable"),
		NewRecord(filepath.Join(dir, "c.png"), "third"),
	}

	err := PersistDir(records)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	var persistErr *PersistError
	if !errors.As(err, &persistErr) {
		t.Fatalf("Expected *PersistError, got %T", err)
	}

	failed := FailedPaths(err)
	expected := []string{filepath.Join(blocker, "b.txt")}
	if !reflect.DeepEqual(failed, expected) {
		t.Errorf("Expected failed paths %v, got %v", expected, failed)
	}

	for path, want := range map[string]string{"a.txt": "first", "c.txt": "third"} {
		data, err := os.ReadFile(filepath.Join(dir, path))
		if err != nil {
			t.Fatalf("Failed to read %s: %v", path, err)
		}
		if string(data) != want {
			t.Errorf("%s: expected %q, got %q", path, want, string(data))
		}
	}
}

func TestPersistMissingDirectory(t *testing.T) {
	dir := t.TempDir()
	gone := filepath.Join(dir, "gone", "deeper")

	tests := []struct {
		name string
		fsys billy.Filesystem
	}{
		{name: "memfs", fsys: memfs.New()},
		{name: "local", fsys: LocalFS()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := []Record{NewRecord(filepath.Join(gone, "a.png"), "lost")}

			err := Persist(tt.fsys, records)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			var persistErr *PersistError
			if !errors.As(err, &persistErr) {
				t.Fatalf("Expected *PersistError, got %T", err)
			}
			if persistErr.Path != filepath.Join(gone, "a.txt") {
				t.Errorf("Expected path %s, got %s", filepath.Join(gone, "a.txt"), persistErr.Path)
			}
			if _, err := tt.fsys.Stat(gone); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("Expected %s to stay missing, got %v", gone, err)
			}
		})
	}
}

func TestFailedPathsNil(t *testing.T) {
	if paths := FailedPaths(nil); paths != nil {
		t.Errorf("Expected nil, got %v", paths)
	}
}
