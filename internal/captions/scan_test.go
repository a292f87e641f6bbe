package captions

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
)

func writeFiles(t *testing.T, fsys billy.Filesystem, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := util.WriteFile(fsys, name, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create %s: %v", name, err)
		}
	}
}

func TestScanScenario(t *testing.T) {
	fsys := memfs.New()
	writeFiles(t, fsys, map[string]string{
		"photos/dog.jpg": "jpg",
		"photos/cat.png": "png",
		"photos/dog.txt": "  a dog  ",
	})

	records, err := Scan(fsys, "photos", "p3rs0n")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	expected := []Record{
		{ImagePath: "photos/cat.png", CaptionPath: "photos/cat.txt", Caption: "p3rs0n"},
		{ImagePath: "photos/dog.jpg", CaptionPath: "photos/dog.txt", Caption: "a dog"},
	}
	if !reflect.DeepEqual(records, expected) {
		t.Errorf("Expected %+v, got %+v", expected, records)
	}

	// The sidecar for cat.png must not be created by a scan
	if _, err := fsys.Stat("photos/cat.txt"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected photos/cat.txt to be absent, got err=%v", err)
	}
}

func TestScanFallback(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		expected string
	}{
		{
			name:     "no caption file",
			files:    map[string]string{"d/a.png": "x"},
			expected: "trigger",
		},
		{
			name:     "empty caption file",
			files:    map[string]string{"d/a.png": "x", "d/a.txt": ""},
			expected: "trigger",
		},
		{
			name:     "whitespace caption file",
			files:    map[string]string{"d/a.png": "x", "d/a.txt": " \n\t \r\n"},
			expected: "trigger",
		},
		{
			name:     "caption file is trimmed",
			files:    map[string]string{"d/a.png": "x", "d/a.txt": "\n trigger, red hat \n"},
			expected: "trigger, red hat",
		},
		{
			name:     "inner newlines kept",
			files:    map[string]string{"d/a.png": "x", "d/a.txt": "line one\nline two\n"},
			expected: "line one\nline two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := memfs.New()
			writeFiles(t, fsys, tt.files)

			records, err := Scan(fsys, "d", "trigger")
			if err != nil {
				t.Fatalf("Scan failed: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("Expected 1 record, got %d", len(records))
			}
			if records[0].Caption != tt.expected {
				t.Errorf("Expected caption %q, got %q", tt.expected, records[0].Caption)
			}
		})
	}
}

func TestScanOrderAndFilter(t *testing.T) {
	fsys := memfs.New()
	writeFiles(t, fsys, map[string]string{
		"d/b.png":       "x",
		"d/a.png":       "x",
		"d/c.jpg":       "x",
		"d/readme.md":   "x",
		"d/notes.txt":   "x",
		"d/.hidden.png": "x",
		"d/sub/e.png":   "x",
	})

	records, err := Scan(fsys, "d", "t")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	var got []string
	for _, r := range records {
		got = append(got, r.ImagePath)
	}
	expected := []string{"d/a.png", "d/b.png", "d/c.jpg"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestScanMixedCaseExtensions(t *testing.T) {
	fsys := memfs.New()
	writeFiles(t, fsys, map[string]string{
		"d/foo.JPEG":  "x",
		"d/foo.txt":   "upper",
		"d/a.b.png":   "x",
		"d/a.b.txt":   "dotted",
		"d/Zebra.GIF": "x",
	})

	records, err := Scan(fsys, "d", "t")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	expected := []Record{
		{ImagePath: "d/Zebra.GIF", CaptionPath: "d/Zebra.txt", Caption: "t"},
		{ImagePath: "d/a.b.png", CaptionPath: "d/a.b.txt", Caption: "dotted"},
		{ImagePath: "d/foo.JPEG", CaptionPath: "d/foo.txt", Caption: "upper"},
	}
	if !reflect.DeepEqual(records, expected) {
		t.Errorf("Expected %+v, got %+v", expected, records)
	}
}

func TestScanDeterministic(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"z.png", "m.jpg", "a.gif", "k.jpeg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("Failed to create image: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "m.txt"), []byte("emm"), 0644); err != nil {
		t.Fatalf("Failed to create caption: %v", err)
	}

	first, err := ScanDir(dir, "t")
	if err != nil {
		t.Fatalf("First scan failed: %v", err)
	}
	second, err := ScanDir(dir, "t")
	if err != nil {
		t.Fatalf("Second scan failed: %v", err)
	}

	if len(first) != 4 {
		t.Fatalf("Expected 4 records, got %d", len(first))
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Scans differ:\n%+v\n%+v", first, second)
	}
}

func TestScanMissingDirectory(t *testing.T) {
	records, err := ScanDir(filepath.Join(t.TempDir(), "nope"), "t")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestScanEmptyDirectory(t *testing.T) {
	records, err := ScanDir(t.TempDir(), "t")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestScanUnreadableCaption(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.png"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create image: %v", err)
	}
	// a directory where the sidecar should be cannot be read as text
	if err := os.Mkdir(filepath.Join(dir, "a.txt"), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	records, err := ScanDir(dir, "t")
	if err == nil {
		t.Fatalf("Expected error, got records %+v", records)
	}

	var scanErr *ScanError
	if !errors.As(err, &scanErr) {
		t.Fatalf("Expected *ScanError, got %T", err)
	}
	if scanErr.Path != filepath.Join(dir, "a.txt") {
		t.Errorf("Expected path %s, got %s", filepath.Join(dir, "a.txt"), scanErr.Path)
	}
}

func TestScanInvalidEncoding(t *testing.T) {
	fsys := memfs.New()
	writeFiles(t, fsys, map[string]string{
		"d/a.png": "x",
		"d/a.txt": "\xff\xfe\xfd",
	})

	_, err := Scan(fsys, "d", "t")
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("Expected ErrInvalidEncoding, got %v", err)
	}
}
