package captions

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-git/go-billy/v5"
)

// Scan lists the supported images directly inside directory, sorted by path,
// and pairs each with its caption. Images without a caption file, or whose
// caption file is blank, get triggerWord. A missing directory yields no
// records. Any other read failure aborts the scan with a *ScanError.
func Scan(fsys billy.Filesystem, directory, triggerWord string) ([]Record, error) {
	entries, err := fsys.ReadDir(directory)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("Image directory does not exist", "directory", directory)
			return []Record{}, nil
		}
		return nil, &ScanError{Path: directory, Err: err}
	}

	imagePaths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsImage(entry.Name()) {
			continue
		}
		imagePaths = append(imagePaths, filepath.Join(directory, entry.Name()))
	}
	sort.Strings(imagePaths)

	records := make([]Record, 0, len(imagePaths))
	for _, imagePath := range imagePaths {
		captionPath := CaptionPath(imagePath)
		caption, err := readCaption(fsys, captionPath)
		if err != nil {
			return nil, &ScanError{Path: captionPath, Err: err}
		}
		if caption == "" {
			caption = triggerWord
		}
		records = append(records, Record{
			ImagePath:   imagePath,
			CaptionPath: captionPath,
			Caption:     caption,
		})
	}

	slog.Debug("Scanned image directory", "directory", directory, "images", len(records))
	return records, nil
}

// ScanDir runs Scan against the local filesystem.
func ScanDir(directory, triggerWord string) ([]Record, error) {
	return Scan(LocalFS(), directory, triggerWord)
}

// readCaption returns the trimmed caption stored at path, or "" when the
// file does not exist.
func readCaption(fsys billy.Filesystem, path string) (string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", ErrInvalidEncoding
	}

	return strings.TrimSpace(string(data)), nil
}
