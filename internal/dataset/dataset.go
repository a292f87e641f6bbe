package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/lehigh-university-libraries/captioner/internal/captions"
	"github.com/lehigh-university-libraries/captioner/internal/images"
	"github.com/parquet-go/parquet-go"
)

// Row is one image of an exported training manifest. Column names follow
// the Hugging Face imagefolder convention (file_name + text).
type Row struct {
	FileName string `json:"file_name" parquet:"file_name"`
	Text     string `json:"text" parquet:"text"`
	Width    int    `json:"width" parquet:"width"`
	Height   int    `json:"height" parquet:"height"`
	Image    []byte `json:"-" parquet:"image"`
}

// Options controls Export.
type Options struct {
	// IncludeImages embeds image bytes in parquet output. Ignored for jsonl.
	IncludeImages bool
}

// Rows builds manifest rows for records, reading images from fsys.
func Rows(fsys billy.Filesystem, records []captions.Record, opts Options) ([]Row, error) {
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		width, height, err := images.Dimensions(fsys, record.ImagePath)
		if err != nil {
			slog.Warn("Failed to get image dimensions", "image", record.ImagePath, "error", err)
		}

		row := Row{
			FileName: filepath.Base(record.ImagePath),
			Text:     record.Caption,
			Width:    width,
			Height:   height,
		}

		if opts.IncludeImages {
			data, err := readAll(fsys, record.ImagePath)
			if err != nil {
				return nil, fmt.Errorf("failed to read image %s: %w", record.ImagePath, err)
			}
			row.Image = data
		}

		rows = append(rows, row)
	}
	return rows, nil
}

// Export writes a manifest for records to outputPath. The format is chosen
// from the extension: .parquet or .jsonl.
func Export(fsys billy.Filesystem, records []captions.Record, outputPath string, opts Options) error {
	ext := strings.ToLower(filepath.Ext(outputPath))
	if ext != ".parquet" && ext != ".jsonl" {
		return fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
	if ext == ".jsonl" {
		opts.IncludeImages = false
	}

	rows, err := Rows(fsys, records, opts)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	switch ext {
	case ".parquet":
		if err := parquet.WriteFile(outputPath, rows); err != nil {
			return fmt.Errorf("failed to write parquet: %w", err)
		}
	default:
		if err := writeJSONL(outputPath, rows); err != nil {
			return err
		}
	}

	slog.Info("Exported dataset manifest", "path", outputPath, "rows", len(rows), "format", strings.TrimPrefix(ext, "."))
	return nil
}

// Load reads a manifest written by Export.
func Load(path string) ([]Row, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".parquet":
		rows, err := parquet.ReadFile[Row](path)
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet: %w", err)
		}
		return rows, nil
	case ".jsonl":
		return loadJSONL(path)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
}

func writeJSONL(path string, rows []Row) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create jsonl file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("failed to encode row %s: %w", row.FileName, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write jsonl file: %w", err)
	}
	return file.Close()
}

func loadJSONL(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open jsonl file: %w", err)
	}
	defer file.Close()

	var rows []Row
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var row Row
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			return nil, fmt.Errorf("failed to parse line %d: %w", lineNum, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read jsonl file: %w", err)
	}
	return rows, nil
}

func readAll(fsys billy.Filesystem, path string) ([]byte, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
