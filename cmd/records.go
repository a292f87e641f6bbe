package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/captioner/internal/captions"
	"gopkg.in/yaml.v3"
)

var errMissingDirectory = errors.New("an image directory is required (argument, CAPTIONER_DIRECTORY or config directory)")

// captionFile is the document written by scan and read back by save.
type captionFile struct {
	Directory   string            `yaml:"directory" json:"directory"`
	TriggerWord string            `yaml:"trigger_word" json:"trigger_word"`
	Records     []captions.Record `yaml:"records" json:"records"`
}

func writeCaptionFile(w io.Writer, doc captionFile, format string) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&doc); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(&doc); err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: yaml, json)", format)
	}
}

// readCaptionFile parses a YAML or JSON caption file and checks that each
// caption path is the sidecar of its image.
func readCaptionFile(path string) (captionFile, error) {
	var doc captionFile

	data, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("failed to read caption file: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return doc, fmt.Errorf("failed to parse caption file %s: %w", path, err)
	}

	for i, record := range doc.Records {
		if record.ImagePath == "" {
			return doc, fmt.Errorf("record %d: image_path is required", i)
		}
		want := captions.CaptionPath(record.ImagePath)
		if record.CaptionPath == "" {
			doc.Records[i].CaptionPath = want
			continue
		}
		if record.CaptionPath != want {
			return doc, fmt.Errorf("record %d: caption_path %s does not match image %s (expected %s)", i, record.CaptionPath, record.ImagePath, want)
		}
	}

	return doc, nil
}
