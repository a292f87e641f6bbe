package captions

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// CaptionExt is the extension of caption sidecar files.
const CaptionExt = ".txt"

// SupportedExtensions lists the image extensions picked up by Scan, lowercase.
var SupportedExtensions = []string{"jpg", "jpeg", "png", "gif"}

var imagePattern = glob.MustCompile("*.{" + strings.Join(SupportedExtensions, ",") + "}")

// Record pairs an image with its caption sidecar.
type Record struct {
	ImagePath   string `json:"image_path" yaml:"image_path"`
	CaptionPath string `json:"caption_path" yaml:"caption_path"`
	Caption     string `json:"caption" yaml:"caption"`
}

// NewRecord builds a record for imagePath with the given caption.
func NewRecord(imagePath, caption string) Record {
	return Record{
		ImagePath:   imagePath,
		CaptionPath: CaptionPath(imagePath),
		Caption:     caption,
	}
}

// CaptionPath returns the sidecar path for an image: the final extension is
// replaced by CaptionExt, so "a.b.PNG" becomes "a.b.txt".
func CaptionPath(imagePath string) string {
	return strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + CaptionExt
}

// IsImage reports whether name has a supported image extension, ignoring case.
// Hidden files are never images.
func IsImage(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return imagePattern.Match(strings.ToLower(base))
}
