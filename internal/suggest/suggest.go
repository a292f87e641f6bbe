package suggest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-git/go-billy/v5"
	"github.com/lehigh-university-libraries/captioner/internal/gemini"
	"github.com/lehigh-university-libraries/captioner/internal/ollama"
	"github.com/lehigh-university-libraries/captioner/internal/openai"
	"github.com/lehigh-university-libraries/captioner/internal/providers"
)

const defaultTimeout = 2 * time.Minute

// NewProvider returns the provider registered under name.
func NewProvider(name string) (providers.Provider, error) {
	switch name {
	case "ollama":
		return ollama.New(), nil
	case "openai":
		return openai.New(), nil
	case "gemini":
		return gemini.New(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case "openai":
		if model := os.Getenv("OPENAI_MODEL"); model != "" {
			return model
		}
		return "gpt-4o"
	case "ollama":
		if model := os.Getenv("OLLAMA_MODEL"); model != "" {
			return model
		}
		return "llava:13b"
	case "gemini":
		if model := os.Getenv("GEMINI_MODEL"); model != "" {
			return model
		}
		return "gemini-1.5-flash"
	default:
		return ""
	}
}

// Suggester drafts captions for images with a vision LLM.
type Suggester struct {
	fs       billy.Filesystem
	provider providers.Provider
	model    string
	timeout  time.Duration
}

// New returns a Suggester reading images from fsys.
func New(fsys billy.Filesystem, provider providers.Provider, model string) *Suggester {
	return &Suggester{
		fs:       fsys,
		provider: provider,
		model:    model,
		timeout:  defaultTimeout,
	}
}

// Suggest returns a caption for the image at imagePath that starts with
// triggerWord.
func (s *Suggester) Suggest(ctx context.Context, imagePath, triggerWord string) (string, error) {
	image, err := s.readImage(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.provider.DescribeImage(ctx, providers.Config{
		Model:       s.model,
		Temperature: 0.2,
		Prompt:      BuildPrompt(triggerWord),
		Image:       image,
		MIMEType:    MIMEType(imagePath),
	})
	if err != nil {
		return "", err
	}

	slog.Info("Caption suggested", "image", imagePath, "model", s.model, "duration", time.Since(start))
	return FormatCaption(triggerWord, raw), nil
}

func (s *Suggester) readImage(path string) ([]byte, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// BuildPrompt is the instruction sent along with every image.
func BuildPrompt(triggerWord string) string {
	return fmt.Sprintf(`You are writing a caption for an image in a fine-tuning dataset.

Describe the image in one short sentence fragment: the subject, what they are doing, clothing, setting and lighting.
Refer to the main subject only as "%s".
Do not start with "This image shows" or similar. Do not use quotes. Output the caption only.`, triggerWord)
}

// MIMEType guesses the image MIME type from its extension.
func MIMEType(imagePath string) string {
	ext := strings.ToLower(filepath.Ext(imagePath))
	if ext == ".jpg" {
		ext = ".jpeg"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "image/" + strings.TrimPrefix(ext, ".")
}

// FormatCaption cleans a model answer into a single-line caption that
// leads with triggerWord. An empty answer yields triggerWord alone.
func FormatCaption(triggerWord, raw string) string {
	caption := strings.Join(strings.Fields(raw), " ")
	caption = strings.Trim(caption, "\"'`")
	caption = strings.TrimSpace(caption)
	caption = strings.TrimSuffix(caption, ".")

	if caption == "" {
		return triggerWord
	}
	if startsWithWord(caption, triggerWord) {
		return caption
	}
	return triggerWord + ", " + caption
}

// startsWithWord reports whether s begins with word, ignoring case, followed
// by the end of s or a character that cannot continue a word.
func startsWithWord(s, word string) bool {
	if word == "" || len(s) < len(word) || !strings.EqualFold(s[:len(word)], word) {
		return false
	}
	if len(s) == len(word) {
		return true
	}
	next, _ := utf8.DecodeRuneInString(s[len(word):])
	return !unicode.IsLetter(next) && !unicode.IsDigit(next) && next != '_'
}
