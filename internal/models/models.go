package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/lehigh-university-libraries/captioner/internal/captions"
)

// ErrIndexOutOfRange is returned when a caption index does not name an item.
var ErrIndexOutOfRange = errors.New("caption index out of range")

// CaptionSession represents one caption editing session over a directory
type CaptionSession struct {
	ID          string      `json:"id"`
	Directory   string      `json:"directory"`
	TriggerWord string      `json:"trigger_word"`
	Items       []ImageItem `json:"items"`
	CreatedAt   time.Time   `json:"created_at"`
	LoadedAt    time.Time   `json:"loaded_at"`
	SavedAt     *time.Time  `json:"saved_at,omitempty"`
}

// ImageItem is a scanned record plus what the UI needs to display it
type ImageItem struct {
	captions.Record
	Index    int    `json:"index"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	Width    int    `json:"image_width"`
	Height   int    `json:"image_height"`
}

// Replace swaps the item list for a fresh scan.
func (s *CaptionSession) Replace(items []ImageItem) {
	s.Items = items
	s.LoadedAt = time.Now()
}

// UpdateCaption sets the caption of the item at index.
func (s *CaptionSession) UpdateCaption(index int, caption string) error {
	if index < 0 || index >= len(s.Items) {
		return fmt.Errorf("%w: %d (session has %d items)", ErrIndexOutOfRange, index, len(s.Items))
	}
	s.Items[index].Caption = caption
	return nil
}

// Item returns the item at index.
func (s *CaptionSession) Item(index int) (ImageItem, error) {
	if index < 0 || index >= len(s.Items) {
		return ImageItem{}, fmt.Errorf("%w: %d (session has %d items)", ErrIndexOutOfRange, index, len(s.Items))
	}
	return s.Items[index], nil
}

// Records returns the current captions in scan order.
func (s *CaptionSession) Records() []captions.Record {
	records := make([]captions.Record, len(s.Items))
	for i, item := range s.Items {
		records[i] = item.Record
	}
	return records
}

// MarkSaved records the time of a successful save.
func (s *CaptionSession) MarkSaved() {
	now := time.Now()
	s.SavedAt = &now
}
