package captions

import "testing"

func TestCaptionPath(t *testing.T) {
	tests := []struct {
		name      string
		imagePath string
		expected  string
	}{
		{"uppercase extension", "foo.JPEG", "foo.txt"},
		{"only final extension stripped", "a.b.png", "a.b.txt"},
		{"nested directory", "photos/2024/cat.gif", "photos/2024/cat.txt"},
		{"dotted directory", "my.photos/cat.jpg", "my.photos/cat.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CaptionPath(tt.imagePath); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestIsImage(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"cat.jpg", true},
		{"cat.JPG", true},
		{"cat.jpeg", true},
		{"cat.Png", true},
		{"cat.gif", true},
		{"cat.webp", false},
		{"readme.md", false},
		{"cat.txt", false},
		{"jpg", false},
		{".hidden.png", false},
		{"cat.png.bak", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsImage(tt.name); got != tt.expected {
				t.Errorf("IsImage(%q) = %v, expected %v", tt.name, got, tt.expected)
			}
		})
	}
}
