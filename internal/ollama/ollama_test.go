package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lehigh-university-libraries/captioner/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeImage(t *testing.T) {
	image := []byte("\x89PNG fake")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var body struct {
			Model  string   `json:"model"`
			Prompt string   `json:"prompt"`
			Images []string `json:"images"`
			Stream bool     `json:"stream"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llava", body.Model)
		assert.Equal(t, "describe", body.Prompt)
		assert.False(t, body.Stream)
		require.Len(t, body.Images, 1)
		assert.Equal(t, base64.StdEncoding.EncodeToString(image), body.Images[0])

		_ = json.NewEncoder(w).Encode(map[string]string{"response": "a cat on a sofa"})
	}))
	defer server.Close()
	t.Setenv("OLLAMA_URL", server.URL)

	got, err := New().DescribeImage(context.Background(), providers.Config{
		Model:    "llava",
		Prompt:   "describe",
		Image:    image,
		MIMEType: "image/png",
	})
	require.NoError(t, err)
	assert.Equal(t, "a cat on a sofa", got)
}

func TestDescribeImageErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()
	t.Setenv("OLLAMA_URL", server.URL)

	_, err := New().DescribeImage(context.Background(), providers.Config{Model: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
