package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/captioner/internal/captions"
	"github.com/lehigh-university-libraries/captioner/internal/images"
	"github.com/lehigh-university-libraries/captioner/internal/models"
	"github.com/lehigh-university-libraries/captioner/internal/storage"
	"github.com/lehigh-university-libraries/captioner/internal/suggest"
)

// Options configures a Handler. Zero values fall back to an in-memory
// store and the local filesystem.
type Options struct {
	Store       storage.Store
	FS          billy.Filesystem
	Suggester   *suggest.Suggester
	Directory   string
	TriggerWord string
}

type Handler struct {
	sessionStore storage.Store
	fs           billy.Filesystem
	suggester    *suggest.Suggester
	directory    string
	triggerWord  string

	// serialises read-modify-write of sessions
	mu sync.Mutex
}

func New(opts Options) *Handler {
	h := &Handler{
		sessionStore: opts.Store,
		fs:           opts.FS,
		suggester:    opts.Suggester,
		directory:    opts.Directory,
		triggerWord:  opts.TriggerWord,
	}
	if h.sessionStore == nil {
		h.sessionStore = storage.New()
	}
	if h.fs == nil {
		h.fs = captions.LocalFS()
	}
	return h
}

// Routes returns the API and UI routes.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/config", h.HandleConfig)
	mux.HandleFunc("GET /api/sessions", h.HandleListSessions)
	mux.HandleFunc("POST /api/sessions", h.HandleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.HandleGetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.HandleDeleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/load", h.HandleLoad)
	mux.HandleFunc("POST /api/sessions/{id}/save", h.HandleSave)
	mux.HandleFunc("PUT /api/sessions/{id}/captions/{index}", h.HandleUpdateCaption)
	mux.HandleFunc("POST /api/sessions/{id}/captions/{index}/suggest", h.HandleSuggest)
	mux.HandleFunc("GET /api/sessions/{id}/images/{index}", h.HandleImage)
	mux.HandleFunc("GET /static/", h.HandleStatic)
	mux.HandleFunc("GET /{$}", h.HandleStatic)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	return mux
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*models.CaptionSession, bool) {
	session, err := h.sessionStore.Get(sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		h.writeError(w, "Failed to load session: "+err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return session, true
}

func (h *Handler) saveSessionOrError(w http.ResponseWriter, session *models.CaptionSession) bool {
	if err := h.sessionStore.Set(session); err != nil {
		h.writeError(w, "Failed to store session: "+err.Error(), http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *Handler) indexOrError(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.writeError(w, "Invalid caption index: "+r.PathValue("index"), http.StatusBadRequest)
		return 0, false
	}
	return index, true
}

func (h *Handler) newSession(directory, triggerWord string) *models.CaptionSession {
	return &models.CaptionSession{
		ID:          uuid.New().String(),
		Directory:   directory,
		TriggerWord: triggerWord,
		Items:       []models.ImageItem{},
		CreatedAt:   time.Now(),
	}
}

// loadSession scans directory and, only when the scan succeeds, points the
// session at it and replaces its items.
func (h *Handler) loadSession(session *models.CaptionSession, directory, triggerWord string) error {
	records, err := captions.Scan(h.fs, directory, triggerWord)
	if err != nil {
		return err
	}

	items := make([]models.ImageItem, 0, len(records))
	for i, record := range records {
		width, height, err := images.Dimensions(h.fs, record.ImagePath)
		if err != nil {
			slog.Warn("Failed to get image dimensions", "image", record.ImagePath, "error", err)
			width, height = 0, 0
		}
		items = append(items, models.ImageItem{
			Record:   record,
			Index:    i,
			Name:     filepath.Base(record.ImagePath),
			ImageURL: fmt.Sprintf("/api/sessions/%s/images/%d", session.ID, i),
			Width:    width,
			Height:   height,
		})
	}

	session.Directory = directory
	session.TriggerWord = triggerWord
	session.Replace(items)
	slog.Info("Session loaded", "session_id", session.ID, "directory", session.Directory, "images", len(items))
	return nil
}

func loadedMessage(session *models.CaptionSession) string {
	if len(session.Items) == 0 {
		return "No images found in the selected directory. Make sure the directory contains supported image files (jpg, jpeg, png, gif)."
	}
	return fmt.Sprintf("Loaded %d images", len(session.Items))
}
