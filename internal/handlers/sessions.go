package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/captioner/internal/captions"
	"github.com/lehigh-university-libraries/captioner/internal/models"
	"github.com/lehigh-university-libraries/captioner/internal/storage"
)

type loadRequest struct {
	Directory   string `json:"directory"`
	TriggerWord string `json:"trigger_word"`
}

func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]any{
		"directory":    h.directory,
		"trigger_word": h.triggerWord,
		"suggestions":  h.suggester != nil,
	})
}

func (h *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessions, err := h.sessionStore.List()
	if err != nil {
		h.writeError(w, "Failed to list sessions: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, sessions)
}

func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var request loadRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if request.Directory == "" {
		request.Directory = h.directory
	}
	if request.TriggerWord == "" {
		request.TriggerWord = h.triggerWord
	}
	if request.Directory == "" || request.TriggerWord == "" {
		h.writeError(w, "directory and trigger_word are required", http.StatusBadRequest)
		return
	}

	session := h.newSession(request.Directory, request.TriggerWord)
	if err := h.loadSession(session, session.Directory, session.TriggerWord); err != nil {
		h.writeError(w, "Failed to load images: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.saveSessionOrError(w, session) {
		return
	}

	h.writeJSONStatus(w, http.StatusCreated, map[string]any{
		"session": session,
		"message": loadedMessage(session),
	})
}

func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	session, ok := h.getSessionOrError(w, r.PathValue("id"))
	if !ok {
		return
	}
	h.writeJSON(w, session)
}

func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	err := h.sessionStore.Delete(r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.writeError(w, "Failed to delete session: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleLoad re-scans the session directory, discarding unsaved edits.
func (h *Handler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	var request loadRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	session, ok := h.getSessionOrError(w, r.PathValue("id"))
	if !ok {
		return
	}
	directory, triggerWord := session.Directory, session.TriggerWord
	if request.Directory != "" {
		directory = request.Directory
	}
	if request.TriggerWord != "" {
		triggerWord = request.TriggerWord
	}

	if err := h.loadSession(session, directory, triggerWord); err != nil {
		h.writeError(w, "Failed to load images: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if !h.saveSessionOrError(w, session) {
		return
	}

	h.writeJSON(w, map[string]any{
		"session": session,
		"message": loadedMessage(session),
	})
}

func (h *Handler) HandleUpdateCaption(w http.ResponseWriter, r *http.Request) {
	index, ok := h.indexOrError(w, r)
	if !ok {
		return
	}

	var request struct {
		Caption *string `json:"caption"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if request.Caption == nil {
		h.writeError(w, "caption is required", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	session, ok := h.getSessionOrError(w, r.PathValue("id"))
	if !ok {
		return
	}
	if err := session.UpdateCaption(index, *request.Caption); err != nil {
		h.writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	if !h.saveSessionOrError(w, session) {
		return
	}

	h.writeJSON(w, session.Items[index])
}

// HandleSave writes every caption of the session to its sidecar file.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	session, ok := h.getSessionOrError(w, r.PathValue("id"))
	if !ok {
		return
	}

	records := session.Records()
	if err := captions.Persist(h.fs, records); err != nil {
		failed := captions.FailedPaths(err)
		slog.Error("Failed to save captions", "session_id", session.ID, "failed", len(failed))
		h.writeJSONStatus(w, http.StatusInternalServerError, map[string]any{
			"error":  err.Error(),
			"failed": failed,
			"saved":  len(records) - len(failed),
		})
		return
	}

	session.MarkSaved()
	if !h.saveSessionOrError(w, session) {
		return
	}

	slog.Info("Captions saved", "session_id", session.ID, "count", len(records))
	h.writeJSON(w, map[string]any{
		"message": "All captions saved successfully!",
		"saved":   len(records),
	})
}

// itemOrError returns a copy of the item at the request's index together
// with the session's trigger word, so callers can work without the lock.
func (h *Handler) itemOrError(w http.ResponseWriter, r *http.Request) (models.ImageItem, string, bool) {
	index, ok := h.indexOrError(w, r)
	if !ok {
		return models.ImageItem{}, "", false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	session, ok := h.getSessionOrError(w, r.PathValue("id"))
	if !ok {
		return models.ImageItem{}, "", false
	}
	item, err := session.Item(index)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusNotFound)
		return models.ImageItem{}, "", false
	}
	return item, session.TriggerWord, true
}
