package handlers

import (
	"net/http"
)

func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	item, _, ok := h.itemOrError(w, r)
	if !ok {
		return
	}

	file, err := h.fs.Open(item.ImagePath)
	if err != nil {
		h.writeError(w, "Failed to open image: "+err.Error(), http.StatusNotFound)
		return
	}
	defer file.Close()

	info, err := h.fs.Stat(item.ImagePath)
	if err != nil {
		h.writeError(w, "Failed to stat image: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, item.Name, info.ModTime(), file)
}

// HandleSuggest drafts a caption with the configured provider. The session
// is left untouched; the client decides whether to keep the suggestion.
func (h *Handler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	if h.suggester == nil {
		h.writeError(w, "Caption suggestions are not configured", http.StatusNotImplemented)
		return
	}

	item, triggerWord, ok := h.itemOrError(w, r)
	if !ok {
		return
	}

	caption, err := h.suggester.Suggest(r.Context(), item.ImagePath, triggerWord)
	if err != nil {
		h.writeError(w, "Failed to suggest caption: "+err.Error(), http.StatusBadGateway)
		return
	}

	h.writeJSON(w, map[string]any{
		"index":   item.Index,
		"caption": caption,
	})
}
