package handler

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/picwall-dev/picwall/internal/utils"
)

// ServeMedia streams a stored blob back to the client. Locations are
// content-addressed, so the response is immutable and cacheable forever.
func (h *Handler) ServeMedia(w http.ResponseWriter, r *http.Request) {
	location := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if location == "" || strings.Contains(location, "..") {
		http.Error(w, "invalid media path", http.StatusBadRequest)
		return
	}

	blob, err := h.blobs.Open(location)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	defer blob.Close()

	if contentType := mime.TypeByExtension(path.Ext(location)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")

	if _, err := io.Copy(w, blob); err != nil {
		// Response already started; nothing useful to send.
		return
	}
}
