package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/picwall-dev/picwall/internal/domain"
	"github.com/picwall-dev/picwall/internal/validation"
)

// parseIdParam parses a chi URL parameter as an int64 identifier.
func parseIdParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", name)
	}
	return id, nil
}

// parseUploadRequest parses a picture upload: multipart form with a "name"
// field and an "image" file. Returns a cleanup function that closes the file.
func (h *Handler) parseUploadRequest(w http.ResponseWriter, r *http.Request) (name string, upload *domain.PendingUpload, cleanup func(), err error) {
	maxRequestSize := h.cfg.Public.MaxUploadBytes + 1<<20 // form field overhead
	if err = validation.ValidateAndParseMultipart(r, w, maxRequestSize); err != nil {
		err = fmt.Errorf("%w: upload exceeds the limit of %d bytes", validation.ErrPayloadTooLarge, h.cfg.Public.MaxUploadBytes)
		return
	}

	name = r.FormValue("name")

	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		err = validation.ErrMissingFile
		return
	}
	upload, err = validation.ValidateUpload(files[0])
	if err != nil {
		return
	}

	cleanup = func() {
		if closer, ok := upload.Data.(io.Closer); ok {
			closer.Close()
		}
	}
	return
}
