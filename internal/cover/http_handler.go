package cover

import (
	"errors"
	"io"
	"net/http"

	"bookshelf/internal/httpx"
)

type HTTPHandler struct {
	uploader *Uploader
	maxBytes int64
}

func NewHTTPHandler(uploader *Uploader, maxBytes int64) *HTTPHandler {
	return &HTTPHandler{uploader: uploader, maxBytes: maxBytes}
}

// Upload handles POST /api/upload with a multipart "file" field.
func (h *HTTPHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.JSONError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "File too large", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "No file provided", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Could not read file", nil)
		return
	}
	if len(data) == 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "No file provided", nil)
		return
	}

	asset, err := h.uploader.Upload(r.Context(), userID, data, header.Filename)
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "UPLOAD_FAILED", err.Error(), nil)
		return
	}
	httpx.JSONSuccess(w, r, asset, nil)
}

// Delete handles DELETE /api/upload?path=<key>
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	key := r.URL.Query().Get("path")
	if key == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "path is required", nil)
		return
	}

	err := h.uploader.Delete(r.Context(), userID, key)
	switch {
	case err == nil:
		httpx.JSONNoContent(w)
	case errors.Is(err, ErrForbidden):
		httpx.JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "Cannot delete another user's file", nil)
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "File not found", nil)
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "DELETE_FAILED", err.Error(), nil)
	}
}
