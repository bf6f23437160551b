package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/lostfound/internal/filestore"
)

// FilesHandler serves stored photos and QR images.
type FilesHandler struct {
	Files filestore.Store
}

// Uploads handles GET /uploads/{name}.
func (h *FilesHandler) Uploads(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, filestore.UploadsDir)
}

// QRCodes handles GET /qrcodes/{name}.
func (h *FilesHandler) QRCodes(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, filestore.QRCodesDir)
}

func (h *FilesHandler) serve(w http.ResponseWriter, r *http.Request, dir string) {
	name := chi.URLParam(r, "name")
	if name == "" || name != path.Base(name) || name == "." || name == ".." {
		jsonError(w, http.StatusNotFound, "file not found")
		return
	}

	rc, err := h.Files.Open(r.Context(), path.Join(dir, name))
	if err != nil {
		if errors.Is(err, filestore.ErrNotExist) {
			jsonError(w, http.StatusNotFound, "file not found")
			return
		}
		serviceError(w, r, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	io.Copy(w, rc)
}
