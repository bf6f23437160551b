package api

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/service"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	Service *service.Service
}

type itemResponse struct {
	Message string      `json:"message"`
	Item    *model.Item `json:"item"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := service.SearchQuery{
		Keyword:  q.Get("keyword"),
		UniqueID: q.Get("unique_id"),
		Status:   q.Get("status"),
		Category: q.Get("category"),
	}

	var err error
	if query.Lat, err = optionalFloat(q.Get("lat")); err != nil {
		jsonError(w, http.StatusBadRequest, "lat must be a number")
		return
	}
	if query.Lon, err = optionalFloat(q.Get("lon")); err != nil {
		jsonError(w, http.StatusBadRequest, "lon must be a number")
		return
	}
	if query.Radius, err = optionalFloat(q.Get("radius")); err != nil {
		jsonError(w, http.StatusBadRequest, "radius must be a number")
		return
	}

	items, err := h.Service.Search(r.Context(), query)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Service.Lookup(r.Context(), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// GetByUniqueID handles GET /api/items/by-unique-id/{token}.
func (h *ItemsHandler) GetByUniqueID(w http.ResponseWriter, r *http.Request) {
	item, err := h.Service.LookupByUniqueID(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Create handles POST /api/items. The body is a multipart form (with an
// optional "image" file), a urlencoded form, or a JSON object without image.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	// Allow some headroom over the image limit for the other form fields.
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+64<<10)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var in service.CreateInput
		if err := decodeJSON(r, &in); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		h.create(w, r, in)
		return
	}

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(imaging.MaxUploadBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			jsonError(w, http.StatusBadRequest, "file too large. Maximum size is 5MB.")
			return
		}
		jsonError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	in := service.CreateInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Status:      r.FormValue("status"),
		UniqueID:    r.FormValue("unique_id"),
	}
	if in.Lat, err = optionalFloat(r.FormValue("lat")); err != nil {
		jsonError(w, http.StatusBadRequest, "lat must be a number")
		return
	}
	if in.Lon, err = optionalFloat(r.FormValue("lon")); err != nil {
		jsonError(w, http.StatusBadRequest, "lon must be a number")
		return
	}

	if r.MultipartForm != nil {
		file, err := openFormFile(r.MultipartForm, "image")
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid image upload")
			return
		}
		if file != nil {
			defer file.Close()
			in.Image = file
		}
	}

	h.create(w, r, in)
}

func (h *ItemsHandler) create(w http.ResponseWriter, r *http.Request, in service.CreateInput) {
	item, err := h.Service.Create(r.Context(), in)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusCreated, itemResponse{Message: "Item created successfully", Item: item})
}

// Claim handles PUT /api/items/{id}/claim.
func (h *ItemsHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Service.Claim(r.Context(), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, itemResponse{Message: "Item marked as claimed", Item: item})
}

// Categories handles GET /api/categories.
func (h *ItemsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.Service.Categories())
}

// Health handles GET /api/health.
func Health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "Lost & Found API is running",
	})
}

// optionalFloat parses s, treating an empty string as absent.
func optionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// openFormFile returns the first file uploaded under field, or nil if there
// is none.
func openFormFile(form *multipart.Form, field string) (io.ReadCloser, error) {
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, nil
	}
	f, err := headers[0].Open()
	if err != nil {
		slog.Debug("opening uploaded file", "field", field, "error", err)
		return nil, err
	}
	return f, nil
}
