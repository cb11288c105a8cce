package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"design-pro/internal/middleware"
	"design-pro/internal/service"
	"design-pro/internal/utils"
)

// RequestHTTP serves the user-facing request endpoints and the public home page.
type RequestHTTP struct {
	svc *service.RequestService
	log zerolog.Logger
}

func NewRequestHTTP(s *service.RequestService, log zerolog.Logger) *RequestHTTP {
	return &RequestHTTP{svc: s, log: log}
}

// GET /api/home?limit=
func (h *RequestHTTP) Home() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := h.svc.Home(r.Context(), utils.QueryInt(r.URL.Query(), "limit", 0))
		if err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, view)
	}
}

// GET /api/requests?status=
func (h *RequestHTTP) ListMine() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := middleware.IdentityFrom(r.Context())
		items, err := h.svc.ListForOwner(r.Context(), id, r.URL.Query().Get("status"))
		if err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
	}
}

// POST /api/requests (multipart: title, description, category_id, photo)
func (h *RequestHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cleanup, ok := parseMultipart(w, r)
		if !ok {
			return
		}
		defer cleanup()

		photo, closePhoto, err := formFile(r, "photo")
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid photo upload")
			return
		}
		defer closePhoto()

		id, _ := middleware.IdentityFrom(r.Context())
		req, err := h.svc.Create(r.Context(), id, service.CreateRequestInput{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			CategoryID:  r.FormValue("category_id"),
			Photo:       photo,
		})
		if err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		utils.JSON(w, http.StatusCreated, req)
	}
}

// DELETE /api/requests/{id}
func (h *RequestHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := chi.URLParam(r, "id")
		if reqID == "" {
			utils.Error(w, http.StatusBadRequest, "missing id")
			return
		}
		id, _ := middleware.IdentityFrom(r.Context())
		if err := h.svc.Delete(r.Context(), id, reqID); err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
