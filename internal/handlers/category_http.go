package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"design-pro/internal/middleware"
	"design-pro/internal/service"
	"design-pro/internal/utils"
)

type CategoryHTTP struct {
	svc *service.CategoryService
	log zerolog.Logger
}

func NewCategoryHTTP(s *service.CategoryService, log zerolog.Logger) *CategoryHTTP {
	return &CategoryHTTP{svc: s, log: log}
}

// GET /api/categories
func (h *CategoryHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.svc.List(r.Context())
		if err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

// POST /api/admin/categories
func (h *CategoryHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		id, _ := middleware.IdentityFrom(r.Context())
		c, err := h.svc.Create(r.Context(), id, in.Name)
		if err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		utils.JSON(w, http.StatusCreated, c)
	}
}

// DELETE /api/admin/categories/{id}
// Also deletes every request in the category.
func (h *CategoryHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := middleware.IdentityFrom(r.Context())
		if err := h.svc.Delete(r.Context(), id, chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
