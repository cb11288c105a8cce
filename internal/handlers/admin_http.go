package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"design-pro/internal/middleware"
	"design-pro/internal/models"
	"design-pro/internal/service"
	"design-pro/internal/utils"
)

type AdminHTTP struct {
	svc *service.RequestService
	log zerolog.Logger
}

func NewAdminHTTP(s *service.RequestService, log zerolog.Logger) *AdminHTTP {
	return &AdminHTTP{svc: s, log: log}
}

// dashboardItem is a request together with the statuses it may move to.
type dashboardItem struct {
	models.Request
	NextStatuses []models.Status `json:"nextStatuses"`
}

// GET /api/admin/requests?status=&limit=&offset=
func (h *AdminHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		id, _ := middleware.IdentityFrom(r.Context())
		page, err := h.svc.ListAll(r.Context(), id, qv.Get("status"),
			utils.QueryInt(qv, "limit", 0), utils.QueryInt(qv, "offset", 0))
		if err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}

		items := make([]dashboardItem, 0, len(page.Items))
		for _, req := range page.Items {
			items = append(items, dashboardItem{Request: req, NextStatuses: orEmpty(service.NextStatuses(req.Status))})
		}
		utils.JSON(w, http.StatusOK, map[string]any{"items": items, "total": page.Total})
	}
}

// GET /api/admin/summary
// Returns: { new, in_progress, done, total }
func (h *AdminHTTP) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := middleware.IdentityFrom(r.Context())
		counts, err := h.svc.Summary(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		out := map[string]int{"total": 0}
		for _, st := range []models.Status{models.StatusNew, models.StatusInProgress, models.StatusDone} {
			out[string(st)] = counts[st]
			out["total"] += counts[st]
		}
		utils.JSON(w, http.StatusOK, out)
	}
}

// POST /api/admin/requests/{id}/status (multipart: status, comment, design_image)
func (h *AdminHTTP) ChangeStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := chi.URLParam(r, "id")
		if reqID == "" {
			utils.Error(w, http.StatusBadRequest, "missing id")
			return
		}
		cleanup, ok := parseMultipart(w, r)
		if !ok {
			return
		}
		defer cleanup()

		design, closeDesign, err := formFile(r, "design_image")
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid design image upload")
			return
		}
		defer closeDesign()

		id, _ := middleware.IdentityFrom(r.Context())
		req, err := h.svc.Transition(r.Context(), id, reqID, service.TransitionInput{
			Status:      r.FormValue("status"),
			Comment:     r.FormValue("comment"),
			DesignImage: design,
		})
		if err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, dashboardItem{Request: *req, NextStatuses: orEmpty(service.NextStatuses(req.Status))})
	}
}

func orEmpty(s []models.Status) []models.Status {
	if s == nil {
		return []models.Status{}
	}
	return s
}
