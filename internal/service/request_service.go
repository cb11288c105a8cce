package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"design-pro/internal/models"
	"design-pro/internal/repository"
	"design-pro/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	maxTitleLen = 200

	defaultPageSize = 50
	maxPageSize     = 200

	defaultHomeSize = 4
	maxHomeSize     = 20
)

// RequestService owns the request lifecycle: creation by users, the admin
// status state machine, and owner deletion of new requests.
type RequestService struct {
	requests   repository.RequestRepository
	categories repository.CategoryRepository
	store      storage.Store
	log        zerolog.Logger
	now        func() time.Time

	transitions *prometheus.CounterVec
}

func NewRequestService(
	requests repository.RequestRepository,
	categories repository.CategoryRepository,
	store storage.Store,
	log zerolog.Logger,
) *RequestService {
	return &RequestService{
		requests:   requests,
		categories: categories,
		store:      store,
		log:        log,
		now:        time.Now,
	}
}

// WithMetrics registers a counter of accepted status transitions.
func (s *RequestService) WithMetrics(reg prometheus.Registerer) *RequestService {
	s.transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "design_pro_request_transitions_total",
		Help: "Accepted request status transitions.",
	}, []string{"from", "to"})
	reg.MustRegister(s.transitions)
	return s
}

type CreateRequestInput struct {
	Title       string
	Description string
	CategoryID  string
	Photo       *storage.File
}

// Create validates the input and the photo, stores the photo and persists a
// new request. Nothing is written when validation fails.
func (s *RequestService) Create(ctx context.Context, owner models.Identity, in CreateRequestInput) (*models.Request, error) {
	if owner.UserID == "" {
		return nil, ErrForbidden
	}

	verr := &ValidationError{}
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		verr.add("title", "title is required")
	case utf8.RuneCountInString(title) > maxTitleLen:
		verr.add("title", fmt.Sprintf("title must be at most %d characters", maxTitleLen))
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		verr.add("description", "description is required")
	}

	var category *models.Category
	if id := strings.TrimSpace(in.CategoryID); id != "" {
		c, err := s.categories.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get category: %w", err)
		}
		if c == nil {
			verr.add("category", "unknown category")
		}
		category = c
	}

	if in.Photo == nil {
		verr.add("photo", "photo is required")
	} else if err := storage.ValidateImage(*in.Photo); err != nil {
		verr.add("photo", err.Error())
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	key, err := s.store.Put(ctx, storage.FolderPhotos, *in.Photo)
	if err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}

	now := s.now()
	req := &models.Request{
		Title:       title,
		Description: description,
		Status:      models.StatusNew,
		Photo:       key,
		OwnerID:     owner.UserID,
		CreatedAt:   now,
		EditDate:    now,
	}
	if category != nil {
		req.CategoryID = category.ID
	}
	if err := s.requests.Create(ctx, req); err != nil {
		discardAttachments(ctx, s.store, s.log, key)
		if errors.Is(err, repository.ErrConflict) {
			return nil, invalid("category", "unknown category")
		}
		return nil, fmt.Errorf("create request: %w", err)
	}
	if category != nil {
		req.CategoryName = category.Name
	}
	resolveURLs(s.store, req)

	s.log.Info().Str("request_id", req.ID).Str("owner", owner.UserID).Msg("request created")
	return req, nil
}

func parseStatusFilter(raw string) (models.Status, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	st, ok := models.ParseStatus(raw)
	if !ok {
		return "", invalid("status", fmt.Sprintf("unknown status %q", raw))
	}
	return st, nil
}

// ListForOwner returns the owner's requests, newest first, optionally
// restricted to one status.
func (s *RequestService) ListForOwner(ctx context.Context, owner models.Identity, status string) ([]models.Request, error) {
	if owner.UserID == "" {
		return nil, ErrForbidden
	}
	st, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}
	items, err := s.requests.List(ctx, repository.RequestFilter{OwnerID: owner.UserID, Status: st})
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	for i := range items {
		resolveURLs(s.store, &items[i])
	}
	return items, nil
}

// Delete removes a request on behalf of its owner while it is still new.
func (s *RequestService) Delete(ctx context.Context, owner models.Identity, id string) error {
	req, err := s.requests.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get request: %w", err)
	}
	if req == nil {
		return ErrNotFound
	}
	if owner.UserID == "" || req.OwnerID != owner.UserID {
		return ErrForbidden
	}
	if req.Status != models.StatusNew {
		return ErrNotDeletable
	}

	if err := s.requests.DeleteNew(ctx, id, owner.UserID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// status changed between the read and the delete
			return ErrNotDeletable
		}
		return fmt.Errorf("delete request: %w", err)
	}
	discardAttachments(ctx, s.store, s.log, req.Photo, req.DesignImage)

	s.log.Info().Str("request_id", id).Str("owner", owner.UserID).Msg("request deleted")
	return nil
}

type TransitionInput struct {
	Status      string
	Comment     string
	DesignImage *storage.File
}

// Transition moves a request to another status. Only admins may do this.
// Moving to in_progress needs a comment; moving to done needs a design image.
// A rejected transition leaves the request untouched.
func (s *RequestService) Transition(ctx context.Context, actor models.Identity, id string, in TransitionInput) (*models.Request, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	target, ok := models.ParseStatus(strings.TrimSpace(in.Status))
	if !ok {
		return nil, invalid("status", fmt.Sprintf("unknown status %q", in.Status))
	}

	cur, err := s.requests.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if cur == nil {
		return nil, ErrNotFound
	}
	if cur.Status == models.StatusDone {
		return nil, &ValidationError{
			Fields: map[string]string{"status": ErrTerminalStatus.Error()},
			Err:    ErrTerminalStatus,
		}
	}
	if !CanTransition(cur.Status, target) {
		return nil, &ValidationError{
			Fields: map[string]string{"status": fmt.Sprintf("cannot move from %s to %s", cur.Status, target)},
			Err:    ErrTransitionNotAllowed,
		}
	}

	comment := strings.TrimSpace(in.Comment)
	verr := &ValidationError{}
	if target == models.StatusInProgress && comment == "" {
		verr.add("comment", "comment is required to start work on a request")
	}
	if target == models.StatusDone {
		if in.DesignImage == nil {
			verr.add("design_image", "design image is required to complete a request")
		} else if err := storage.ValidateImage(*in.DesignImage); err != nil {
			verr.add("design_image", err.Error())
		}
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	next := *cur
	next.Status = target
	if comment != "" {
		next.Comment = comment
	}
	var stored string
	if target == models.StatusDone {
		key, err := s.store.Put(ctx, storage.FolderDesigns, *in.DesignImage)
		if err != nil {
			return nil, fmt.Errorf("store design image: %w", err)
		}
		next.DesignImage = key
		stored = key
	}
	next.EditDate = s.now()

	if err := s.requests.UpdateStatus(ctx, &next, cur.Status); err != nil {
		discardAttachments(ctx, s.store, s.log, stored)
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("update status: %w", err)
	}
	if s.transitions != nil {
		s.transitions.WithLabelValues(string(cur.Status), string(target)).Inc()
	}
	resolveURLs(s.store, &next)

	s.log.Info().
		Str("request_id", id).
		Str("from", string(cur.Status)).
		Str("to", string(target)).
		Msg("request status changed")
	return &next, nil
}

type Page struct {
	Items []models.Request `json:"items"`
	Total int              `json:"total"`
}

// ListAll returns every request, newest first, for the admin dashboard.
func (s *RequestService) ListAll(ctx context.Context, actor models.Identity, status string, limit, offset int) (Page, error) {
	if !actor.IsAdmin() {
		return Page{}, ErrForbidden
	}
	st, err := parseStatusFilter(status)
	if err != nil {
		return Page{}, err
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)
	if offset < 0 {
		offset = 0
	}

	f := repository.RequestFilter{Status: st, Limit: limit, Offset: offset}
	items, err := s.requests.List(ctx, f)
	if err != nil {
		return Page{}, fmt.Errorf("list requests: %w", err)
	}
	total, err := s.requests.Count(ctx, f)
	if err != nil {
		return Page{}, fmt.Errorf("count requests: %w", err)
	}
	for i := range items {
		resolveURLs(s.store, &items[i])
	}
	return Page{Items: items, Total: total}, nil
}

// Summary counts requests per status.
func (s *RequestService) Summary(ctx context.Context, actor models.Identity) (map[models.Status]int, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	counts, err := s.requests.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	return counts, nil
}

type HomeView struct {
	Done       []models.Request `json:"done"`
	InProgress int              `json:"inProgress"`
}

// Home returns the most recently completed requests and how many requests
// are currently being worked on.
func (s *RequestService) Home(ctx context.Context, limit int) (HomeView, error) {
	if limit <= 0 {
		limit = defaultHomeSize
	}
	limit = min(limit, maxHomeSize)

	done, err := s.requests.RecentlyDone(ctx, limit)
	if err != nil {
		return HomeView{}, fmt.Errorf("recently done: %w", err)
	}
	inProgress, err := s.requests.Count(ctx, repository.RequestFilter{Status: models.StatusInProgress})
	if err != nil {
		return HomeView{}, fmt.Errorf("count in progress: %w", err)
	}
	for i := range done {
		resolveURLs(s.store, &done[i])
	}
	return HomeView{Done: done, InProgress: inProgress}, nil
}
