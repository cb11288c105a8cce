// Package memory is an in-process implementation of the repository
// interfaces, used by tests and for running without Postgres.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"design-pro/internal/models"
	"design-pro/internal/repository"
)

// DB holds all tables behind a single lock so that cascades are atomic.
type DB struct {
	mu         sync.Mutex
	seq        int
	users      map[string]userRow
	categories map[string]models.Category
	requests   map[string]models.Request

	// FailWrites makes every insert fail, to exercise abort paths.
	FailWrites bool
}

type userRow struct {
	user models.User
	hash string
}

func New() *DB {
	return &DB{
		users:      map[string]userRow{},
		categories: map[string]models.Category{},
		requests:   map[string]models.Request{},
	}
}

func (db *DB) nextID(prefix string) string {
	db.seq++
	return fmt.Sprintf("%s-%d", prefix, db.seq)
}

func (db *DB) Users() repository.UserRepository          { return users{db} }
func (db *DB) Categories() repository.CategoryRepository { return categories{db} }
func (db *DB) Requests() repository.RequestRepository    { return requests{db} }

var errWrite = errors.New("memory: write failed")

// ---------------------------------------------------------------------------
// users

type users struct{ db *DB }

func (r users) Create(_ context.Context, u *models.User, passwordHash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.FailWrites {
		return errWrite
	}
	for _, row := range r.db.users {
		if strings.EqualFold(row.user.Username, u.Username) {
			return repository.ErrDuplicate
		}
	}
	u.ID = r.db.nextID("user")
	u.CreatedAt = time.Now()
	r.db.users[u.ID] = userRow{user: *u, hash: passwordHash}
	return nil
}

func (r users) GetByUsername(_ context.Context, username string) (*models.User, string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, row := range r.db.users {
		if strings.EqualFold(row.user.Username, username) {
			u := row.user
			return &u, row.hash, nil
		}
	}
	return nil, "", nil
}

func (r users) GetByID(_ context.Context, id string) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	row, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	u := row.user
	return &u, nil
}

func (r users) UsernameTaken(ctx context.Context, username string) (bool, error) {
	u, _, err := r.GetByUsername(ctx, username)
	return u != nil, err
}

// ---------------------------------------------------------------------------
// categories

type categories struct{ db *DB }

func (r categories) Create(_ context.Context, name string) (*models.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.FailWrites {
		return nil, errWrite
	}
	for _, c := range r.db.categories {
		if c.Name == name {
			return nil, repository.ErrDuplicate
		}
	}
	c := models.Category{ID: r.db.nextID("cat"), Name: name}
	r.db.categories[c.ID] = c
	return &c, nil
}

func (r categories) Get(_ context.Context, id string) (*models.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r categories) List(_ context.Context) ([]models.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.Category, 0, len(r.db.categories))
	for _, c := range r.db.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r categories) Delete(_ context.Context, id string) ([]string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.categories[id]; !ok {
		return nil, repository.ErrNotFound
	}
	var keys []string
	for rid, req := range r.db.requests {
		if req.CategoryID != id {
			continue
		}
		for _, k := range []string{req.Photo, req.DesignImage} {
			if k != "" {
				keys = append(keys, k)
			}
		}
		delete(r.db.requests, rid)
	}
	delete(r.db.categories, id)
	return keys, nil
}

// ---------------------------------------------------------------------------
// requests

type requests struct{ db *DB }

func (r requests) Create(_ context.Context, req *models.Request) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.FailWrites {
		return errWrite
	}
	if req.CategoryID != "" {
		if _, ok := r.db.categories[req.CategoryID]; !ok {
			return repository.ErrConflict
		}
	}
	req.ID = r.db.nextID("req")
	r.db.requests[req.ID] = *req
	return nil
}

func (r requests) Get(_ context.Context, id string) (*models.Request, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	req, ok := r.db.requests[id]
	if !ok {
		return nil, nil
	}
	req = r.db.withCategory(req)
	return &req, nil
}

func (db *DB) withCategory(req models.Request) models.Request {
	if c, ok := db.categories[req.CategoryID]; ok {
		req.CategoryName = c.Name
	}
	return req
}

func (db *DB) match(f repository.RequestFilter) []models.Request {
	out := []models.Request{}
	for _, req := range db.requests {
		if f.OwnerID != "" && req.OwnerID != f.OwnerID {
			continue
		}
		if f.Status != "" && req.Status != f.Status {
			continue
		}
		out = append(out, db.withCategory(req))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r requests) List(_ context.Context, f repository.RequestFilter) ([]models.Request, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := r.db.match(f)
	if f.Limit > 0 {
		start := min(max(f.Offset, 0), len(out))
		end := min(start+f.Limit, len(out))
		out = out[start:end]
	}
	return out, nil
}

func (r requests) Count(_ context.Context, f repository.RequestFilter) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.match(f)), nil
}

func (r requests) CountByStatus(_ context.Context) (map[models.Status]int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := map[models.Status]int{
		models.StatusNew:        0,
		models.StatusInProgress: 0,
		models.StatusDone:       0,
	}
	for _, req := range r.db.requests {
		out[req.Status]++
	}
	return out, nil
}

func (r requests) RecentlyDone(_ context.Context, limit int) ([]models.Request, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := r.db.match(repository.RequestFilter{Status: models.StatusDone})
	sort.Slice(out, func(i, j int) bool { return out[i].EditDate.After(out[j].EditDate) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r requests) UpdateStatus(_ context.Context, req *models.Request, from models.Status) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.FailWrites {
		return errWrite
	}
	cur, ok := r.db.requests[req.ID]
	if !ok || cur.Status != from {
		return repository.ErrConflict
	}
	cur.Status = req.Status
	cur.Comment = req.Comment
	cur.DesignImage = req.DesignImage
	cur.EditDate = req.EditDate
	r.db.requests[req.ID] = cur
	return nil
}

func (r requests) DeleteNew(_ context.Context, id, ownerID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cur, ok := r.db.requests[id]
	if !ok || cur.OwnerID != ownerID || cur.Status != models.StatusNew {
		return repository.ErrConflict
	}
	delete(r.db.requests, id)
	return nil
}
