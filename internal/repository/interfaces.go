package repository

import (
	"context"

	"design-pro/internal/models"
)

// RequestRepository persists service requests. List results are ordered by
// created_at descending.
type RequestRepository interface {
	Create(ctx context.Context, r *models.Request) error
	Get(ctx context.Context, id string) (*models.Request, error)
	List(ctx context.Context, f RequestFilter) ([]models.Request, error)
	Count(ctx context.Context, f RequestFilter) (int, error)
	CountByStatus(ctx context.Context) (map[models.Status]int, error)
	// RecentlyDone returns done requests, most recently edited first.
	RecentlyDone(ctx context.Context, limit int) ([]models.Request, error)
	// UpdateStatus writes status, comment, design image and edit date, but only
	// while the stored status still equals from. Otherwise ErrConflict.
	UpdateStatus(ctx context.Context, r *models.Request, from models.Status) error
	// DeleteNew removes the request only if it is owned by ownerID and still new.
	// Otherwise ErrConflict.
	DeleteNew(ctx context.Context, id, ownerID string) error
}

type CategoryRepository interface {
	Create(ctx context.Context, name string) (*models.Category, error)
	Get(ctx context.Context, id string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	// Delete removes the category together with every request referencing it
	// and returns the attachment keys of the removed requests.
	Delete(ctx context.Context, id string) ([]string, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User, passwordHash string) error
	GetByUsername(ctx context.Context, username string) (*models.User, string /*passwordHash*/, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// UsernameTaken compares case-insensitively.
	UsernameTaken(ctx context.Context, username string) (bool, error)
}
