package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"design-pro/internal/models"
	"design-pro/internal/repository"
	"design-pro/internal/storage"

	"github.com/rs/zerolog"
)

const maxCategoryNameLen = 100

type CategoryService struct {
	categories repository.CategoryRepository
	store      storage.Store
	log        zerolog.Logger
}

func NewCategoryService(categories repository.CategoryRepository, store storage.Store, log zerolog.Logger) *CategoryService {
	return &CategoryService{categories: categories, store: store, log: log}
}

func (s *CategoryService) Create(ctx context.Context, actor models.Identity, name string) (*models.Category, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return nil, invalid("name", "name is required")
	case utf8.RuneCountInString(name) > maxCategoryNameLen:
		return nil, invalid("name", fmt.Sprintf("name must be at most %d characters", maxCategoryNameLen))
	}

	c, err := s.categories.Create(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, invalid("name", "category already exists")
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.log.Info().Str("category_id", c.ID).Str("name", c.Name).Msg("category created")
	return c, nil
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	items, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return items, nil
}

// Delete removes the category and every request filed under it.
func (s *CategoryService) Delete(ctx context.Context, actor models.Identity, id string) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	keys, err := s.categories.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete category: %w", err)
	}
	discardAttachments(ctx, s.store, s.log, keys...)

	s.log.Info().Str("category_id", id).Int("attachments", len(keys)).Msg("category deleted")
	return nil
}
