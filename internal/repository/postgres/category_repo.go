package postgres

import (
	"context"

	"design-pro/internal/models"
	"design-pro/internal/repository"

	"github.com/jackc/pgx/v5"
)

type CategoryRepo struct{ db DB }

func NewCategoryRepo(db DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) Create(ctx context.Context, name string) (*models.Category, error) {
	c := models.Category{Name: name}
	err := r.db.QueryRow(ctx, `INSERT INTO categories (name) VALUES ($1) RETURNING id`, name).Scan(&c.ID)
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	err := r.db.QueryRow(ctx, `SELECT id, name FROM categories WHERE id=$1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes the category's requests and then the category in one
// transaction. The schema also cascades; doing it here lets the caller
// clean up the attachments of the removed requests.
func (r *CategoryRepo) Delete(ctx context.Context, id string) ([]string, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}

	keys, err := deleteCategoryRequests(ctx, tx, id)
	if err != nil {
		_ = tx.Rollback(ctx)
		if pgCode(err) == codeInvalidText {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	ct, err := tx.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		_ = tx.Rollback(ctx)
		return nil, repository.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return keys, nil
}

func deleteCategoryRequests(ctx context.Context, tx pgx.Tx, categoryID string) ([]string, error) {
	rows, err := tx.Query(ctx, `
		DELETE FROM requests
		WHERE category_id=$1
		RETURNING photo, design_image
	`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var photo, design string
		if err := rows.Scan(&photo, &design); err != nil {
			return nil, err
		}
		for _, k := range []string{photo, design} {
			if k != "" {
				keys = append(keys, k)
			}
		}
	}
	return keys, rows.Err()
}
