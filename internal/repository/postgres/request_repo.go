package postgres

import (
	"context"
	"strings"

	"design-pro/internal/models"
	"design-pro/internal/repository"

	"github.com/jackc/pgx/v5"
)

type RequestRepo struct{ db DB }

func NewRequestRepo(db DB) *RequestRepo { return &RequestRepo{db: db} }

const requestSelect = `
	SELECT
		r.id, r.title, r.description, COALESCE(r.category_id::text, ''), COALESCE(c.name, ''),
		r.status, r.photo, r.design_image, r.comment, r.owner_id, r.created_at, r.edit_date
	FROM requests r
	LEFT JOIN categories c ON c.id = r.category_id`

func scanRequest(row pgx.Row) (models.Request, error) {
	var (
		r      models.Request
		status string
	)
	err := row.Scan(
		&r.ID, &r.Title, &r.Description, &r.CategoryID, &r.CategoryName,
		&status, &r.Photo, &r.DesignImage, &r.Comment, &r.OwnerID, &r.CreatedAt, &r.EditDate,
	)
	r.Status = models.Status(status)
	return r, err
}

func collectRequests(rows pgx.Rows) ([]models.Request, error) {
	defer rows.Close()
	out := []models.Request{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (r *RequestRepo) Create(ctx context.Context, req *models.Request) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO requests (title, description, category_id, status, photo, owner_id, created_at, edit_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id`,
		req.Title, req.Description, nullIfEmpty(req.CategoryID), string(req.Status), req.Photo,
		req.OwnerID, req.CreatedAt, req.EditDate,
	).Scan(&req.ID)
	if pgCode(err) == codeForeignKeyViolation && pgConstraint(err) == constraintRequestCategory {
		return repository.ErrConflict
	}
	return err
}

func (r *RequestRepo) Get(ctx context.Context, id string) (*models.Request, error) {
	req, err := scanRequest(r.db.QueryRow(ctx, requestSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// List returns requests matching f, newest first.
func (r *RequestRepo) List(ctx context.Context, f repository.RequestFilter) ([]models.Request, error) {
	whereSQL, args := buildRequestWhere(f)
	sql := requestSelect + ` ` + whereSQL + ` ORDER BY r.created_at DESC`
	if f.Limit > 0 {
		offset := f.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, f.Limit, offset)
		sql += ` LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

// Count returns the number of requests for the same filter set (for pagination).
func (r *RequestRepo) Count(ctx context.Context, f repository.RequestFilter) (int, error) {
	whereSQL, args := buildRequestWhere(f)
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM requests r `+whereSQL, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *RequestRepo) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM requests GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[models.Status]int{
		models.StatusNew:        0,
		models.StatusInProgress: 0,
		models.StatusDone:       0,
	}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[models.Status(status)] = n
	}
	return out, rows.Err()
}

func (r *RequestRepo) RecentlyDone(ctx context.Context, limit int) ([]models.Request, error) {
	rows, err := r.db.Query(ctx, requestSelect+`
		WHERE r.status = $1
		ORDER BY r.edit_date DESC
		LIMIT $2`, string(models.StatusDone), limit)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

func (r *RequestRepo) UpdateStatus(ctx context.Context, req *models.Request, from models.Status) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE requests SET
			status=$1, comment=$2, design_image=$3, edit_date=$4
		WHERE id=$5 AND status=$6
	`, string(req.Status), req.Comment, req.DesignImage, req.EditDate, req.ID, string(from))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrConflict
	}
	return nil
}

func (r *RequestRepo) DeleteNew(ctx context.Context, id, ownerID string) error {
	ct, err := r.db.Exec(ctx, `
		DELETE FROM requests
		WHERE id=$1 AND owner_id=$2 AND status=$3
	`, id, ownerID, string(models.StatusNew))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrConflict
	}
	return nil
}

// buildRequestWhere composes WHERE clause and args for the filter (with aliases).
func buildRequestWhere(f repository.RequestFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if s := strings.TrimSpace(f.OwnerID); s != "" {
		args = append(args, s)
		clauses = append(clauses, "r.owner_id = $"+itoa(len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		clauses = append(clauses, "r.status = $"+itoa(len(args)))
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}
