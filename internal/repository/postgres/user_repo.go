package postgres

import (
	"context"

	"design-pro/internal/models"
	"design-pro/internal/repository"

	"github.com/jackc/pgx/v5"
)

type UserRepo struct{ db DB }

func NewUserRepo(db DB) repository.UserRepository { return &UserRepo{db: db} }

// Create user (stores bcrypt hash in password_h)
func (r *UserRepo) Create(ctx context.Context, u *models.User, passwordHash string) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (username, full_name, email, role, password_h)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at`,
		u.Username, u.FullName, u.Email, string(u.Role), passwordHash).
		Scan(&u.ID, &u.CreatedAt)
	if pgCode(err) == codeUniqueViolation {
		return repository.ErrDuplicate
	}
	return err
}

func scanUser(row pgx.Row, extra ...any) (*models.User, error) {
	var (
		u    models.User
		role string
	)
	dest := append([]any{&u.ID, &u.Username, &u.FullName, &u.Email, &role, &u.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	return &u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, string, error) {
	var ph string
	u, err := scanUser(r.db.QueryRow(ctx, `
		SELECT id, username, full_name, email, role, created_at, password_h
		FROM users WHERE lower(username)=lower($1)`, username), &ph)
	if err != nil {
		if notFound(err) {
			return nil, "", nil
		}
		return nil, "", err
	}
	return u, ph, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `
		SELECT id, username, full_name, email, role, created_at
		FROM users WHERE id=$1`, id))
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE lower(username)=lower($1))`, username).
		Scan(&taken)
	return taken, err
}
