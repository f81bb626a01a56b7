package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/project-management-api/internal/domain/entity"
	"github.com/oksasatya/project-management-api/internal/domain/repository"
)

const userColumns = `id::text, first_name, last_name, email, password_hash, avatar, role, department,
	phone, bio, skills, is_active, is_email_verified, last_login, preferences, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var role string
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Password, &u.Avatar, &role, &u.Department,
		&u.Phone, &u.Bio, &u.Skills, &u.IsActive, &u.IsEmailVerified, &u.LastLogin, &u.Preferences,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	u.Role = entity.Role(role)
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.Skills == nil {
		u.Skills = []string{}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (first_name, last_name, email, password_hash, avatar, role, department, phone, bio,
			skills, is_active, is_email_verified, preferences)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id::text, created_at, updated_at
	`, u.FirstName, u.LastName, u.Email, u.Password, u.Avatar, string(u.Role), u.Department, u.Phone, u.Bio,
		u.Skills, u.IsActive, u.IsEmailVerified, u.Preferences)

	return mapErr(row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	uid, ok := parseID(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, uid))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	uid, ok := parseID(u.ID)
	if !ok {
		return repository.ErrNotFound
	}
	if u.Skills == nil {
		u.Skills = []string{}
	}
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET first_name = $1, last_name = $2, email = $3, password_hash = $4, avatar = $5, role = $6,
			department = $7, phone = $8, bio = $9, skills = $10, is_active = $11, is_email_verified = $12,
			preferences = $13, updated_at = $14
		WHERE id = $15
	`, u.FirstName, u.LastName, u.Email, u.Password, u.Avatar, string(u.Role), u.Department, u.Phone, u.Bio,
		u.Skills, u.IsActive, u.IsEmailVerified, u.Preferences, u.UpdatedAt, uid)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	uid, ok := parseID(id)
	if !ok {
		return repository.ErrNotFound
	}
	res, err := r.pool.Exec(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, uid)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, email LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]*entity.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, mapErr(rows.Err())
}

var _ repository.UserRepository = (*UserRepository)(nil)
