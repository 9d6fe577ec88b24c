package postgres

import (
	"context"
	"database/sql"

	"pdfchat/internal/model"
	"pdfchat/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

// Create inserts a user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, username, email, password_hash, created_at
	`
	row := r.db.QueryRowContext(ctx, q, u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	var out model.User
	if err := row.Scan(&out.ID, &out.Username, &out.Email, &out.PasswordHash, &out.CreatedAt); err != nil {
		return nil, mapError(err)
	}
	return &out, nil
}

// FindByUsername fetches a single user by username.
func (r *UserPostgres) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE username = $1
	`
	var u model.User
	if err := r.db.QueryRowContext(ctx, q, username).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// ExistsByUsernameOrEmail reports whether the username or email is already registered.
func (r *UserPostgres) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, username, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// List returns every user, newest first. Password hashes are not selected.
func (r *UserPostgres) List(ctx context.Context) ([]model.User, error) {
	const q = `
		SELECT id, username, email, created_at
		FROM users
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
