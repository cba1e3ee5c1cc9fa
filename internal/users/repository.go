package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/propfind/propfind/internal/auth"
	"github.com/propfind/propfind/internal/shared"
)

// ProfileUpdate carries the editable profile fields. The password is not
// among them; this module never touches credentials.
type ProfileUpdate struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Repository defines persistence operations for the users module.
type Repository interface {
	Get(ctx context.Context, id int64) (auth.Profile, error)
	UpdateProfile(ctx context.Context, id int64, p ProfileUpdate) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Get fetches a profile by user id.
func (r *PGRepository) Get(ctx context.Context, id int64) (auth.Profile, error) {
	const query = `
		SELECT id, first_name, last_name, email, phone
		FROM users
		WHERE id = $1`

	var p auth.Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Profile{}, shared.ErrNotFound
		}
		return auth.Profile{}, err
	}
	return p, nil
}

// UpdateProfile writes the editable fields in one statement. The unique index
// on LOWER(email) rejects an email held by another account, with no gap
// between check and write.
func (r *PGRepository) UpdateProfile(ctx context.Context, id int64, p ProfileUpdate) error {
	const query = `
		UPDATE users
		SET first_name = $1, last_name = $2, email = $3, phone = $4, updated_at = now()
		WHERE id = $5`

	tag, err := r.pool.Exec(ctx, query, p.FirstName, p.LastName, p.Email, p.Phone, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrDuplicateEmail
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
