package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avoronov/authgate/internal/apperrors"
	"github.com/avoronov/authgate/internal/models"
	"github.com/avoronov/authgate/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

const createUser = `-- name: CreateUser
INSERT INTO users (id, email, password_hash, refresh_hash)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at, email, password_hash, refresh_hash
`

// Create the account with its hashes in a single insert
// A failed signup must not leave a row behind, so there is no follow-up write
func (r *UserRepo) CreateUser(ctx context.Context, arg repository.CreateUserParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser, arg.ID, arg.Email, arg.HashedPassword, arg.HashedRefresh)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrUserAlreadyExists
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT id, created_at, email, password_hash, refresh_hash
FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, userID)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT id, created_at, email, password_hash, refresh_hash
FROM users
WHERE email = $1
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const setRefreshHash = `-- name: SetRefreshHash
UPDATE users
SET refresh_hash = $2
WHERE id = $1
`

// Overwrite refresh hash unconditionally, nil clears it
// Zero updated rows is not an error: logout has to be safe to call for any id
func (r *UserRepo) SetRefreshHash(ctx context.Context, userID uuid.UUID, hash *string) error {
	_, err := r.DB.Exec(ctx, setRefreshHash, userID, hash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const swapRefreshHash = `-- name: SwapRefreshHash
UPDATE users
SET refresh_hash = $3
WHERE id = $1 AND refresh_hash = $2
RETURNING id
`

// Compare-and-set on the refresh hash
// The WHERE clause makes concurrent rotations with the same stale hash race on the row:
// the loser matches zero rows and gets ErrRefreshMismatch
func (r *UserRepo) SwapRefreshHash(ctx context.Context, userID uuid.UUID, oldHash string, newHash string) error {
	rows, _ := r.DB.Query(ctx, swapRefreshHash, userID, oldHash, newHash)
	_, err := pgx.CollectOneRow(rows, pgx.RowTo[uuid.UUID])

	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.ErrRefreshMismatch
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Email, &u.HashedPassword, &u.HashedRefresh)
	return u, err
}
