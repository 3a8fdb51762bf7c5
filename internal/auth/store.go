package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taskhub/internal/apperr"
	"taskhub/internal/db"
)

var (
	ErrUserNotFound   = apperr.NotFound("user_not_found", "user not found")
	ErrDuplicateEmail = apperr.Conflict("duplicate_email", "email already registered")
)

type Store struct {
	db *sql.DB
}

func NewStore(sqldb *sql.DB) *Store {
	return &Store{db: sqldb}
}

const userColumns = `id, email, full_name, COALESCE(password_hash, ''), COALESCE(external_id, ''), role, active, created_at`

func scanUser(row *sql.Row) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.ExternalID, &u.Role, &u.Active, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(s.db.QueryRowContext(ctx, q, email))
}

func (s *Store) GetByID(ctx context.Context, id int64) (*User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.db.QueryRowContext(ctx, q, id))
}

// Create inserts a new user. The unique index on email is the arbiter for
// concurrent registrations; the loser of the race gets ErrDuplicateEmail.
func (s *Store) Create(ctx context.Context, u *User) (*User, error) {
	const q = `
		INSERT INTO users (email, full_name, password_hash, external_id, role, active, created_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7)
		RETURNING ` + userColumns
	row := s.db.QueryRowContext(ctx, q,
		u.Email, u.FullName, u.PasswordHash, u.ExternalID, u.Role, u.Active, time.Now().UTC())
	created, err := scanUser(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return created, nil
}

func (s *Store) Update(ctx context.Context, u *User) (*User, error) {
	const q = `
		UPDATE users
		SET email = $2, full_name = $3, role = $4, active = $5
		WHERE id = $1
		RETURNING ` + userColumns
	updated, err := scanUser(s.db.QueryRowContext(ctx, q, u.ID, u.Email, u.FullName, u.Role, u.Active))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return updated, nil
}

// LinkExternalID attaches a federated identity to an existing user. No-op if
// the user already carries one.
func (s *Store) LinkExternalID(ctx context.Context, id int64, externalID string) error {
	const q = `UPDATE users SET external_id = $2 WHERE id = $1 AND external_id IS NULL`
	_, err := s.db.ExecContext(ctx, q, id, externalID)
	return err
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]User, error) {
	const q = `SELECT ` + userColumns + ` FROM users ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.ExternalID, &u.Role, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
