package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskhub/internal/apperr"
	"taskhub/internal/db"
)

var (
	ErrProjectNotFound = apperr.NotFound("project_not_found", "project not found")
	ErrInvalidOwner    = apperr.Validation("invalid_owner", "project owner does not exist")
)

type Store struct {
	db *sql.DB
}

func NewStore(sqldb *sql.DB) *Store {
	return &Store{db: sqldb}
}

func (s *Store) Create(ctx context.Context, p *Project) (*Project, error) {
	const q = `
		INSERT INTO projects (name, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, COALESCE(description, ''), owner_id
	`
	created := &Project{}
	err := s.db.QueryRowContext(ctx, q, p.Name, p.Description, p.OwnerID).
		Scan(&created.ID, &created.Name, &created.Description, &created.OwnerID)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrInvalidOwner
		}
		return nil, err
	}
	return created, nil
}

func (s *Store) Get(ctx context.Context, id int64) (*Project, error) {
	const q = `SELECT id, name, COALESCE(description, ''), owner_id FROM projects WHERE id = $1`
	p := &Project{}
	err := s.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *Store) Update(ctx context.Context, p *Project) (*Project, error) {
	const q = `
		UPDATE projects SET name = $2, description = $3
		WHERE id = $1
		RETURNING id, name, COALESCE(description, ''), owner_id
	`
	updated := &Project{}
	err := s.db.QueryRowContext(ctx, q, p.ID, p.Name, p.Description).
		Scan(&updated.ID, &updated.Name, &updated.Description, &updated.OwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProjectNotFound
	}
	return nil
}

type ListFilter struct {
	OwnerID int64
}

func (s *Store) List(ctx context.Context, flt ListFilter) ([]Project, error) {
	q := `SELECT id, name, COALESCE(description, ''), owner_id FROM projects`
	var args []interface{}
	if flt.OwnerID != 0 {
		q += ` WHERE owner_id = $1`
		args = append(args, flt.OwnerID)
	}
	q += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
