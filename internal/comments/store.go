package comments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskhub/internal/apperr"
	"taskhub/internal/db"
)

var (
	ErrCommentNotFound = apperr.NotFound("comment_not_found", "comment not found")
	ErrInvalidTask     = apperr.Validation("invalid_task", "task does not exist")
)

type Store struct {
	db *sql.DB
}

func NewStore(sqldb *sql.DB) *Store {
	return &Store{db: sqldb}
}

func (s *Store) Create(ctx context.Context, c *Comment) (*Comment, error) {
	const q = `
		INSERT INTO comments (content, task_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, content, task_id, user_id, created_at
	`
	created := &Comment{}
	err := s.db.QueryRowContext(ctx, q, c.Content, c.TaskID, c.UserID, time.Now().UTC()).
		Scan(&created.ID, &created.Content, &created.TaskID, &created.UserID, &created.CreatedAt)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrInvalidTask
		}
		return nil, err
	}
	return created, nil
}

func (s *Store) Get(ctx context.Context, id int64) (*Comment, error) {
	const q = `SELECT id, content, task_id, user_id, created_at FROM comments WHERE id = $1`
	c := &Comment{}
	err := s.db.QueryRowContext(ctx, q, id).
		Scan(&c.ID, &c.Content, &c.TaskID, &c.UserID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *Store) ListByTask(ctx context.Context, taskID int64) ([]Comment, error) {
	const q = `
		SELECT id, content, task_id, user_id, created_at
		FROM comments WHERE task_id = $1 ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, q, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.Content, &c.TaskID, &c.UserID, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCommentNotFound
	}
	return nil
}
