package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskhub/internal/apperr"
)

var (
	ErrTaskNotFound    = apperr.NotFound("task_not_found", "task not found")
	ErrProjectNotFound = apperr.NotFound("project_not_found", "project not found")
)

type Store struct {
	db *sql.DB
}

func NewStore(sqldb *sql.DB) *Store {
	return &Store{db: sqldb}
}

const taskColumns = `t.id, t.title, COALESCE(t.description, ''), t.status, t.project_id, COALESCE(t.assignee_id, 0)`

func (s *Store) Create(ctx context.Context, t *Task) (*Task, error) {
	const q = `
		INSERT INTO tasks (title, description, status, project_id, assignee_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, 0))
		RETURNING id, title, COALESCE(description, ''), status, project_id, COALESCE(assignee_id, 0)
	`
	created := &Task{}
	err := s.db.QueryRowContext(ctx, q, t.Title, t.Description, t.Status, t.ProjectID, t.AssigneeID).
		Scan(&created.ID, &created.Title, &created.Description, &created.Status, &created.ProjectID, &created.AssigneeID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get returns a task together with the id of the principal owning its
// project, which every ownership rule on tasks keys off.
func (s *Store) Get(ctx context.Context, id int64) (*Task, int64, error) {
	const q = `
		SELECT ` + taskColumns + `, p.owner_id
		FROM tasks t
		JOIN projects p ON p.id = t.project_id
		WHERE t.id = $1
	`
	t := &Task{}
	var projectOwner int64
	err := s.db.QueryRowContext(ctx, q, id).
		Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.ProjectID, &t.AssigneeID, &projectOwner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrTaskNotFound
		}
		return nil, 0, err
	}
	return t, projectOwner, nil
}

func (s *Store) Update(ctx context.Context, t *Task) (*Task, error) {
	const q = `
		UPDATE tasks
		SET title = $2, description = $3, status = $4, assignee_id = NULLIF($5, 0)
		WHERE id = $1
		RETURNING id, title, COALESCE(description, ''), status, project_id, COALESCE(assignee_id, 0)
	`
	updated := &Task{}
	err := s.db.QueryRowContext(ctx, q, t.ID, t.Title, t.Description, t.Status, t.AssigneeID).
		Scan(&updated.ID, &updated.Title, &updated.Description, &updated.Status, &updated.ProjectID, &updated.AssigneeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// ProjectOwner resolves the owner of a project before a task exists in it.
func (s *Store) ProjectOwner(ctx context.Context, projectID int64) (int64, error) {
	var ownerID int64
	err := s.db.QueryRowContext(ctx, `SELECT owner_id FROM projects WHERE id = $1`, projectID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrProjectNotFound
		}
		return 0, err
	}
	return ownerID, nil
}

type ListFilter struct {
	ProjectID      int64
	AssigneeID     int64
	ProjectOwnerID int64
}

func (s *Store) List(ctx context.Context, flt ListFilter) ([]Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks t JOIN projects p ON p.id = t.project_id`
	var conds []string
	var args []interface{}
	add := func(cond string, val interface{}) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if flt.ProjectID != 0 {
		add("t.project_id = $%d", flt.ProjectID)
	}
	if flt.AssigneeID != 0 {
		add("t.assignee_id = $%d", flt.AssigneeID)
	}
	if flt.ProjectOwnerID != 0 {
		add("p.owner_id = $%d", flt.ProjectOwnerID)
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += " ORDER BY t.id"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.ProjectID, &t.AssigneeID); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
