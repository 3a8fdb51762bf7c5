package activity

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Store struct {
	db *sql.DB
}

func NewStore(sqldb *sql.DB) *Store {
	return &Store{db: sqldb}
}

func (s *Store) Record(ctx context.Context, taskID, userID int64, action string) error {
	const q = `
		INSERT INTO activity_logs (action, task_id, user_id, timestamp)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := s.db.ExecContext(ctx, q, action, taskID, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

func (s *Store) ListByTask(ctx context.Context, taskID int64) ([]Entry, error) {
	const q = `
		SELECT id, action, task_id, user_id, timestamp
		FROM activity_logs
		WHERE task_id = $1
		ORDER BY timestamp DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, q, taskID)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Action, &e.TaskID, &e.UserID, &e.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
