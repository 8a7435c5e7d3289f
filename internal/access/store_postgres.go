package access

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"davomat/pkg/platform/sentinel"
)

// Postgres persists authorization state in the authorized_users and
// pending_user_requests tables.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) IsAuthorized(ctx context.Context, userID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM authorized_users
		WHERE user_id = $1 AND status = $2`,
		userID, RecipientActive).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check authorization for %d: %w", userID, err)
	}
	return true, nil
}

func (s *Postgres) AddRecipient(ctx context.Context, r Recipient) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO authorized_users (user_id, username, chat_id, status, authorized_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			username      = EXCLUDED.username,
			chat_id       = EXCLUDED.chat_id,
			status        = EXCLUDED.status,
			authorized_by = EXCLUDED.authorized_by`,
		r.UserID, nullString(r.Username), r.ChatID, r.Status, r.AuthorizedBy, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("add recipient %d: %w", r.UserID, err)
	}
	return nil
}

func (s *Postgres) ActiveRecipients(ctx context.Context) ([]Recipient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, COALESCE(username, ''), chat_id, status, COALESCE(authorized_by, 0), created_at
		FROM authorized_users
		WHERE status = $1
		ORDER BY user_id`, RecipientActive)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	defer rows.Close()

	var out []Recipient
	for rows.Next() {
		var r Recipient
		if err := rows.Scan(&r.UserID, &r.Username, &r.ChatID, &r.Status, &r.AuthorizedBy, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	return out, nil
}

func (s *Postgres) Deactivate(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE authorized_users
		SET status = $1
		WHERE user_id = $2 AND status = $3`,
		RecipientInactive, userID, RecipientActive)
	if err != nil {
		return fmt.Errorf("deactivate recipient %d: %w", userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate recipient %d: %w", userID, err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindPending(ctx context.Context, userID int64) (Request, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, COALESCE(username, ''), chat_id, status, requested_at
		FROM pending_user_requests
		WHERE user_id = $1 AND status = $2`,
		userID, RequestPending)
	return scanRequest(row)
}

func (s *Postgres) CreateRequest(ctx context.Context, r Request) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_user_requests (id, user_id, username, chat_id, status, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.UserID, nullString(r.Username), r.ChatID, r.Status, r.RequestedAt)
	if err != nil {
		return fmt.Errorf("create access request for %d: %w", r.UserID, err)
	}
	return nil
}

func (s *Postgres) ResolvePending(ctx context.Context, userID int64, status RequestStatus) (Request, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE pending_user_requests
		SET status = $1
		WHERE user_id = $2 AND status = $3
		RETURNING id, user_id, COALESCE(username, ''), chat_id, status, requested_at`,
		status, userID, RequestPending)
	return scanRequest(row)
}

func (s *Postgres) ListPending(ctx context.Context) ([]Request, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, COALESCE(username, ''), chat_id, status, requested_at
		FROM pending_user_requests
		WHERE status = $1
		ORDER BY requested_at DESC`, RequestPending)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (Request, error) {
	var r Request
	err := row.Scan(&r.ID, &r.UserID, &r.Username, &r.ChatID, &r.Status, &r.RequestedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Request{}, sentinel.ErrNotFound
		}
		return Request{}, fmt.Errorf("scan access request: %w", err)
	}
	return r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
