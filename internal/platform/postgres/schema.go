package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the full logical layout: one attendance table keyed by
// (class_name, date), a roster table keyed by class_name, a longitudinal
// student-name table, the authorization tables, and a key-value settings
// table for the report chat binding.
const Schema = `
CREATE TABLE IF NOT EXISTS attendance_logs (
    class_name     TEXT        NOT NULL,
    date           DATE        NOT NULL,
    total_students INTEGER     NOT NULL DEFAULT 0,
    present_count  INTEGER     NOT NULL DEFAULT 0,
    student_names  JSONB       NOT NULL DEFAULT '[]'::jsonb,
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (class_name, date)
);

CREATE TABLE IF NOT EXISTS classes (
    class_name     TEXT    PRIMARY KEY,
    total_students INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS students (
    class_name   TEXT NOT NULL,
    student_name TEXT NOT NULL,
    source       TEXT NOT NULL DEFAULT 'attendance_message',
    PRIMARY KEY (class_name, student_name)
);

CREATE TABLE IF NOT EXISTS authorized_users (
    user_id       BIGINT      PRIMARY KEY,
    username      TEXT,
    chat_id       BIGINT      NOT NULL,
    status        TEXT        NOT NULL DEFAULT 'active',
    authorized_by BIGINT,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS pending_user_requests (
    id           UUID        PRIMARY KEY,
    user_id      BIGINT      NOT NULL,
    username     TEXT,
    chat_id      BIGINT      NOT NULL,
    status       TEXT        NOT NULL DEFAULT 'pending',
    requested_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_pending_requests_user
    ON pending_user_requests (user_id, status);

CREATE TABLE IF NOT EXISTS bot_settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// Bootstrap applies the schema. Statements are idempotent, so running at every
// boot is safe; there is no separate migration tool for this deployment.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}
	return nil
}
