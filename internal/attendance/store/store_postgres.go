package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"davomat/internal/attendance"
	"davomat/pkg/localdate"
	"davomat/pkg/platform/sentinel"
)

// Postgres persists attendance records in the attendance_logs table. The
// ON CONFLICT upsert is the concurrency story: racing writers for the same
// (class, date) key resolve to last-write-wins inside the database.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Upsert(ctx context.Context, rec attendance.Record) error {
	names, err := json.Marshal(rec.PresentNames)
	if err != nil {
		return fmt.Errorf("marshal student names: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO attendance_logs (class_name, date, total_students, present_count, student_names, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (class_name, date) DO UPDATE SET
			total_students = EXCLUDED.total_students,
			present_count  = EXCLUDED.present_count,
			student_names  = EXCLUDED.student_names,
			updated_at     = EXCLUDED.updated_at`,
		rec.ClassName, rec.Date.Time(time.UTC), rec.TotalCount, rec.PresentCount, names, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert attendance %s/%s: %w", rec.ClassName, rec.Date, err)
	}
	return nil
}

func (s *Postgres) Find(ctx context.Context, className string, date localdate.Date) (attendance.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT class_name, date, total_students, present_count, student_names, updated_at
		FROM attendance_logs
		WHERE class_name = $1 AND date = $2`,
		className, date.Time(time.UTC))

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return attendance.Record{}, sentinel.ErrNotFound
		}
		return attendance.Record{}, fmt.Errorf("find attendance %s/%s: %w", className, date, err)
	}
	return rec, nil
}

func (s *Postgres) ListByDate(ctx context.Context, date localdate.Date) ([]attendance.Record, error) {
	return s.list(ctx, `
		SELECT class_name, date, total_students, present_count, student_names, updated_at
		FROM attendance_logs
		WHERE date = $1`,
		date.Time(time.UTC))
}

func (s *Postgres) ListByRange(ctx context.Context, start, end localdate.Date) ([]attendance.Record, error) {
	return s.list(ctx, `
		SELECT class_name, date, total_students, present_count, student_names, updated_at
		FROM attendance_logs
		WHERE date >= $1 AND date <= $2
		ORDER BY date`,
		start.Time(time.UTC), end.Time(time.UTC))
}

func (s *Postgres) DeleteByDate(ctx context.Context, date localdate.Date) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM attendance_logs WHERE date = $1`, date.Time(time.UTC)); err != nil {
		return fmt.Errorf("delete attendance for %s: %w", date, err)
	}
	return nil
}

func (s *Postgres) list(ctx context.Context, query string, args ...any) ([]attendance.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var out []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (attendance.Record, error) {
	var (
		rec   attendance.Record
		date  time.Time
		names []byte
	)
	if err := row.Scan(&rec.ClassName, &date, &rec.TotalCount, &rec.PresentCount, &names, &rec.UpdatedAt); err != nil {
		return attendance.Record{}, err
	}
	rec.Date = localdate.FromTime(date, time.UTC)
	if len(names) > 0 {
		if err := json.Unmarshal(names, &rec.PresentNames); err != nil {
			return attendance.Record{}, fmt.Errorf("unmarshal student names: %w", err)
		}
	}
	return rec, nil
}
