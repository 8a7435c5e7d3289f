package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"davomat/pkg/platform/sentinel"
)

// Postgres persists roster data in the classes and students tables.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) TotalStudents(ctx context.Context, className string) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT total_students FROM classes WHERE class_name = $1`, className).Scan(&total)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("roster total for %s: %w", className, err)
	}
	return total, nil
}

func (s *Postgres) SetTotalStudents(ctx context.Context, className string, total int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO classes (class_name, total_students)
		VALUES ($1, $2)
		ON CONFLICT (class_name) DO UPDATE SET total_students = EXCLUDED.total_students`,
		className, total)
	if err != nil {
		return fmt.Errorf("set roster total for %s: %w", className, err)
	}
	return nil
}

func (s *Postgres) RecordStudent(ctx context.Context, className, studentName string) error {
	studentName = strings.TrimSpace(studentName)
	if studentName == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO students (class_name, student_name)
		VALUES ($1, $2)
		ON CONFLICT (class_name, student_name) DO NOTHING`,
		className, studentName)
	if err != nil {
		return fmt.Errorf("record student %s/%s: %w", className, studentName, err)
	}
	return nil
}

func (s *Postgres) ListStudents(ctx context.Context, className string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT student_name FROM students
		WHERE class_name = $1
		ORDER BY student_name`, className)
	if err != nil {
		return nil, fmt.Errorf("list students for %s: %w", className, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list students for %s: %w", className, err)
	}
	return names, nil
}
