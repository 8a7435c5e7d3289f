// Package store persists attendance records keyed by (class, date).
package store

import (
	"context"

	"davomat/internal/attendance"
	"davomat/pkg/localdate"
)

// Store is the attendance accessor contract. Implementations must treat
// Upsert as the serialization point: the whole record is written atomically
// under its (class, date) key and the last write wins.
type Store interface {
	// Upsert creates or fully overwrites the record for its (class, date) key.
	Upsert(ctx context.Context, rec attendance.Record) error
	// Find returns the record for the key, or sentinel.ErrNotFound.
	Find(ctx context.Context, className string, date localdate.Date) (attendance.Record, error)
	// ListByDate returns all records for one date, in unspecified order.
	ListByDate(ctx context.Context, date localdate.Date) ([]attendance.Record, error)
	// ListByRange returns all records with start <= date <= end, in
	// unspecified order.
	ListByRange(ctx context.Context, start, end localdate.Date) ([]attendance.Record, error)
	// DeleteByDate removes every record for the date (administrative purge).
	DeleteByDate(ctx context.Context, date localdate.Date) error
}
