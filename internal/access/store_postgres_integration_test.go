//go:build integration

package access_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"davomat/internal/access"
	"davomat/pkg/platform/sentinel"
	"davomat/pkg/testutil/containers"
)

type PostgresAccessSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *access.Postgres
}

func TestPostgresAccessSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresAccessSuite))
}

func (s *PostgresAccessSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = access.NewPostgres(s.postgres.DB)
}

func (s *PostgresAccessSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(),
		"authorized_users", "pending_user_requests"))
}

func newRequest(userID int64) access.Request {
	return access.Request{
		ID:          uuid.New(),
		UserID:      userID,
		Username:    "teacher_a",
		ChatID:      500,
		Status:      access.RequestPending,
		RequestedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresAccessSuite) TestRequestLifecycle() {
	ctx := context.Background()

	s.Require().NoError(s.store.CreateRequest(ctx, newRequest(42)))

	pending, err := s.store.FindPending(ctx, 42)
	s.Require().NoError(err)
	s.Equal(int64(500), pending.ChatID)

	resolved, err := s.store.ResolvePending(ctx, 42, access.RequestApproved)
	s.Require().NoError(err)
	s.Equal(access.RequestApproved, resolved.Status)

	_, err = s.store.FindPending(ctx, 42)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.ResolvePending(ctx, 42, access.RequestRejected)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresAccessSuite) TestRecipients() {
	ctx := context.Background()

	authorized, err := s.store.IsAuthorized(ctx, 42)
	s.Require().NoError(err)
	s.False(authorized)

	s.Require().NoError(s.store.AddRecipient(ctx, access.Recipient{
		UserID:       42,
		Username:     "teacher_a",
		ChatID:       500,
		Status:       access.RecipientActive,
		AuthorizedBy: 1,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}))

	authorized, err = s.store.IsAuthorized(ctx, 42)
	s.Require().NoError(err)
	s.True(authorized)

	recipients, err := s.store.ActiveRecipients(ctx)
	s.Require().NoError(err)
	s.Require().Len(recipients, 1)
	s.Equal(int64(500), recipients[0].ChatID)
}

func (s *PostgresAccessSuite) TestInactiveRecipientExcluded() {
	ctx := context.Background()

	s.Require().NoError(s.store.AddRecipient(ctx, access.Recipient{
		UserID:    42,
		ChatID:    500,
		Status:    access.RecipientInactive,
		CreatedAt: time.Now().UTC(),
	}))

	authorized, err := s.store.IsAuthorized(ctx, 42)
	s.Require().NoError(err)
	s.False(authorized)

	recipients, err := s.store.ActiveRecipients(ctx)
	s.Require().NoError(err)
	s.Empty(recipients)
}

func (s *PostgresAccessSuite) TestDeactivate() {
	ctx := context.Background()

	s.Require().ErrorIs(s.store.Deactivate(ctx, 42), sentinel.ErrNotFound)

	s.Require().NoError(s.store.AddRecipient(ctx, access.Recipient{
		UserID:    42,
		ChatID:    500,
		Status:    access.RecipientActive,
		CreatedAt: time.Now().UTC(),
	}))
	s.Require().NoError(s.store.Deactivate(ctx, 42))

	authorized, err := s.store.IsAuthorized(ctx, 42)
	s.Require().NoError(err)
	s.False(authorized)

	s.Require().ErrorIs(s.store.Deactivate(ctx, 42), sentinel.ErrNotFound)
}

func (s *PostgresAccessSuite) TestListPendingNewestFirst() {
	ctx := context.Background()

	older := newRequest(42)
	older.RequestedAt = older.RequestedAt.Add(-time.Hour)
	newer := newRequest(43)

	s.Require().NoError(s.store.CreateRequest(ctx, older))
	s.Require().NoError(s.store.CreateRequest(ctx, newer))

	pending, err := s.store.ListPending(ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal(int64(43), pending[0].UserID)
	s.Equal(int64(42), pending[1].UserID)
}
