package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportChatBinding(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemory())

	id, err := svc.ReportChatID(ctx)
	require.NoError(t, err)
	assert.Zero(t, id, "unbound chat reads as zero")

	require.NoError(t, svc.BindReportChat(ctx, -1001234567890))

	id, err = svc.ReportChatID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(-1001234567890), id)
}

func TestReportChatRebind(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewInMemory())

	require.NoError(t, svc.BindReportChat(ctx, 100))
	require.NoError(t, svc.BindReportChat(ctx, 200))

	id, err := svc.ReportChatID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(200), id)
}
