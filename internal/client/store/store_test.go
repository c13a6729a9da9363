package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_RunsMigrations(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	for _, table := range []string{"sessions", "attendance", "leave_requests", "leave_tombstones", "local_accounts"} {
		var name string
		err := s.Conn().QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestOpen_RepositoriesUsable(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, err := s.Sessions.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	recs, err := s.Attendance.SelectPendingOrFailed(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
