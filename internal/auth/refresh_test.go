package auth_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sanandreas/govportal/internal/auth"
	"github.com/sanandreas/govportal/internal/db"
	"github.com/sanandreas/govportal/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gdb))
	return gdb
}

func TestRefreshToken_IssueAndRotate(t *testing.T) {
	gdb := newTestDB(t)
	store := auth.NewRefreshStore(gdb, time.Hour)
	ctx := context.Background()

	raw, err := store.IssueRefreshToken(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	// Plaintext is never stored.
	var count int64
	gdb.Model(&model.RefreshToken{}).Where("token_hash = ?", raw).Count(&count)
	assert.Zero(t, count)

	newRaw, userID, err := store.RotateRefreshToken(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.NotEqual(t, raw, newRaw)

	// The rotated-out token is spent.
	_, _, err = store.RotateRefreshToken(ctx, raw)
	require.Error(t, err)
}

func TestRefreshToken_RevokeBlocksRotation(t *testing.T) {
	gdb := newTestDB(t)
	store := auth.NewRefreshStore(gdb, time.Hour)
	ctx := context.Background()

	raw, err := store.IssueRefreshToken(ctx, "user-1")
	require.NoError(t, err)
	require.NoError(t, store.RevokeRefreshToken(ctx, raw))

	_, _, err = store.RotateRefreshToken(ctx, raw)
	require.Error(t, err)
}

func TestRefreshToken_ExpiredRejected(t *testing.T) {
	gdb := newTestDB(t)
	store := auth.NewRefreshStore(gdb, -time.Minute) // already expired on issue
	ctx := context.Background()

	raw, err := store.IssueRefreshToken(ctx, "user-1")
	require.NoError(t, err)

	_, _, err = store.RotateRefreshToken(ctx, raw)
	require.Error(t, err)
}

func TestRefreshToken_PurgeExpired(t *testing.T) {
	gdb := newTestDB(t)
	ctx := context.Background()

	expired := auth.NewRefreshStore(gdb, -time.Hour)
	live := auth.NewRefreshStore(gdb, time.Hour)

	_, err := expired.IssueRefreshToken(ctx, "user-1")
	require.NoError(t, err)
	_, err = live.IssueRefreshToken(ctx, "user-1")
	require.NoError(t, err)

	n, err := live.PurgeExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var count int64
	gdb.Model(&model.RefreshToken{}).Count(&count)
	assert.EqualValues(t, 1, count)
}
