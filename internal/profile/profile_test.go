package profile_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sanandreas/govportal/internal/db"
	"github.com/sanandreas/govportal/internal/model"
	"github.com/sanandreas/govportal/internal/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gdb))
	return gdb
}

func strPtr(s string) *string { return &s }

func TestGetOrCreate_CreatesLazily(t *testing.T) {
	gdb := newTestDB(t)
	svc := profile.NewService(gdb)

	u, err := svc.GetOrCreate(context.Background(), "user-1", "cit@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)
	assert.Equal(t, "cit@example.com", u.Email)
	assert.Empty(t, u.Roles)

	// Second call returns the same row.
	again, err := svc.GetOrCreate(context.Background(), "user-1", "cit@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	var count int64
	require.NoError(t, gdb.Model(&model.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestApply_UpdatesOnlyGivenFields(t *testing.T) {
	gdb := newTestDB(t)
	svc := profile.NewService(gdb)

	_, err := svc.GetOrCreate(context.Background(), "user-1", "cit@example.com")
	require.NoError(t, err)

	u, err := svc.Apply(context.Background(), "user-1", profile.Update{
		ICName: strPtr("Carl Johnson"),
		Bio:    strPtr("Grove Street."),
	})
	require.NoError(t, err)
	assert.Equal(t, "Carl Johnson", u.ICName)
	assert.Equal(t, "Grove Street.", u.Bio)
	assert.Empty(t, u.ICPhone)

	// A later partial update leaves untouched fields alone.
	u, err = svc.Apply(context.Background(), "user-1", profile.Update{
		ICPhone: strPtr("555-0199"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Carl Johnson", u.ICName)
	assert.Equal(t, "555-0199", u.ICPhone)
}

func TestApply_NeverTouchesRolesOrEmail(t *testing.T) {
	gdb := newTestDB(t)
	svc := profile.NewService(gdb)

	require.NoError(t, gdb.Create(&model.User{
		ID:    "user-1",
		Email: "cit@example.com",
		Roles: model.StringSlice{"lspd"},
	}).Error)

	u, err := svc.Apply(context.Background(), "user-1", profile.Update{
		ICName: strPtr("Carl Johnson"),
	})
	require.NoError(t, err)
	assert.Equal(t, "cit@example.com", u.Email)
	assert.Equal(t, model.StringSlice{"lspd"}, u.Roles)
}

func TestApply_UnknownUser(t *testing.T) {
	gdb := newTestDB(t)
	svc := profile.NewService(gdb)

	_, err := svc.Apply(context.Background(), "no-such-user", profile.Update{
		ICName: strPtr("Nobody"),
	})
	assert.ErrorIs(t, err, profile.ErrNotFound)
}
