package directory_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sanandreas/govportal/internal/db"
	"github.com/sanandreas/govportal/internal/directory"
	"github.com/sanandreas/govportal/internal/model"
	"github.com/sanandreas/govportal/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gdb))
	return gdb
}

func TestAnnouncements_CRUD(t *testing.T) {
	store := directory.NewStore[model.Announcement](newDB(t))
	ctx := context.Background()

	created, err := store.Create(ctx, &model.Announcement{
		Department: string(policy.LSPD),
		Title:      "Road closures downtown",
		Body:       "Expect delays on Vinewood Blvd.",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Road closures downtown", got.Title)

	got.Title = "Road closures lifted"
	updated, err := store.Update(ctx, created.ID, got)
	require.NoError(t, err)
	assert.Equal(t, "Road closures lifted", updated.Title)

	require.NoError(t, store.Delete(ctx, created.ID))
	_, err = store.Get(ctx, created.ID)
	require.ErrorIs(t, err, directory.ErrNotFound)
}

func TestList_DepartmentFilter(t *testing.T) {
	store := directory.NewStore[model.JobPosting](newDB(t))
	ctx := context.Background()

	for _, dept := range []policy.Department{policy.LSPD, policy.LSPD, policy.SAFD} {
		_, err := store.Create(ctx, &model.JobPosting{
			Department: string(dept),
			Title:      "Recruit",
		})
		require.NoError(t, err)
	}

	all, err := store.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	dept := policy.LSPD
	lspd, err := store.List(ctx, &dept)
	require.NoError(t, err)
	assert.Len(t, lspd, 2)
}

func TestUpdate_Missing(t *testing.T) {
	store := directory.NewStore[model.Docket](newDB(t))
	_, err := store.Update(context.Background(), "nope", &model.Docket{Title: "x"})
	require.ErrorIs(t, err, directory.ErrNotFound)

	require.ErrorIs(t, store.Delete(context.Background(), "nope"), directory.ErrNotFound)
}
