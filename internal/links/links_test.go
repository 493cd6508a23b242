package links_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sanandreas/govportal/internal/db"
	"github.com/sanandreas/govportal/internal/links"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newStore(t *testing.T) *links.Store {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gdb))
	store, err := links.NewStore(gdb)
	require.NoError(t, err)
	return store
}

func TestGet_FallsBackToDefaults(t *testing.T) {
	store := newStore(t)
	got, err := store.Get(context.Background(), "doj_quicklinks")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "Court Dockets", got[0].Title)
}

func TestGet_UnknownSetting(t *testing.T) {
	store := newStore(t)
	_, err := store.Get(context.Background(), "nosuch_quicklinks")
	require.ErrorIs(t, err, links.ErrUnknownSetting)
}

func TestSave_OverridesDefaultPermanently(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	custom := []links.Link{{Title: "Tip Line", URL: "/tips", Icon: "phone", Color: "green"}}
	require.NoError(t, store.Save(ctx, "lspd_quicklinks", custom))

	got, err := store.Get(ctx, "lspd_quicklinks")
	require.NoError(t, err)
	assert.Equal(t, custom, got)

	// A later full overwrite wins; no merge with either default or previous.
	require.NoError(t, store.Save(ctx, "lspd_quicklinks", nil))
	got, err = store.Get(ctx, "lspd_quicklinks")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestKnown(t *testing.T) {
	store := newStore(t)
	assert.True(t, store.Known("safd_quicklinks"))
	assert.False(t, store.Known("fib_quicklinks"))
}
