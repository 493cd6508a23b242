package notify_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sanandreas/govportal/internal/complaint"
	"github.com/sanandreas/govportal/internal/db"
	"github.com/sanandreas/govportal/internal/model"
	"github.com/sanandreas/govportal/internal/notify"
	"github.com/sanandreas/govportal/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setup(t *testing.T) (*gorm.DB, *complaint.Service, *notify.Projection) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gdb))
	return gdb, complaint.NewService(gdb), notify.New(gdb)
}

func TestUnreadFor_CountsOfficialActivity(t *testing.T) {
	gdb, svc, proj := setup(t)
	ctx := context.Background()
	userID := "user-1"

	for i := 0; i < 3; i++ {
		c, err := svc.File(ctx, complaint.NewComplaint{
			Department: policy.LSPD,
			Name:       "Jane",
			Details:    "details",
			AuthorID:   &userID,
		})
		require.NoError(t, err)
		if i < 2 {
			_, err = svc.ReplyAsOfficial(ctx, c.ID, "Sgt. Vega", "noted")
			require.NoError(t, err)
		}
	}
	// Someone else's complaint never counts.
	other := "user-2"
	c, err := svc.File(ctx, complaint.NewComplaint{
		Department: policy.LSPD, Name: "Bob", Details: "x", AuthorID: &other,
	})
	require.NoError(t, err)
	_, err = svc.ReplyAsOfficial(ctx, c.ID, "Sgt. Vega", "noted")
	require.NoError(t, err)

	u, err := proj.UnreadFor(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, u.Count)
	assert.Len(t, u.Items, 2)

	require.NoError(t, proj.MarkAllRead(ctx, userID))

	u, err = proj.UnreadFor(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, u.Count)

	// Every owned row is flipped, none belonging to others.
	var readCount int64
	gdb.Model(&model.Complaint{}).
		Where("author_id = ? AND is_read_by_user = ?", userID, true).
		Count(&readCount)
	assert.EqualValues(t, 3, readCount)

	otherUnread, err := proj.UnreadFor(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 1, otherUnread.Count)
}

func TestMarkAllRead_NoRowsIsFine(t *testing.T) {
	_, _, proj := setup(t)
	require.NoError(t, proj.MarkAllRead(context.Background(), "nobody"))
}
