package refs

import (
	"context"
	"testing"

	"threadloom/internal/models"
	"threadloom/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMaintainer(t *testing.T) (*Maintainer, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Community{}, &models.Message{}))

	m := NewMaintainer(
		store.NewUserStore(db),
		store.NewCommunityStore(db),
		store.NewMessageStore(db),
	)
	return m, db
}

func TestLinkAuthorAndUnlink(t *testing.T) {
	m, db := setupMaintainer(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.User{UserID: "U1", Username: "anna"}).Error)

	require.NoError(t, m.LinkAuthor(ctx, "M1", "U1"))
	require.NoError(t, m.LinkAuthor(ctx, "M1", "U1")) // idempotent
	require.NoError(t, m.LinkAuthor(ctx, "M2", "U1"))

	var user models.User
	require.NoError(t, db.Where("user_id = ?", "U1").First(&user).Error)
	assert.Equal(t, models.IDList{"M1", "M2"}, user.MessageIDs)

	require.NoError(t, m.UnlinkMany(ctx, KindUser, "U1", []string{"M1"}))
	require.NoError(t, db.Where("user_id = ?", "U1").First(&user).Error)
	assert.Equal(t, models.IDList{"M2"}, user.MessageIDs)

	err := m.LinkAuthor(ctx, "M3", "nobody")
	assert.True(t, models.IsNotFound(err))
}

func TestLinkCommunitySkipsEmptyID(t *testing.T) {
	m, db := setupMaintainer(t)
	ctx := context.Background()

	assert.NoError(t, m.LinkCommunity(ctx, "M1", ""))

	require.NoError(t, db.Create(&models.Community{CommunityID: "C1", Username: "gophers"}).Error)
	require.NoError(t, m.LinkCommunity(ctx, "M1", "C1"))

	var community models.Community
	require.NoError(t, db.Where("community_id = ?", "C1").First(&community).Error)
	assert.Equal(t, models.IDList{"M1"}, community.MessageIDs)

	err := m.LinkCommunity(ctx, "M1", "ghost")
	assert.True(t, models.IsNotFound(err))
}

func TestLinkMembershipUpdatesBothSides(t *testing.T) {
	m, db := setupMaintainer(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.User{UserID: "U1", Username: "anna"}).Error)
	require.NoError(t, db.Create(&models.Community{CommunityID: "C1", Username: "gophers"}).Error)

	require.NoError(t, m.LinkMembership(ctx, "U1", "C1"))
	require.NoError(t, m.LinkMembership(ctx, "U1", "C1"))

	var user models.User
	require.NoError(t, db.Where("user_id = ?", "U1").First(&user).Error)
	assert.Equal(t, models.IDList{"C1"}, user.CommunityIDs)

	var community models.Community
	require.NoError(t, db.Where("community_id = ?", "C1").First(&community).Error)
	assert.Equal(t, models.IDList{"U1"}, community.MemberIDs)
}

func TestUnlinkManyUnknownKind(t *testing.T) {
	m, _ := setupMaintainer(t)

	err := m.UnlinkMany(context.Background(), Kind("banana"), "X", []string{"M1"})
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}
