package cascade

import (
	"context"
	"testing"

	"threadloom/internal/models"
	"threadloom/internal/refs"
	"threadloom/internal/store"
	"threadloom/internal/tree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Community{}, &models.Message{}))

	users := store.NewUserStore(db)
	communities := store.NewCommunityStore(db)
	messages := store.NewMessageStore(db)
	engine := NewEngine(messages,
		tree.NewResolver(users, communities, messages),
		refs.NewMaintainer(users, communities, messages))
	return engine, db
}

// seedSubtree builds a root by U1 in community C1 with a reply chain:
//
//	R (U1, C1) ── A (U2) ── AA (U1)
//	          └── B (U2)
//
// Owned-sets and child-sets carry the matching back-references.
func seedSubtree(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&models.User{
		UserID: "U1", Username: "anna",
		MessageIDs: models.IDList{"R", "AA", "other"},
	}).Error)
	require.NoError(t, db.Create(&models.User{
		UserID: "U2", Username: "bob",
		MessageIDs: models.IDList{"A", "B"},
	}).Error)
	require.NoError(t, db.Create(&models.Community{
		CommunityID: "C1", Username: "gophers",
		MessageIDs: models.IDList{"R", "unrelated"},
	}).Error)

	msgs := []*models.Message{
		{MsgID: "R", Body: "root", AuthorID: "U1", CommunityID: "C1", ChildIDs: models.IDList{"A", "B"}},
		{MsgID: "A", Body: "reply", AuthorID: "U2", ParentID: "R", ChildIDs: models.IDList{"AA"}},
		{MsgID: "B", Body: "reply", AuthorID: "U2", ParentID: "R"},
		{MsgID: "AA", Body: "nested", AuthorID: "U1", ParentID: "A"},
		{MsgID: "other", Body: "survives", AuthorID: "U1"},
	}
	for _, m := range msgs {
		require.NoError(t, db.Create(m).Error)
	}
}

func TestDeleteSubtreeRemovesEverythingAndPrunes(t *testing.T) {
	engine, db := setupEngine(t)
	seedSubtree(t, db)
	ctx := context.Background()

	require.NoError(t, engine.DeleteSubtree(ctx, "R"))

	var count int64
	db.Model(&models.Message{}).Where("msg_id IN ?", []string{"R", "A", "B", "AA"}).Count(&count)
	assert.EqualValues(t, 0, count)

	// unrelated message survives
	db.Model(&models.Message{}).Where("msg_id = ?", "other").Count(&count)
	assert.EqualValues(t, 1, count)

	var u1, u2 models.User
	require.NoError(t, db.Where("user_id = ?", "U1").First(&u1).Error)
	require.NoError(t, db.Where("user_id = ?", "U2").First(&u2).Error)
	assert.Equal(t, models.IDList{"other"}, u1.MessageIDs)
	assert.Empty(t, u2.MessageIDs)

	var c1 models.Community
	require.NoError(t, db.Where("community_id = ?", "C1").First(&c1).Error)
	assert.Equal(t, models.IDList{"unrelated"}, c1.MessageIDs)
}

func TestDeleteSubtreeOfReplyPrunesParentChildSet(t *testing.T) {
	engine, db := setupEngine(t)
	seedSubtree(t, db)
	ctx := context.Background()

	require.NoError(t, engine.DeleteSubtree(ctx, "A"))

	var root models.Message
	require.NoError(t, db.Where("msg_id = ?", "R").First(&root).Error)
	assert.Equal(t, models.IDList{"B"}, root.ChildIDs)

	var count int64
	db.Model(&models.Message{}).Where("msg_id IN ?", []string{"A", "AA"}).Count(&count)
	assert.EqualValues(t, 0, count)

	// siblings survive
	db.Model(&models.Message{}).Where("msg_id = ?", "B").Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestDeleteSubtreeNotFound(t *testing.T) {
	engine, _ := setupEngine(t)

	err := engine.DeleteSubtree(context.Background(), "nope")
	assert.True(t, models.IsNotFound(err))
}

func TestDeleteSubtreePartialFailureOnMissingAuthor(t *testing.T) {
	engine, db := setupEngine(t)
	seedSubtree(t, db)
	ctx := context.Background()

	// U2's record disappears before the cascade runs
	require.NoError(t, db.Where("user_id = ?", "U2").Delete(&models.User{}).Error)

	err := engine.DeleteSubtree(ctx, "R")
	require.Error(t, err)
	assert.True(t, models.IsPartialFailure(err))

	var pf *models.PartialFailureError
	require.ErrorAs(t, err, &pf)
	assert.Contains(t, pf.FailedPrunes, "user/U2")

	// the messages are gone regardless, so a retry has nothing left to delete
	var count int64
	db.Model(&models.Message{}).Where("msg_id IN ?", []string{"R", "A", "B", "AA"}).Count(&count)
	assert.EqualValues(t, 0, count)

	// the surviving user was still pruned
	var u1 models.User
	require.NoError(t, db.Where("user_id = ?", "U1").First(&u1).Error)
	assert.Equal(t, models.IDList{"other"}, u1.MessageIDs)
}

func TestDeleteSubtreeIsRetrySafe(t *testing.T) {
	engine, db := setupEngine(t)
	seedSubtree(t, db)
	ctx := context.Background()

	require.NoError(t, engine.DeleteSubtree(ctx, "A"))
	// second run finds the root gone
	err := engine.DeleteSubtree(ctx, "A")
	assert.True(t, models.IsNotFound(err))
}
