package store

import (
	"context"
	"testing"

	"threadloom/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStoreUpsert(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserStore(db)
	ctx := context.Background()

	user := &models.User{
		UserID:    "U1",
		Username:  "anna",
		Name:      "Anna",
		Onboarded: true,
	}
	require.NoError(t, users.Upsert(ctx, user))

	// second upsert updates profile fields without touching id-sets
	require.NoError(t, users.AppendMessageID(ctx, "U1", "M1"))
	updated := &models.User{
		UserID:    "U1",
		Username:  "anna2",
		Name:      "Anna Banana",
		Bio:       "hello",
		Onboarded: true,
	}
	require.NoError(t, users.Upsert(ctx, updated))

	got, err := users.GetByUserID(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "anna2", got.Username)
	assert.Equal(t, "Anna Banana", got.Name)
	assert.Equal(t, models.IDList{"M1"}, got.MessageIDs)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestUserStoreGetByUserIDNotFound(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserStore(db)

	_, err := users.GetByUserID(context.Background(), "missing")
	assert.True(t, models.IsNotFound(err))
}

func TestUserStoreListSearchAndExclude(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserStore(db)
	ctx := context.Background()

	for _, u := range []*models.User{
		{UserID: "U1", Username: "anna", Name: "Anna"},
		{UserID: "U2", Username: "fan123", Name: "Frank"},
		{UserID: "U3", Username: "bob", Name: "Bob"},
	} {
		require.NoError(t, users.Create(ctx, u))
	}

	q := UserQuery{ExcludeUserID: "U1", Search: "an"}

	got, err := users.List(ctx, q, 0, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "U2", got[0].UserID)

	count, err := users.Count(ctx, q)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// case-insensitive on display name too
	got, err = users.List(ctx, UserQuery{Search: "ANNA"}, 0, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "U1", got[0].UserID)
}

func TestUserStoreAppendMessageIDIdempotent(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserStore(db)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &models.User{UserID: "U1", Username: "anna"}))

	require.NoError(t, users.AppendMessageID(ctx, "U1", "M1"))
	require.NoError(t, users.AppendMessageID(ctx, "U1", "M1"))
	require.NoError(t, users.AppendMessageID(ctx, "U1", "M2"))

	got, err := users.GetByUserID(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, models.IDList{"M1", "M2"}, got.MessageIDs)

	err = users.AppendMessageID(ctx, "missing", "M1")
	assert.True(t, models.IsNotFound(err))
}

func TestUserStoreRemoveMessageIDs(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserStore(db)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &models.User{
		UserID:     "U1",
		Username:   "anna",
		MessageIDs: models.IDList{"M1", "M2", "M3"},
	}))

	require.NoError(t, users.RemoveMessageIDs(ctx, "U1", []string{"M2", "not-there"}))
	// removing again converges
	require.NoError(t, users.RemoveMessageIDs(ctx, "U1", []string{"M2"}))

	got, err := users.GetByUserID(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, models.IDList{"M1", "M3"}, got.MessageIDs)
}
