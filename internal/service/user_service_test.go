package service

import (
	"context"
	"fmt"
	"testing"

	"threadloom/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveProfileCreatesThenUpdates(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	user, err := f.userSvc.SaveProfile(ctx, SaveProfileInput{
		UserID:   "U1",
		Username: "Anna",
		Name:     "Anna Banana",
		Bio:      "hi",
		Path:     "/profile",
	})
	require.NoError(t, err)
	assert.Equal(t, "anna", user.Username)
	assert.True(t, user.Onboarded)
	assert.Equal(t, []string{"/profile"}, f.revalidated.paths)

	// second save updates in place
	user, err = f.userSvc.SaveProfile(ctx, SaveProfileInput{
		UserID:   "U1",
		Username: "ANNA2",
		Name:     "Anna",
	})
	require.NoError(t, err)
	assert.Equal(t, "anna2", user.Username)

	var count int64
	f.db.Model(&models.User{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestSaveProfileValidation(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	var appErr *models.AppError
	_, err := f.userSvc.SaveProfile(ctx, SaveProfileInput{Username: "x", Name: "y"})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)

	_, err = f.userSvc.SaveProfile(ctx, SaveProfileInput{UserID: "U1", Name: "y"})
	require.ErrorAs(t, err, &appErr)

	_, err = f.userSvc.SaveProfile(ctx, SaveProfileInput{UserID: "U1", Username: "x"})
	require.ErrorAs(t, err, &appErr)
}

func TestListUsersSearchExcludesRequester(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.createUser(t, "U1", "anna")
	f.createUser(t, "U2", "fan123")
	f.createUser(t, "U3", "bob")

	page, err := f.userSvc.ListUsers(ctx, ListUsersInput{
		RequestingUserID: "U1",
		Search:           "an",
	})
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "U2", page.Users[0].UserID)
	assert.False(t, page.HasNext)
}

func TestListUsersPagination(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	for i := 0; i < 30; i++ {
		f.createUser(t, fmt.Sprintf("U%d", i), fmt.Sprintf("user%d", i))
	}

	page, err := f.userSvc.ListUsers(ctx, ListUsersInput{PageNumber: 1, PageSize: 25})
	require.NoError(t, err)
	assert.Len(t, page.Users, 25)
	assert.True(t, page.HasNext)

	page, err = f.userSvc.ListUsers(ctx, ListUsersInput{PageNumber: 2, PageSize: 25})
	require.NoError(t, err)
	assert.Len(t, page.Users, 5)
	assert.False(t, page.HasNext)
}

func TestUserMessagesFollowsOwnedSetOrder(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.createUser(t, "U1", "anna")

	first, err := f.msgSvc.CreateMessage(ctx, CreateMessageInput{Text: "first", AuthorID: "U1"})
	require.NoError(t, err)
	second, err := f.msgSvc.CreateMessage(ctx, CreateMessageInput{Text: "second", AuthorID: "U1"})
	require.NoError(t, err)

	nodes, err := f.userSvc.UserMessages(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, first.MsgID, nodes[0].MsgID)
	assert.Equal(t, second.MsgID, nodes[1].MsgID)

	_, err = f.userSvc.UserMessages(ctx, "missing")
	assert.True(t, models.IsNotFound(err))
}

func TestActivityExcludesSelfReplies(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	f.createUser(t, "U1", "anna")
	f.createUser(t, "U2", "bob")

	root, err := f.msgSvc.CreateMessage(ctx, CreateMessageInput{Text: "root", AuthorID: "U1"})
	require.NoError(t, err)

	// a reply from someone else and a self-reply
	other, err := f.msgSvc.CreateReply(ctx, CreateReplyInput{ParentID: root.MsgID, Text: "nice", AuthorID: "U2"})
	require.NoError(t, err)
	_, err = f.msgSvc.CreateReply(ctx, CreateReplyInput{ParentID: root.MsgID, Text: "me again", AuthorID: "U1"})
	require.NoError(t, err)

	items, err := f.userSvc.Activity(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, other.MsgID, items[0].MsgID)
	assert.Equal(t, "bob", items[0].Author.Username)
	assert.Equal(t, root.MsgID, items[0].ParentID)
}

func TestActivityUnknownUser(t *testing.T) {
	f := setupFixture(t)

	_, err := f.userSvc.Activity(context.Background(), "missing")
	assert.True(t, models.IsNotFound(err))
}
