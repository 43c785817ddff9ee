package service

import (
	"context"
	"testing"

	"threadloom/internal/cascade"
	"threadloom/internal/models"
	"threadloom/internal/refs"
	"threadloom/internal/store"
	"threadloom/internal/tree"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// recordingRevalidator captures revalidation signals for assertions.
type recordingRevalidator struct {
	paths []string
}

func (r *recordingRevalidator) Revalidate(_ context.Context, path string) {
	r.paths = append(r.paths, path)
}

type fixture struct {
	db          *gorm.DB
	users       store.UserStore
	communities store.CommunityStore
	messages    store.MessageStore
	msgSvc      *MessageService
	userSvc     *UserService
	commSvc     *CommunityService
	revalidated *recordingRevalidator
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Community{}, &models.Message{}))

	users := store.NewUserStore(db)
	communities := store.NewCommunityStore(db)
	messages := store.NewMessageStore(db)
	resolver := tree.NewResolver(users, communities, messages)
	maintainer := refs.NewMaintainer(users, communities, messages)
	engine := cascade.NewEngine(messages, resolver, maintainer)
	rev := &recordingRevalidator{}

	return &fixture{
		db:          db,
		users:       users,
		communities: communities,
		messages:    messages,
		msgSvc:      NewMessageService(db, messages, users, communities, resolver, engine, rev),
		userSvc:     NewUserService(users, messages, resolver, rev),
		commSvc:     NewCommunityService(communities, users, resolver, maintainer),
		revalidated: rev,
	}
}

func (f *fixture) createUser(t *testing.T, userID, username string) *models.User {
	t.Helper()
	user := &models.User{UserID: userID, Username: username, Name: username, Onboarded: true}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *fixture) createCommunity(t *testing.T, communityID, username string) *models.Community {
	t.Helper()
	community := &models.Community{CommunityID: communityID, Username: username, Name: username}
	require.NoError(t, f.communities.Create(context.Background(), community))
	return community
}
