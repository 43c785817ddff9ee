// Package seed populates the database with demo data for development and
// testing. All writes go through the service layer so owned-sets and
// child-sets stay consistent with the created records.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"threadloom/internal/cascade"
	"threadloom/internal/models"
	"threadloom/internal/refs"
	"threadloom/internal/service"
	"threadloom/internal/store"
	"threadloom/internal/tree"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers       int
	NumCommunities int
	NumMessages    int
	MaxReplyDepth  int
	ShouldClean    bool
}

// DefaultOptions returns a small but branchy demo dataset.
func DefaultOptions() Options {
	return Options{
		NumUsers:       12,
		NumCommunities: 3,
		NumMessages:    30,
		MaxReplyDepth:  4,
	}
}

// Seed populates the database with demo data.
func Seed(ctx context.Context, db *gorm.DB, opts Options) error {
	log.Printf("Seeding database: %d users, %d communities, %d messages...",
		opts.NumUsers, opts.NumCommunities, opts.NumMessages)
	gofakeit.Seed(time.Now().UnixNano())

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	users := store.NewUserStore(db)
	communities := store.NewCommunityStore(db)
	messages := store.NewMessageStore(db)
	resolver := tree.NewResolver(users, communities, messages)
	maintainer := refs.NewMaintainer(users, communities, messages)
	engine := cascade.NewEngine(messages, resolver, maintainer)

	messageService := service.NewMessageService(db, messages, users, communities, resolver, engine, nil)
	userService := service.NewUserService(users, messages, resolver, nil)
	communityService := service.NewCommunityService(communities, users, resolver, maintainer)

	seededUsers, err := createUsers(ctx, userService, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("Created %d users", len(seededUsers))

	seededCommunities, err := createCommunities(ctx, communityService, seededUsers, opts.NumCommunities)
	if err != nil {
		return fmt.Errorf("failed to create communities: %w", err)
	}
	log.Printf("Created %d communities", len(seededCommunities))

	roots, err := createMessages(ctx, messageService, seededUsers, seededCommunities, opts.NumMessages)
	if err != nil {
		return fmt.Errorf("failed to create messages: %w", err)
	}
	replies, err := createReplies(ctx, messageService, seededUsers, roots, opts.MaxReplyDepth)
	if err != nil {
		return fmt.Errorf("failed to create replies: %w", err)
	}
	log.Printf("Created %d root messages and %d replies", len(roots), replies)

	return nil
}

func clearData(db *gorm.DB) error {
	for _, model := range []any{&models.Message{}, &models.Community{}, &models.User{}} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(ctx context.Context, svc *service.UserService, n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		name := gofakeit.Name()
		username := strings.ToLower(gofakeit.Username())
		user, err := svc.SaveProfile(ctx, service.SaveProfileInput{
			UserID:    "seed-user-" + uuid.NewString(),
			Username:  fmt.Sprintf("%s%d", username, i),
			Name:      name,
			Bio:       gofakeit.Sentence(8),
			AvatarURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		})
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createCommunities(ctx context.Context, svc *service.CommunityService, users []*models.User, n int) ([]*models.Community, error) {
	communities := make([]*models.Community, 0, n)
	for i := 0; i < n; i++ {
		creator := users[rand.Intn(len(users))]
		name := gofakeit.Company()
		community, err := svc.CreateCommunity(ctx, service.CreateCommunityInput{
			CommunityID:   "seed-community-" + uuid.NewString(),
			Username:      fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Word()), i),
			Name:          name,
			Bio:           gofakeit.Sentence(10),
			CreatorUserID: creator.UserID,
		})
		if err != nil {
			return nil, err
		}
		// a few extra members per community
		for j := 0; j < 3; j++ {
			member := users[rand.Intn(len(users))]
			if err := svc.JoinCommunity(ctx, member.UserID, community.CommunityID); err != nil {
				return nil, err
			}
		}
		communities = append(communities, community)
	}
	return communities, nil
}

func createMessages(ctx context.Context, svc *service.MessageService, users []*models.User, communities []*models.Community, n int) ([]*models.Message, error) {
	roots := make([]*models.Message, 0, n)
	for i := 0; i < n; i++ {
		author := users[rand.Intn(len(users))]
		communityID := ""
		// roughly a third of posts land in a community
		if len(communities) > 0 && rand.Intn(3) == 0 {
			communityID = communities[rand.Intn(len(communities))].CommunityID
		}
		msg, err := svc.CreateMessage(ctx, service.CreateMessageInput{
			Text:        gofakeit.Paragraph(1, 3, 8, " "),
			AuthorID:    author.UserID,
			CommunityID: communityID,
		})
		if err != nil {
			return nil, err
		}
		roots = append(roots, msg)
	}
	return roots, nil
}

// createReplies grows uneven reply chains under the roots so trees have
// real depth, not just fan-out.
func createReplies(ctx context.Context, svc *service.MessageService, users []*models.User, roots []*models.Message, maxDepth int) (int, error) {
	if maxDepth < 1 {
		maxDepth = 1
	}
	total := 0
	for _, root := range roots {
		parents := []*models.Message{root}
		for depth := 0; depth < maxDepth && len(parents) > 0; depth++ {
			next := make([]*models.Message, 0)
			for _, parent := range parents {
				for i := 0; i < rand.Intn(3); i++ {
					author := users[rand.Intn(len(users))]
					reply, err := svc.CreateReply(ctx, service.CreateReplyInput{
						ParentID: parent.MsgID,
						Text:     gofakeit.Sentence(12),
						AuthorID: author.UserID,
					})
					if err != nil {
						return total, err
					}
					total++
					next = append(next, reply)
				}
			}
			parents = next
		}
	}
	return total, nil
}
