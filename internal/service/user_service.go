package service

import (
	"context"
	"sort"
	"strings"

	"threadloom/internal/models"
	"threadloom/internal/pagination"
	"threadloom/internal/store"
	"threadloom/internal/tree"
)

// UserService implements the user-side core operations.
type UserService struct {
	users       store.UserStore
	messages    store.MessageStore
	resolver    *tree.Resolver
	revalidator Revalidator
}

// SaveProfileInput carries a profile upsert.
type SaveProfileInput struct {
	UserID    string
	Username  string
	Name      string
	Bio       string
	AvatarURL string
	Path      string
}

// ListUsersInput filters and paginates a user listing.
type ListUsersInput struct {
	RequestingUserID string
	Search           string
	PageNumber       int
	PageSize         int
}

// NewUserService wires a user service. revalidator may be nil.
func NewUserService(users store.UserStore, messages store.MessageStore, resolver *tree.Resolver, revalidator Revalidator) *UserService {
	if revalidator == nil {
		revalidator = NoopRevalidator{}
	}
	return &UserService{users: users, messages: messages, resolver: resolver, revalidator: revalidator}
}

// SaveProfile creates or updates the profile keyed by the external user id.
// Usernames are stored lowercased; a successful save marks the user
// onboarded.
func (s *UserService) SaveProfile(ctx context.Context, in SaveProfileInput) (*models.User, error) {
	if in.UserID == "" {
		return nil, models.NewValidationError("User id is required")
	}
	if strings.TrimSpace(in.Username) == "" {
		return nil, models.NewValidationError("Username is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, models.NewValidationError("Name is required")
	}

	user := &models.User{
		UserID:    in.UserID,
		Username:  strings.ToLower(in.Username),
		Name:      in.Name,
		Bio:       in.Bio,
		AvatarURL: in.AvatarURL,
		Onboarded: true,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, err
	}

	s.revalidator.Revalidate(ctx, in.Path)
	return user, nil
}

// GetUser returns the user keyed by the external id.
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByUserID(ctx, userID)
}

// ListUsers returns one page of users matching the search term, excluding
// the requesting user, newest first. The search matches username or
// display name case-insensitively.
func (s *UserService) ListUsers(ctx context.Context, in ListUsersInput) (*models.UserPage, error) {
	if in.PageSize < 1 {
		in.PageSize = 25
	}
	if in.PageNumber < 1 {
		in.PageNumber = 1
	}
	q := store.UserQuery{ExcludeUserID: in.RequestingUserID, Search: in.Search}

	page, err := pagination.Collect(ctx, in.PageNumber, in.PageSize,
		func(ctx context.Context, skip, limit int) ([]*models.User, error) {
			return s.users.List(ctx, q, skip, limit)
		},
		func(ctx context.Context) (int64, error) {
			return s.users.Count(ctx, q)
		},
	)
	if err != nil {
		return nil, err
	}
	return &models.UserPage{Users: page.Items, HasNext: page.HasNext}, nil
}

// UserMessages returns every message in the user's owned-set, hydrated one
// level deep in owned-set order. Fails with NotFound for an unknown user;
// dangling owned-set entries are skipped.
func (s *UserService) UserMessages(ctx context.Context, userID string) ([]*models.MessageNode, error) {
	user, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolver.ResolveMany(ctx, user.MessageIDs)
}

// Activity returns the replies other users left under the user's messages,
// newest first. The user's own replies to themselves are excluded.
func (s *UserService) Activity(ctx context.Context, userID string) ([]*models.ActivityItem, error) {
	if _, err := s.users.GetByUserID(ctx, userID); err != nil {
		return nil, err
	}

	owned, err := s.messages.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}

	childIDs := make([]string, 0)
	for _, m := range owned {
		childIDs = append(childIDs, m.ChildIDs...)
	}
	replies, err := s.messages.GetMany(ctx, childIDs)
	if err != nil {
		return nil, err
	}

	authorIDs := make([]string, 0)
	seen := make(map[string]struct{})
	for _, reply := range replies {
		if reply.AuthorID == userID {
			continue
		}
		if _, ok := seen[reply.AuthorID]; !ok {
			seen[reply.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, reply.AuthorID)
		}
	}
	authors, err := s.users.GetMany(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	summaries := make(map[string]models.AuthorSummary, len(authors))
	for _, a := range authors {
		summaries[a.UserID] = a.Summary()
	}

	items := make([]*models.ActivityItem, 0, len(replies))
	for _, reply := range replies {
		if reply.AuthorID == userID {
			continue
		}
		summary, ok := summaries[reply.AuthorID]
		if !ok {
			// replier record no longer exists, drop the item
			continue
		}
		items = append(items, &models.ActivityItem{
			MsgID:     reply.MsgID,
			ParentID:  reply.ParentID,
			Body:      reply.Body,
			Author:    summary,
			CreatedAt: reply.CreatedAt,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}
