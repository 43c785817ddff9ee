package service

import (
	"context"
	"strings"

	"threadloom/internal/models"
	"threadloom/internal/pagination"
	"threadloom/internal/refs"
	"threadloom/internal/store"
	"threadloom/internal/tree"
)

// CommunityService implements the community-side core operations.
type CommunityService struct {
	communities store.CommunityStore
	users       store.UserStore
	resolver    *tree.Resolver
	maintainer  *refs.Maintainer
}

// CreateCommunityInput carries a community registration.
type CreateCommunityInput struct {
	CommunityID   string
	Username      string
	Name          string
	Bio           string
	AvatarURL     string
	CreatorUserID string
}

// NewCommunityService wires a community service.
func NewCommunityService(communities store.CommunityStore, users store.UserStore, resolver *tree.Resolver, maintainer *refs.Maintainer) *CommunityService {
	return &CommunityService{communities: communities, users: users, resolver: resolver, maintainer: maintainer}
}

// CreateCommunity registers a community and enrolls its creator as the
// first member.
func (s *CommunityService) CreateCommunity(ctx context.Context, in CreateCommunityInput) (*models.Community, error) {
	if in.CommunityID == "" {
		return nil, models.NewValidationError("Community id is required")
	}
	if strings.TrimSpace(in.Username) == "" {
		return nil, models.NewValidationError("Username is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if _, err := s.users.GetByUserID(ctx, in.CreatorUserID); err != nil {
		return nil, err
	}

	community := &models.Community{
		CommunityID: in.CommunityID,
		Username:    strings.ToLower(in.Username),
		Name:        in.Name,
		Bio:         in.Bio,
		AvatarURL:   in.AvatarURL,
		MessageIDs:  models.IDList{},
		MemberIDs:   models.IDList{},
	}
	if err := s.communities.Create(ctx, community); err != nil {
		return nil, err
	}
	if err := s.maintainer.LinkMembership(ctx, in.CreatorUserID, community.CommunityID); err != nil {
		return nil, err
	}
	return s.communities.GetByCommunityID(ctx, community.CommunityID)
}

// GetCommunity returns the community keyed by the external id.
func (s *CommunityService) GetCommunity(ctx context.Context, communityID string) (*models.Community, error) {
	return s.communities.GetByCommunityID(ctx, communityID)
}

// ListCommunities returns one page of communities, newest first.
func (s *CommunityService) ListCommunities(ctx context.Context, pageNumber, pageSize int) ([]*models.Community, bool, error) {
	if pageSize < 1 {
		pageSize = pagination.DefaultPageSize
	}
	if pageNumber < 1 {
		pageNumber = 1
	}
	page, err := pagination.Collect(ctx, pageNumber, pageSize,
		s.communities.List,
		s.communities.Count,
	)
	if err != nil {
		return nil, false, err
	}
	return page.Items, page.HasNext, nil
}

// CommunityMessages returns the community's owned messages hydrated one
// level deep, in owned-set order.
func (s *CommunityService) CommunityMessages(ctx context.Context, communityID string) ([]*models.MessageNode, error) {
	community, err := s.communities.GetByCommunityID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	return s.resolver.ResolveMany(ctx, community.MessageIDs)
}

// JoinCommunity records the membership on both sides. Joining twice is a
// no-op.
func (s *CommunityService) JoinCommunity(ctx context.Context, userID, communityID string) error {
	if _, err := s.communities.GetByCommunityID(ctx, communityID); err != nil {
		return err
	}
	return s.maintainer.LinkMembership(ctx, userID, communityID)
}
