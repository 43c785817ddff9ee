// Package refs maintains the bidirectional references between entities:
// author and community owned-sets on one side, message child-sets and
// membership sets on the other. Every relation mutation goes through the
// Maintainer so both sides stay in sync; the store has no cascade of its
// own. All operations are idempotent under retry.
package refs

import (
	"context"
	"fmt"

	"threadloom/internal/models"
	"threadloom/internal/store"
)

// Kind names an entity kind whose id-set can be unlinked.
type Kind string

const (
	KindUser      Kind = "user"
	KindCommunity Kind = "community"
	KindMessage   Kind = "message"
)

// Maintainer applies relation mutations to both referencing sides.
type Maintainer struct {
	users       store.UserStore
	communities store.CommunityStore
	messages    store.MessageStore
}

// NewMaintainer wires a maintainer over the given stores.
func NewMaintainer(users store.UserStore, communities store.CommunityStore, messages store.MessageStore) *Maintainer {
	return &Maintainer{users: users, communities: communities, messages: messages}
}

// LinkAuthor records msgID in the author's owned-set. Fails with NotFound
// when the user does not exist; message creation treats that as fatal.
func (m *Maintainer) LinkAuthor(ctx context.Context, msgID, userID string) error {
	return m.users.AppendMessageID(ctx, userID, msgID)
}

// LinkCommunity records msgID in the community's owned-set. An empty
// communityID is skipped silently; a nonexistent one fails with NotFound
// and the caller decides whether that is fatal.
func (m *Maintainer) LinkCommunity(ctx context.Context, msgID, communityID string) error {
	if communityID == "" {
		return nil
	}
	return m.communities.AppendMessageID(ctx, communityID, msgID)
}

// LinkParentChild records childID in the parent message's child-set.
func (m *Maintainer) LinkParentChild(ctx context.Context, parentID, childID string) error {
	return m.messages.AppendChildID(ctx, parentID, childID)
}

// LinkMembership records the membership relation on both sides: the
// community id on the user and the user id on the community.
func (m *Maintainer) LinkMembership(ctx context.Context, userID, communityID string) error {
	if err := m.users.AppendCommunityID(ctx, userID, communityID); err != nil {
		return err
	}
	return m.communities.AppendMemberID(ctx, communityID, userID)
}

// UnlinkMany removes every id in msgIDs from the entity's owned-set or
// child-set. Ids not present are a no-op, so retries converge.
func (m *Maintainer) UnlinkMany(ctx context.Context, kind Kind, entityID string, msgIDs []string) error {
	switch kind {
	case KindUser:
		return m.users.RemoveMessageIDs(ctx, entityID, msgIDs)
	case KindCommunity:
		return m.communities.RemoveMessageIDs(ctx, entityID, msgIDs)
	case KindMessage:
		return m.messages.RemoveChildIDs(ctx, entityID, msgIDs)
	default:
		return models.NewValidationError(fmt.Sprintf("unknown entity kind %q", kind))
	}
}
