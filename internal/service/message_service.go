// Package service exposes the core operations of the discussion platform:
// message creation, reply threading, tree retrieval, cascade deletion, and
// the user-facing listings. Services compose the entity stores, the
// reference maintainer, the tree resolver, and the cascade engine; the
// HTTP layer above them holds no domain logic.
package service

import (
	"context"
	"time"

	"threadloom/internal/cascade"
	"threadloom/internal/models"
	"threadloom/internal/observability"
	"threadloom/internal/pagination"
	"threadloom/internal/refs"
	"threadloom/internal/store"
	"threadloom/internal/tree"

	"threadloom/internal/cache"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Revalidator receives the opaque view path after a successful write. The
// core never interprets the path; it only passes it through.
type Revalidator interface {
	Revalidate(ctx context.Context, path string)
}

// NoopRevalidator ignores revalidation signals. Used when no cache is wired.
type NoopRevalidator struct{}

// Revalidate implements Revalidator.
func (NoopRevalidator) Revalidate(context.Context, string) {}

const maxMessageLen = 10000

// MessageService implements the message-side core operations.
type MessageService struct {
	db          *gorm.DB
	messages    store.MessageStore
	users       store.UserStore
	communities store.CommunityStore
	resolver    *tree.Resolver
	engine      *cascade.Engine
	revalidator Revalidator
}

// CreateMessageInput carries a root message write.
type CreateMessageInput struct {
	Text        string
	AuthorID    string
	CommunityID string // optional, empty when posting outside a community
	Path        string // opaque revalidation trigger
}

// CreateReplyInput carries a reply write.
type CreateReplyInput struct {
	ParentID string
	Text     string
	AuthorID string
	Path     string
}

// NewMessageService wires a message service. revalidator may be nil.
func NewMessageService(
	db *gorm.DB,
	messages store.MessageStore,
	users store.UserStore,
	communities store.CommunityStore,
	resolver *tree.Resolver,
	engine *cascade.Engine,
	revalidator Revalidator,
) *MessageService {
	if revalidator == nil {
		revalidator = NoopRevalidator{}
	}
	return &MessageService{
		db:          db,
		messages:    messages,
		users:       users,
		communities: communities,
		resolver:    resolver,
		engine:      engine,
		revalidator: revalidator,
	}
}

// CreateMessage creates a root message. The entity insert and its
// back-reference insertions commit together, so a cancelled create leaves
// either both or neither. Fails with NotFound when the author is unknown;
// a community id that resolves to nothing is skipped silently.
func (s *MessageService) CreateMessage(ctx context.Context, in CreateMessageInput) (*models.Message, error) {
	if in.Text == "" {
		return nil, models.NewValidationError("Message body is required")
	}
	if len(in.Text) > maxMessageLen {
		return nil, models.NewValidationError("Message too long (max 10000 characters)")
	}
	if in.AuthorID == "" {
		return nil, models.NewValidationError("Author is required")
	}

	communityID := ""
	if in.CommunityID != "" {
		community, err := s.communities.GetByCommunityID(ctx, in.CommunityID)
		switch {
		case err == nil:
			communityID = community.CommunityID
		case models.IsNotFound(err):
			// unknown community resolves to a plain post
		default:
			return nil, err
		}
	}

	msg := &models.Message{
		MsgID:       uuid.NewString(),
		Body:        in.Text,
		AuthorID:    in.AuthorID,
		CommunityID: communityID,
		ChildIDs:    models.IDList{},
		CreatedAt:   time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txMaintainer := refs.NewMaintainer(
			store.NewUserStore(tx),
			store.NewCommunityStore(tx),
			store.NewMessageStore(tx),
		)
		if err := store.NewMessageStore(tx).Create(ctx, msg); err != nil {
			return err
		}
		if err := txMaintainer.LinkAuthor(ctx, msg.MsgID, msg.AuthorID); err != nil {
			return err
		}
		return txMaintainer.LinkCommunity(ctx, msg.MsgID, msg.CommunityID)
	})
	if err != nil {
		return nil, err
	}

	observability.MessagesCreated.WithLabelValues("root").Inc()
	s.revalidator.Revalidate(ctx, in.Path)
	return msg, nil
}

// CreateReply creates a reply under an existing message. Fails with
// NotFound when the parent is absent. The insert, the parent child-set
// append, and the author owned-set append commit together.
func (s *MessageService) CreateReply(ctx context.Context, in CreateReplyInput) (*models.Message, error) {
	if in.Text == "" {
		return nil, models.NewValidationError("Reply body is required")
	}
	if len(in.Text) > maxMessageLen {
		return nil, models.NewValidationError("Reply too long (max 10000 characters)")
	}
	if in.AuthorID == "" {
		return nil, models.NewValidationError("Author is required")
	}

	parent, err := s.messages.GetByMsgID(ctx, in.ParentID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		MsgID:     uuid.NewString(),
		Body:      in.Text,
		AuthorID:  in.AuthorID,
		ParentID:  parent.MsgID,
		ChildIDs:  models.IDList{},
		CreatedAt: time.Now().UTC(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txMaintainer := refs.NewMaintainer(
			store.NewUserStore(tx),
			store.NewCommunityStore(tx),
			store.NewMessageStore(tx),
		)
		if err := store.NewMessageStore(tx).Create(ctx, msg); err != nil {
			return err
		}
		if err := txMaintainer.LinkParentChild(ctx, parent.MsgID, msg.MsgID); err != nil {
			return err
		}
		return txMaintainer.LinkAuthor(ctx, msg.MsgID, msg.AuthorID)
	})
	if err != nil {
		return nil, err
	}

	observability.MessagesCreated.WithLabelValues("reply").Inc()
	s.revalidator.Revalidate(ctx, in.Path)
	return msg, nil
}

// GetMessageTree returns the fully hydrated tree for a message.
func (s *MessageService) GetMessageTree(ctx context.Context, msgID string) (*models.MessageNode, error) {
	return s.resolver.ResolveFull(ctx, msgID)
}

// ListRootMessages returns one feed page of root messages, newest first,
// served through the cache when one is wired.
func (s *MessageService) ListRootMessages(ctx context.Context, pageNumber, pageSize int) (*models.FeedPage, error) {
	if pageSize < 1 {
		pageSize = pagination.DefaultPageSize
	}
	if pageNumber < 1 {
		pageNumber = 1
	}

	var feed models.FeedPage
	err := cache.CacheAside(ctx, cache.FeedKey(pageNumber, pageSize), &feed, cache.FeedTTL, func() error {
		page, err := pagination.Collect(ctx, pageNumber, pageSize,
			s.resolver.ResolveRoots,
			s.messages.CountRoots,
		)
		if err != nil {
			return err
		}
		feed = models.FeedPage{Messages: page.Items, HasNext: page.HasNext}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &feed, nil
}

// DeleteMessage removes the message and its whole subtree. A partial
// failure still changed the feed, so the revalidation signal fires for it
// as well; the error is returned so the caller can retry the pruning.
func (s *MessageService) DeleteMessage(ctx context.Context, msgID, path string) error {
	err := s.engine.DeleteSubtree(ctx, msgID)
	if err == nil || models.IsPartialFailure(err) {
		s.revalidator.Revalidate(ctx, path)
	}
	return err
}
