package store

import (
	"context"

	"threadloom/internal/models"

	"gorm.io/gorm"
)

// MessageStore defines persistence operations for messages.
type MessageStore interface {
	GetByMsgID(ctx context.Context, msgID string) (*models.Message, error)
	GetMany(ctx context.Context, msgIDs []string) ([]*models.Message, error)
	Create(ctx context.Context, msg *models.Message) error
	ListRoots(ctx context.Context, skip, limit int) ([]*models.Message, error)
	CountRoots(ctx context.Context) (int64, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*models.Message, error)
	DeleteMany(ctx context.Context, msgIDs []string) (int64, error)
	AppendChildID(ctx context.Context, msgID, childID string) error
	RemoveChildIDs(ctx context.Context, msgID string, childIDs []string) error
}

type messageStore struct {
	db *gorm.DB
}

// NewMessageStore creates a message store bound to db (which may be a transaction).
func NewMessageStore(db *gorm.DB) MessageStore {
	return &messageStore{db: db}
}

func (r *messageStore) GetByMsgID(ctx context.Context, msgID string) (*models.Message, error) {
	var msg models.Message
	if err := r.db.WithContext(ctx).Where("msg_id = ?", msgID).First(&msg).Error; err != nil {
		return nil, wrapDBError(err, "Message", msgID)
	}
	return &msg, nil
}

// GetMany loads the messages whose ids are present in the store. Missing
// ids are simply absent from the result; callers decide how to treat them.
func (r *messageStore) GetMany(ctx context.Context, msgIDs []string) ([]*models.Message, error) {
	if len(msgIDs) == 0 {
		return nil, nil
	}
	var msgs []*models.Message
	if err := r.db.WithContext(ctx).Where("msg_id IN ?", msgIDs).Find(&msgs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

func (r *messageStore) Create(ctx context.Context, msg *models.Message) error {
	if msg.ChildIDs == nil {
		msg.ChildIDs = models.IDList{}
	}
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListRoots returns root messages (no parent), newest first.
func (r *messageStore) ListRoots(ctx context.Context, skip, limit int) ([]*models.Message, error) {
	var msgs []*models.Message
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", "").
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

func (r *messageStore) CountRoots(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("parent_id = ?", "").
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *messageStore) ListByAuthor(ctx context.Context, authorID string) ([]*models.Message, error) {
	var msgs []*models.Message
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

// DeleteMany removes every listed message in one bulk delete and returns
// how many rows were actually removed. Deleting an already-absent id is a
// no-op, which keeps the cascade retry-safe.
func (r *messageStore) DeleteMany(ctx context.Context, msgIDs []string) (int64, error) {
	if len(msgIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("msg_id IN ?", msgIDs).Delete(&models.Message{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *messageStore) AppendChildID(ctx context.Context, msgID, childID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var msg models.Message
		if err := tx.Where("msg_id = ?", msgID).First(&msg).Error; err != nil {
			return wrapDBError(err, "Message", msgID)
		}
		next := msg.ChildIDs.Append(childID)
		if len(next) == len(msg.ChildIDs) {
			return nil
		}
		if err := tx.Model(&msg).Update("child_ids", next).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}

func (r *messageStore) RemoveChildIDs(ctx context.Context, msgID string, childIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var msg models.Message
		if err := tx.Where("msg_id = ?", msgID).First(&msg).Error; err != nil {
			return wrapDBError(err, "Message", msgID)
		}
		next := msg.ChildIDs.Remove(childIDs)
		if len(next) == len(msg.ChildIDs) {
			return nil
		}
		if err := tx.Model(&msg).Update("child_ids", next).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}
