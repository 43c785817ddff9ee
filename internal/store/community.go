package store

import (
	"context"

	"threadloom/internal/models"

	"gorm.io/gorm"
)

// CommunityStore defines persistence operations for communities.
type CommunityStore interface {
	GetByCommunityID(ctx context.Context, communityID string) (*models.Community, error)
	GetMany(ctx context.Context, communityIDs []string) ([]*models.Community, error)
	Create(ctx context.Context, community *models.Community) error
	Update(ctx context.Context, community *models.Community) error
	List(ctx context.Context, skip, limit int) ([]*models.Community, error)
	Count(ctx context.Context) (int64, error)
	AppendMessageID(ctx context.Context, communityID, msgID string) error
	RemoveMessageIDs(ctx context.Context, communityID string, msgIDs []string) error
	AppendMemberID(ctx context.Context, communityID, userID string) error
}

type communityStore struct {
	db *gorm.DB
}

// NewCommunityStore creates a community store bound to db (which may be a transaction).
func NewCommunityStore(db *gorm.DB) CommunityStore {
	return &communityStore{db: db}
}

func (r *communityStore) GetByCommunityID(ctx context.Context, communityID string) (*models.Community, error) {
	var community models.Community
	if err := r.db.WithContext(ctx).Where("community_id = ?", communityID).First(&community).Error; err != nil {
		return nil, wrapDBError(err, "Community", communityID)
	}
	return &community, nil
}

func (r *communityStore) GetMany(ctx context.Context, communityIDs []string) ([]*models.Community, error) {
	if len(communityIDs) == 0 {
		return nil, nil
	}
	var communities []*models.Community
	if err := r.db.WithContext(ctx).Where("community_id IN ?", communityIDs).Find(&communities).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return communities, nil
}

func (r *communityStore) Create(ctx context.Context, community *models.Community) error {
	if community.MessageIDs == nil {
		community.MessageIDs = models.IDList{}
	}
	if community.MemberIDs == nil {
		community.MemberIDs = models.IDList{}
	}
	if err := r.db.WithContext(ctx).Create(community).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *communityStore) Update(ctx context.Context, community *models.Community) error {
	if err := r.db.WithContext(ctx).Save(community).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *communityStore) List(ctx context.Context, skip, limit int) ([]*models.Community, error) {
	var communities []*models.Community
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&communities).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return communities, nil
}

func (r *communityStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Community{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *communityStore) AppendMessageID(ctx context.Context, communityID, msgID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var community models.Community
		if err := tx.Where("community_id = ?", communityID).First(&community).Error; err != nil {
			return wrapDBError(err, "Community", communityID)
		}
		next := community.MessageIDs.Append(msgID)
		if len(next) == len(community.MessageIDs) {
			return nil
		}
		if err := tx.Model(&community).Update("message_ids", next).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}

func (r *communityStore) RemoveMessageIDs(ctx context.Context, communityID string, msgIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var community models.Community
		if err := tx.Where("community_id = ?", communityID).First(&community).Error; err != nil {
			return wrapDBError(err, "Community", communityID)
		}
		next := community.MessageIDs.Remove(msgIDs)
		if len(next) == len(community.MessageIDs) {
			return nil
		}
		if err := tx.Model(&community).Update("message_ids", next).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}

func (r *communityStore) AppendMemberID(ctx context.Context, communityID, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var community models.Community
		if err := tx.Where("community_id = ?", communityID).First(&community).Error; err != nil {
			return wrapDBError(err, "Community", communityID)
		}
		next := community.MemberIDs.Append(userID)
		if len(next) == len(community.MemberIDs) {
			return nil
		}
		if err := tx.Model(&community).Update("member_ids", next).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}
