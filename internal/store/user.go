package store

import (
	"context"
	"errors"
	"strings"

	"threadloom/internal/models"

	"gorm.io/gorm"
)

// UserQuery filters user listings. The same query is used for both the
// fetch and the count so pagination stays consistent.
type UserQuery struct {
	ExcludeUserID string
	Search        string
}

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByUserID(ctx context.Context, userID string) (*models.User, error)
	GetMany(ctx context.Context, userIDs []string) ([]*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Upsert(ctx context.Context, user *models.User) error
	List(ctx context.Context, q UserQuery, skip, limit int) ([]*models.User, error)
	Count(ctx context.Context, q UserQuery) (int64, error)
	AppendMessageID(ctx context.Context, userID, msgID string) error
	RemoveMessageIDs(ctx context.Context, userID string, msgIDs []string) error
	AppendCommunityID(ctx context.Context, userID, communityID string) error
}

type userStore struct {
	db *gorm.DB
}

// NewUserStore creates a user store bound to db (which may be a transaction).
func NewUserStore(db *gorm.DB) UserStore {
	return &userStore{db: db}
}

func (r *userStore) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, wrapDBError(err, "User", userID)
	}
	return &user, nil
}

func (r *userStore) GetMany(ctx context.Context, userIDs []string) ([]*models.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var users []*models.User
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userStore) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userStore) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Upsert updates the profile fields of the user keyed by its external id,
// creating the record when it does not exist yet. Used for profile
// completion on first login.
func (r *userStore) Upsert(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("user_id = ?", user.UserID).First(&existing).Error
		switch {
		case err == nil:
			existing.Username = user.Username
			existing.Name = user.Name
			existing.Bio = user.Bio
			existing.AvatarURL = user.AvatarURL
			existing.Onboarded = user.Onboarded
			if err := tx.Save(&existing).Error; err != nil {
				return models.NewInternalError(err)
			}
			*user = existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			if user.MessageIDs == nil {
				user.MessageIDs = models.IDList{}
			}
			if user.CommunityIDs == nil {
				user.CommunityIDs = models.IDList{}
			}
			if err := tx.Create(user).Error; err != nil {
				return models.NewInternalError(err)
			}
			return nil
		default:
			return models.NewInternalError(err)
		}
	})
}

// applyQuery builds the WHERE clause shared by List and Count.
func (r *userStore) applyQuery(db *gorm.DB, q UserQuery) *gorm.DB {
	if q.ExcludeUserID != "" {
		db = db.Where("user_id <> ?", q.ExcludeUserID)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		db = db.Where("LOWER(username) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)
	}
	return db
}

func (r *userStore) List(ctx context.Context, q UserQuery, skip, limit int) ([]*models.User, error) {
	var users []*models.User
	err := r.applyQuery(r.db.WithContext(ctx).Model(&models.User{}), q).
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userStore) Count(ctx context.Context, q UserQuery) (int64, error) {
	var count int64
	err := r.applyQuery(r.db.WithContext(ctx).Model(&models.User{}), q).Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *userStore) AppendMessageID(ctx context.Context, userID, msgID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("user_id = ?", userID).First(&user).Error; err != nil {
			return wrapDBError(err, "User", userID)
		}
		next := user.MessageIDs.Append(msgID)
		if len(next) == len(user.MessageIDs) {
			return nil // already linked, idempotent under retry
		}
		if err := tx.Model(&user).Update("message_ids", next).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}

func (r *userStore) RemoveMessageIDs(ctx context.Context, userID string, msgIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("user_id = ?", userID).First(&user).Error; err != nil {
			return wrapDBError(err, "User", userID)
		}
		next := user.MessageIDs.Remove(msgIDs)
		if len(next) == len(user.MessageIDs) {
			return nil
		}
		if err := tx.Model(&user).Update("message_ids", next).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}

func (r *userStore) AppendCommunityID(ctx context.Context, userID, communityID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("user_id = ?", userID).First(&user).Error; err != nil {
			return wrapDBError(err, "User", userID)
		}
		next := user.CommunityIDs.Append(communityID)
		if len(next) == len(user.CommunityIDs) {
			return nil
		}
		if err := tx.Model(&user).Update("community_ids", next).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}
